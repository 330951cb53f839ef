package model

// Phase is the lifecycle stage of a class session.
type Phase int

const (
	// PhaseSetup — class created, students may join.
	PhaseSetup Phase = 0
	// PhaseActive — teacher logged in, training in progress.
	PhaseActive Phase = 1
	// PhaseFinished — teacher requested results.
	PhaseFinished Phase = 2
)

// Class represents one class session, identified by its human-chosen code.
// Classes are pre-seeded (cmd/create-class) and never hard-deleted; a restart
// renames their data to an archive code and resets the phase.
type Class struct {
	Code           string `json:"code"`
	CredentialHash string `json:"-"`
	Phase          Phase  `json:"phase"`
}

// CanTransition reports whether a phase write from -> to is a permitted
// forward transition. The restart path (Finished -> Setup) bypasses this and
// goes through the archival transaction instead.
func (p Phase) CanTransition(to Phase) bool {
	switch {
	case p == PhaseSetup && to == PhaseActive:
		return true
	case p == PhaseActive && to == PhaseFinished:
		return true
	default:
		return false
	}
}

// TeacherAuthRequest is the payload for teacher authentication.
type TeacherAuthRequest struct {
	Code     string `json:"code" binding:"required,min=1,max=32"`
	Password string `json:"password" binding:"required,min=1,max=128"`
}

// TeacherAuthResponse is returned after successful teacher login.
type TeacherAuthResponse struct {
	Token string `json:"token"`
	Class Class  `json:"class"`
}

// SetPhaseRequest is the payload for an explicit phase write.
type SetPhaseRequest struct {
	Phase *Phase `json:"phase" binding:"required,min=0,max=2"`
}
