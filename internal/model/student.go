package model

import "time"

// Student represents an enrolled participant of a class session. ModelHandle
// is the name of the student's dedicated model in the external trainer; it is
// minted once at enrollment and never reused.
type Student struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	ClassCode   string    `json:"class_code"`
	Score       int       `json:"score"`
	Progress    int       `json:"progress"`
	ModelHandle string    `json:"model_handle"`
	CreatedAt   time.Time `json:"created_at"`
}

// JoinClassRequest is the payload for student enrollment. The cap is loose
// on purpose: enrollment sanitizes the raw name and owns the 15-rune limit,
// so a raw name that shrinks under it must not be rejected here.
type JoinClassRequest struct {
	Name string `json:"name" binding:"required,min=1,max=64"`
}

// UpdateScoreRequest is the payload for a score write.
type UpdateScoreRequest struct {
	Score *int `json:"score" binding:"required,min=0,max=100"`
}

// SetProgressRequest is the payload for a progress write.
type SetProgressRequest struct {
	Progress *int `json:"progress" binding:"required,min=0,max=100"`
}
