package model

// ErrorCounter is a per-word mistake tally scoped to a class. Unique on
// (word, class_code); mutated only by upsert-increment, and merged into the
// archive code on restart.
type ErrorCounter struct {
	Word      string `json:"word"`
	ClassCode string `json:"class_code,omitempty"`
	Counter   int    `json:"counter"`
}

// UpdateErrorsRequest is the payload for recording a batch of mistakes.
// Each mistake row carries the misspelled word as its first element; extra
// columns from the client are ignored.
type UpdateErrorsRequest struct {
	Mistakes  [][]string `json:"mistakes" binding:"required"`
	ClassCode string     `json:"classCode" binding:"required,min=1,max=32"`
}
