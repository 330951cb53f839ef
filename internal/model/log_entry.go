package model

import "time"

// LogEntry is one record of the append-only audit trail. The core only ever
// writes these; nothing reads them back.
type LogEntry struct {
	ID        int       `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
