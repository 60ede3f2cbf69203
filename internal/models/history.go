package models

import "time"

// HistoryEntry is one recorded describe outcome.
type HistoryEntry struct {
	ID string `json:"id"`
	// Input is the raw identifier as typed.
	Input string `json:"input"`
	// ObjectID is the parsed identifier, empty when parsing failed.
	ObjectID string `json:"object_id,omitempty"`
	Class    string `json:"class,omitempty"`
	// Status is ok, error or fatal.
	Status   string `json:"status"`
	Category string `json:"category,omitempty"`
	// Kind is the sentinel error text, e.g. "object not found".
	Kind     string `json:"kind,omitempty"`
	Message  string `json:"message,omitempty"`
	Attempts int    `json:"attempts"`
	// ElapsedMS is the total fetch time including retries.
	ElapsedMS  int64     `json:"elapsed_ms"`
	InputsHash string    `json:"inputs_hash"`
	CreatedAt  time.Time `json:"created_at"`
}
