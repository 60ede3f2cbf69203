// Package audit records describe outcomes in the local history.
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/fentz26/dx/internal/describe"
	"github.com/fentz26/dx/internal/models"
	"github.com/fentz26/dx/internal/store"
)

// HistoryWriter writes describe results to the history store. It only
// writes; nothing in the describe path reads the history back.
type HistoryWriter struct {
	store *store.Store
}

// NewHistoryWriter creates a new history writer.
func NewHistoryWriter(s *store.Store) *HistoryWriter {
	return &HistoryWriter{store: s}
}

// Record implements describe.Recorder.
func (w *HistoryWriter) Record(ctx context.Context, r *describe.Result) error {
	return w.store.WriteHistory(ctx, Entry(r))
}

// Entry builds the history entry of r.
func Entry(r *describe.Result) *models.HistoryEntry {
	entry := &models.HistoryEntry{
		Input:  r.Input,
		Status: r.Status(),
	}
	if !r.ID.IsZero() {
		entry.ObjectID = r.ID.String()
		entry.Class = r.ID.Class().String()
	}
	if r.Trace != nil {
		entry.Attempts = r.Trace.Attempts
		entry.ElapsedMS = r.Trace.Elapsed.Milliseconds()
	}
	if r.Err != nil {
		entry.Category = string(r.Err.Category)
		entry.Kind = r.Err.Kind()
		entry.Message = r.Err.Err.Error()
	}
	entry.InputsHash = hashInputs(map[string]string{
		"input":     r.Input,
		"object_id": entry.ObjectID,
	})
	return entry
}

// hashInputs creates a SHA256 hash of the inputs.
func hashInputs(inputs interface{}) string {
	data, err := json.Marshal(inputs)
	if err != nil {
		return "hash_error"
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
