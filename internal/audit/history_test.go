package audit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/dx/internal/describe"
	"github.com/fentz26/dx/internal/gateway"
	"github.com/fentz26/dx/internal/ident"
	"github.com/fentz26/dx/internal/render"
	"github.com/fentz26/dx/internal/store"
)

func TestHistoryWriter_RecordsBatch(t *testing.T) {
	s, err := store.New(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer s.Close()

	gw := gateway.Func(func(ctx context.Context, id ident.ObjectID) (*gateway.Response, error) {
		if id.Class() == ident.ClassJob {
			return nil, &gateway.Error{Kind: gateway.ErrNotFound, Status: 404}
		}
		return &gateway.Response{Payload: []byte(`{"id":"file-F1","class":"file"}`)}, nil
	})
	d := describe.New(gw, describe.Config{}, describe.WithRecorder(NewHistoryWriter(s)))

	_, err = d.DescribeMany(context.Background(), []string{"file-F1", "bogus-id", "job-J1"}, render.Options{})
	require.NoError(t, err)

	entries, err := s.ListHistory(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byInput := map[string]int{}
	for i, e := range entries {
		byInput[e.Input] = i
		assert.Len(t, e.InputsHash, 64)
	}

	ok := entries[byInput["file-F1"]]
	assert.Equal(t, "ok", ok.Status)
	assert.Equal(t, "file", ok.Class)
	assert.Equal(t, 1, ok.Attempts)

	parse := entries[byInput["bogus-id"]]
	assert.Equal(t, "error", parse.Status)
	assert.Equal(t, "ParseError", parse.Category)
	assert.Empty(t, parse.ObjectID)

	missing := entries[byInput["job-J1"]]
	assert.Equal(t, "GatewayError", missing.Category)
	assert.Contains(t, missing.Message, "HTTP 404")
	assert.Equal(t, "object not found", missing.Kind)
}

func TestHashInputs_Stable(t *testing.T) {
	a := hashInputs(map[string]string{"input": "file-F1"})
	b := hashInputs(map[string]string{"input": "file-F1"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, hashInputs(map[string]string{"input": "file-F2"}))
}
