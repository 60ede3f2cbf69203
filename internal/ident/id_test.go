package ident

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RoundTrip(t *testing.T) {
	inputs := []string{
		"analysis-BQbXKk80fPFj4Jbfpxb6Ffv2",
		"job-BBBB",
		"file-AAAA",
		"app-G1x2y3",
		"applet-Z",
		"database-0123456789",
		"record-abcDEF",
		"project-Fz9",
		"container-q",
		"project-P1:file-F1",
		"project-P1:record-R1",
		"project-P1:database-D1",
		"project-P1:applet-A1",
	}
	for _, raw := range inputs {
		t.Run(raw, func(t *testing.T) {
			id, err := Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, raw, id.String())

			again, err := Parse(id.String())
			require.NoError(t, err)
			assert.Equal(t, id, again)
		})
	}
}

func TestParse_Classes(t *testing.T) {
	for _, class := range Classes {
		id, err := Parse(string(class) + "-X1")
		require.NoError(t, err)
		assert.Equal(t, class, id.Class())
		assert.Equal(t, "X1", id.LocalID())
	}
}

func TestParse_UnknownClass(t *testing.T) {
	inputs := []string{
		"bogus-id",
		"File-AAAA",
		"FILE-AAAA",
		"user-AAAA",
		"bogus-",
		"bogus-a-b-c",
		" file-AAAA",
		"workflow-!!",
	}
	for _, raw := range inputs {
		t.Run(raw, func(t *testing.T) {
			_, err := Parse(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnknownClass)
			assert.False(t, errors.Is(err, ErrMalformed))

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, raw, perr.Input)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	inputs := []string{
		"",
		"file",
		"file-",
		"-file-AAAA",
		"-AAAA",
		"file-AAAA-",
		"file-AA-AA",
		"file-AA AA",
		"file-AAAA\n",
		"job-BBBB:",
		"project-P1:job-J1",
		"file-F1:file-F2",
		"project-P1:",
		"project-:file-F1",
	}
	for _, raw := range inputs {
		t.Run(raw, func(t *testing.T) {
			_, err := Parse(raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestObjectID_Scope(t *testing.T) {
	id := MustParse("project-P1:file-F1")

	scope, ok := id.Scope()
	require.True(t, ok)
	assert.Equal(t, "project-P1", scope.String())
	assert.Equal(t, "file-F1", id.Bare())
	assert.Equal(t, "file-F1", id.Unscoped().String())

	_, ok = MustParse("file-F1").Scope()
	assert.False(t, ok)
}

func TestObjectID_JSON(t *testing.T) {
	id := MustParse("project-P1:file-F1")

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.JSONEq(t, `"project-P1:file-F1"`, string(data))

	var back ObjectID
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, id, back)

	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &back))
}

func TestNew(t *testing.T) {
	id, err := New(ClassJob, "J1")
	require.NoError(t, err)
	assert.Equal(t, "job-J1", id.String())

	_, err = New(ClassJob, "")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = New(ObjectClass("workflow"), "W1")
	assert.ErrorIs(t, err, ErrUnknownClass)
}
