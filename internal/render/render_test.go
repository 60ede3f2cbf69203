package render

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fentz26/dx/internal/ident"
	"github.com/fentz26/dx/internal/models"
	"github.com/fentz26/dx/internal/normalize"
)

var columnGap = regexp.MustCompile(`\s{2,}`)

// textRows splits a text report into label/value pairs.
func textRows(t *testing.T, out string) [][2]string {
	t.Helper()
	require.True(t, strings.HasSuffix(out, "\n"))
	var rows [][2]string
	for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
		require.NotEmpty(t, strings.TrimSpace(line), "blank line in report")
		if strings.HasPrefix(line, " ") {
			// Continuation or indented property row.
			parts := columnGap.Split(strings.TrimSpace(line), 2)
			if len(parts) == 1 {
				rows = append(rows, [2]string{"", parts[0]})
			} else {
				rows = append(rows, [2]string{"  " + parts[0], parts[1]})
			}
			continue
		}
		parts := columnGap.Split(line, 2)
		if len(parts) == 1 {
			rows = append(rows, [2]string{parts[0], ""})
		} else {
			rows = append(rows, [2]string{parts[0], parts[1]})
		}
	}
	return rows
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

func fullDescriptor() *models.Descriptor {
	created := time.Date(2023, 11, 14, 22, 13, 20, 123e6, time.UTC)
	ctx := ident.MustParse("project-P1")
	d := &models.Descriptor{
		ID:         ident.MustParse("file-F1"),
		Name:       strPtr("reads <1>.fq"),
		State:      strPtr("closed"),
		CreatedAt:  &created,
		ModifiedAt: timePtr(created.Add(time.Hour)),
		Context:    &ctx,
	}
	d.Properties.Set("size", json.RawMessage(`1048576`))
	d.Properties.Set("tags", json.RawMessage(`["raw", "x"]`))
	d.Properties.SetString("created_by", "user-alice")
	d.References.Add("links", ident.MustParse("file-F2"))
	d.References.Add("links", ident.MustParse("record-R1"))
	return d
}

func minimalDescriptor() *models.Descriptor {
	return &models.Descriptor{ID: ident.MustParse("job-J1")}
}

func TestJSON_FullKeyOrder(t *testing.T) {
	out, err := Render(fullDescriptor(), Options{JSON: true})
	require.NoError(t, err)

	want := `{
  "id": "file-F1",
  "class": "file",
  "name": "reads <1>.fq",
  "state": "closed",
  "created_at": "2023-11-14T22:13:20.123Z",
  "modified_at": "2023-11-14T23:13:20.123Z",
  "context": "project-P1",
  "properties": {
    "size": 1048576,
    "tags": [
      "raw",
      "x"
    ],
    "created_by": "user-alice"
  },
  "references": [
    "file-F2",
    "record-R1"
  ]
}
`
	assert.Equal(t, want, out)
}

func TestJSON_AbsentFieldsOmitted(t *testing.T) {
	out, err := JSON(minimalDescriptor())
	require.NoError(t, err)

	want := `{
  "id": "job-J1",
  "class": "job",
  "properties": {},
  "references": []
}
`
	assert.Equal(t, want, out)
	assert.NotContains(t, out, "null")
}

func TestJSON_EmptyNameKept(t *testing.T) {
	d := minimalDescriptor()
	d.Name = strPtr("")
	out, err := JSON(d)
	require.NoError(t, err)
	assert.Contains(t, out, `"name": ""`)
}

func TestText_Full(t *testing.T) {
	out, err := Render(fullDescriptor(), Options{})
	require.NoError(t, err)

	assert.Equal(t, [][2]string{
		{"ID", "file-F1"},
		{"Class", "file"},
		{"Name", "reads <1>.fq"},
		{"State", "closed"},
		{"Created", "2023-11-14 22:13:20"},
		{"Modified", "2023-11-14 23:13:20"},
		{"Context", "project-P1"},
		{"Properties", ""},
		{"  size", "1048576 (1.0 MiB)"},
		{"  tags", `["raw","x"]`},
		{"  created_by", `"user-alice"`},
		{"References", "file-F2"},
		{"", "record-R1"},
	}, textRows(t, out))
}

func TestText_Placeholders(t *testing.T) {
	out, err := Text(minimalDescriptor())
	require.NoError(t, err)

	assert.Equal(t, [][2]string{
		{"ID", "job-J1"},
		{"Class", "job"},
		{"Name", Placeholder},
		{"State", Placeholder},
		{"Created", Placeholder},
		{"Modified", Placeholder},
		{"Context", Placeholder},
		{"Properties", Placeholder},
		{"References", Placeholder},
	}, textRows(t, out))
}

func TestText_EmptyStringIsNotPlaceholder(t *testing.T) {
	d := minimalDescriptor()
	d.State = strPtr("")
	out, err := Text(d)
	require.NoError(t, err)
	assert.Contains(t, textRows(t, out), [2]string{"State", `""`})
}

func TestText_DataUsageHint(t *testing.T) {
	d := &models.Descriptor{ID: ident.MustParse("project-P1")}
	d.Properties.Set("data_usage", json.RawMessage(`2`))
	d.Properties.Set("size", json.RawMessage(`"big"`))
	out, err := Text(d)
	require.NoError(t, err)
	rows := textRows(t, out)
	assert.Contains(t, rows, [2]string{"  data_usage", "2 (2.0 GiB)"})
	assert.Contains(t, rows, [2]string{"  size", `"big"`})
}

func TestRender_Deterministic(t *testing.T) {
	for _, opts := range []Options{{}, {JSON: true}} {
		first, err := Render(fullDescriptor(), opts)
		require.NoError(t, err)
		for i := 0; i < 10; i++ {
			again, err := Render(fullDescriptor(), opts)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	}
}

func TestRender_DebugDoesNotChangeBody(t *testing.T) {
	for _, jsonOut := range []bool{false, true} {
		plain, err := Render(fullDescriptor(), Options{JSON: jsonOut})
		require.NoError(t, err)
		debug, err := Render(fullDescriptor(), Options{JSON: jsonOut, Debug: true})
		require.NoError(t, err)
		assert.Equal(t, plain, debug)
	}
}

// Every text row is backed by a JSON key and the other way round.
func TestRender_Parity(t *testing.T) {
	d := fullDescriptor()
	jsonOut, err := JSON(d)
	require.NoError(t, err)
	textOut, err := Text(d)
	require.NoError(t, err)

	var obj map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(jsonOut), &obj))

	labels := map[string]string{
		"ID": "id", "Class": "class", "Name": "name", "State": "state",
		"Created": "created_at", "Modified": "modified_at", "Context": "context",
		"Properties": "properties", "References": "references",
	}
	seen := map[string]bool{}
	for _, row := range textRows(t, textOut) {
		if key, ok := labels[row[0]]; ok {
			_, present := obj[key]
			assert.True(t, present, "text row %s has no JSON key", row[0])
			seen[key] = true
		}
	}
	for key := range obj {
		assert.True(t, seen[key], "JSON key %s has no text row", key)
	}

	var props map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(obj["properties"], &props))
	for _, p := range d.Properties.Entries() {
		assert.Contains(t, props, p.Key)
	}
}

func TestTrace_Render(t *testing.T) {
	tr := &Trace{
		Input:        "file-F1",
		ID:           "file-F1",
		RequestIDs:   []string{"r1", "r2"},
		Attempts:     2,
		Elapsed:      1500 * time.Millisecond,
		PayloadBytes: 2048,
		Shape:        []normalize.KeyKind{{Key: "id", Kind: "string"}, {Key: "size", Kind: "number"}},
		References:   []models.Reference{{Relation: "links", ID: ident.MustParse("file-F2")}},
	}
	out := tr.Render()

	assert.True(t, strings.HasPrefix(out, "-- debug file-F1\n"))
	assert.Contains(t, out, "r1, r2")
	assert.Contains(t, out, "1.5s")
	assert.Contains(t, out, "2048 bytes (2.0 kB)")
	assert.Contains(t, out, "id: string")
	assert.Contains(t, out, "size: number")
	assert.Contains(t, out, "file-F2 (links)")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestTrace_Empty(t *testing.T) {
	out := (&Trace{Input: "bogus-id"}).Render()
	assert.Contains(t, out, "attempts")
	assert.Contains(t, out, "0 bytes")
}
