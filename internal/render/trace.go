package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/fentz26/dx/internal/models"
	"github.com/fentz26/dx/internal/normalize"
)

// Trace is the debug record of one describe. Its layout carries no
// compatibility promise.
type Trace struct {
	Input        string
	ID           string
	RequestIDs   []string
	Attempts     int
	Elapsed      time.Duration
	PayloadBytes int
	Shape        []normalize.KeyKind
	// References are the extracted references with the relation each was
	// found under.
	References   []models.Reference
}

// Render formats the trace as an indented block.
func (t *Trace) Render() string {
	rows := [][]string{
		{"input", t.Input},
		{"id", orPlaceholder(t.ID)},
		{"request ids", orPlaceholder(strings.Join(t.RequestIDs, ", "))},
		{"attempts", strconv.Itoa(t.Attempts)},
		{"fetch time", t.Elapsed.Round(time.Millisecond).String()},
		{"payload", fmt.Sprintf("%d bytes (%s)", t.PayloadBytes, humanize.Bytes(uint64(t.PayloadBytes)))},
	}
	if len(t.Shape) == 0 {
		rows = append(rows, []string{"shape", Placeholder})
	}
	for i, kk := range t.Shape {
		label := ""
		if i == 0 {
			label = "shape"
		}
		rows = append(rows, []string{label, kk.Key + ": " + kk.Kind})
	}

	if len(t.References) == 0 {
		rows = append(rows, []string{"references", Placeholder})
	}
	for i, ref := range t.References {
		label := ""
		if i == 0 {
			label = "references"
		}
		rows = append(rows, []string{label, ref.ID.String() + " (" + ref.Relation + ")"})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "-- debug %s\n", t.Input)
	for _, line := range strings.SplitAfter(table(rows), "\n") {
		if line == "" {
			continue
		}
		b.WriteString("   ")
		b.WriteString(line)
	}
	return b.String()
}

func orPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
