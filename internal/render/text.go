package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/fentz26/dx/internal/ident"
	"github.com/fentz26/dx/internal/models"
)

// Properties holding sizes get a human readable hint. Byte counts for
// files and records, GiB for project and container usage.
var (
	byteSizeKeys = map[string]bool{"size": true}
	gibSizeKeys  = map[string]bool{
		"data_usage":           true,
		"sponsored_data_usage": true,
		"remote_data_usage":    true,
		"archived_data_usage":  true,
	}
)

// Text renders d as a two-column report with a fixed row order.
func Text(d *models.Descriptor) (string, error) {
	rows := [][]string{
		{"ID", d.ID.String()},
		{"Class", d.Class().String()},
		{"Name", optString(d.Name)},
		{"State", optString(d.State)},
		{"Created", optTime(d.CreatedAt)},
		{"Modified", optTime(d.ModifiedAt)},
		{"Context", optID(d.Context)},
	}

	props := d.Properties.Entries()
	if len(props) == 0 {
		rows = append(rows, []string{"Properties", Placeholder})
	} else {
		rows = append(rows, []string{"Properties", ""})
		for _, p := range props {
			rows = append(rows, []string{"  " + p.Key, propertyValue(p)})
		}
	}

	refs := d.References.IDs()
	if len(refs) == 0 {
		rows = append(rows, []string{"References", Placeholder})
	} else {
		for i, id := range refs {
			label := ""
			if i == 0 {
				label = "References"
			}
			rows = append(rows, []string{label, id})
		}
	}

	return table(rows), nil
}

// table lays rows out in aligned columns with no borders. Trailing
// whitespace is trimmed so output is stable.
func table(rows [][]string) string {
	var buf bytes.Buffer
	tw := tablewriter.NewWriter(&buf)
	tw.SetBorder(false)
	tw.SetColumnSeparator("")
	tw.SetCenterSeparator("")
	tw.SetRowSeparator("")
	tw.SetHeaderLine(false)
	tw.SetAutoWrapText(false)
	tw.SetAutoFormatHeaders(false)
	tw.SetAlignment(tablewriter.ALIGN_LEFT)
	tw.SetNoWhiteSpace(true)
	tw.SetTablePadding("  ")
	tw.AppendBulk(rows)
	tw.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	var out strings.Builder
	for _, line := range lines {
		out.WriteString(strings.TrimRight(line, " \t"))
		out.WriteByte('\n')
	}
	return out.String()
}

func optString(s *string) string {
	switch {
	case s == nil:
		return Placeholder
	case *s == "":
		return `""`
	default:
		return *s
	}
}

func optTime(t *time.Time) string {
	if t == nil {
		return Placeholder
	}
	return t.UTC().Format(TextTimeLayout)
}

func optID(id *ident.ObjectID) string {
	if id == nil {
		return Placeholder
	}
	return id.String()
}

// propertyValue prints the compact JSON of a property, so the JSON value can
// always be read back from the report, plus a size hint where one applies.
func propertyValue(p models.Property) string {
	value := string(p.Value)
	if hint, ok := sizeHint(p.Key, p.Value); ok {
		return fmt.Sprintf("%s (%s)", value, hint)
	}
	return value
}

func sizeHint(key string, raw json.RawMessage) (string, bool) {
	if !byteSizeKeys[key] && !gibSizeKeys[key] {
		return "", false
	}
	n, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || n < 0 {
		return "", false
	}
	if gibSizeKeys[key] {
		n *= 1 << 30
	}
	return humanize.IBytes(uint64(n)), true
}
