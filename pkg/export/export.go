// Package export serializes completed batch items into downloadable
// spreadsheet blobs. Serialization is pure; saving is a separate side effect
// behind the Saver interface.
package export

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/cloudlinker/uploader/pkg/client"
)

// ErrNothingToExport is returned when no item is completed with a URL.
var ErrNothingToExport = errors.New("no successful uploads to export")

var headers = []string{"Image Name", "Image URL"}

const (
	MIMETypeCSV   = "text/csv;charset=utf-8;"
	MIMETypeExcel = "application/vnd.ms-excel"
)

// completed filters the batch to exportable items, input order preserved.
func completed(items []*client.Item) []*client.Item {
	var out []*client.Item
	for _, item := range items {
		if item.Status == client.StatusCompleted && item.URL != "" {
			out = append(out, item)
		}
	}
	return out
}

// CSV emits a two-column table with every field double-quoted and rows
// newline-terminated. Deterministic for a given input list.
func CSV(items []*client.Item) ([]byte, error) {
	rows := completed(items)
	if len(rows) == 0 {
		return nil, ErrNothingToExport
	}

	var b strings.Builder
	b.WriteString(strings.Join(headers, ","))
	for _, item := range rows {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%q,%q", item.Name, item.URL))
	}

	return []byte(b.String()), nil
}

// HTMLTable emits a minimal table-as-spreadsheet blob for .xls consumers.
func HTMLTable(items []*client.Item) ([]byte, error) {
	rows := completed(items)
	if len(rows) == 0 {
		return nil, ErrNothingToExport
	}

	var b strings.Builder
	b.WriteString("<table><tr>")
	for _, h := range headers {
		b.WriteString("<th>" + html.EscapeString(h) + "</th>")
	}
	b.WriteString("</tr>")
	for _, item := range rows {
		b.WriteString("<tr><td>" + html.EscapeString(item.Name) + "</td><td>" + html.EscapeString(item.URL) + "</td></tr>")
	}
	b.WriteString("</table>")

	return []byte(b.String()), nil
}

// Filename names the download with the current date, e.g.
// "cloudlinker-export-2026-08-29.csv".
func Filename(prefix, ext string, t time.Time) string {
	return fmt.Sprintf("%s-export-%s.%s", prefix, t.Format("2006-01-02"), ext)
}
