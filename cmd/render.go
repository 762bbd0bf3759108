package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kamusis/brewq/internal/pipeline"
)

// batchRecord is one NDJSON line of `search --json` and `serve`.
type batchRecord struct {
	Batch int             `json:"batch"`
	Items []pipeline.Item `json:"items"`
}

// batchWriter writes result batches as they arrive, either styled for a
// terminal or as NDJSON.
type batchWriter struct {
	w     io.Writer
	enc   *json.Encoder
	n     int
	title lipgloss.Style
	id    lipgloss.Style
	sub   lipgloss.Style
	rule  lipgloss.Style
}

func newBatchWriter(w io.Writer, asJSON bool) *batchWriter {
	bw := &batchWriter{w: w}
	if asJSON {
		bw.enc = json.NewEncoder(w)
		return bw
	}
	r := lipgloss.NewRenderer(w)
	bw.title = r.NewStyle().Bold(true)
	bw.id = r.NewStyle().Foreground(lipgloss.Color("8"))
	bw.sub = r.NewStyle().Foreground(lipgloss.Color("245")).PaddingLeft(5)
	bw.rule = r.NewStyle().Foreground(lipgloss.Color("240"))
	return bw
}

func (bw *batchWriter) write(items []pipeline.Item) error {
	bw.n++
	if bw.enc != nil {
		return bw.enc.Encode(batchRecord{Batch: bw.n, Items: items})
	}

	var b strings.Builder
	if bw.n > 1 {
		b.WriteString(bw.rule.Render(fmt.Sprintf("  ── batch %d ──", bw.n)))
		b.WriteByte('\n')
	}
	for _, it := range items {
		fmt.Fprintf(&b, "  %s %s  %s\n", it.Icon.Badge(), bw.title.Render(it.Text), bw.id.Render(it.ID))
		b.WriteString(bw.sub.Render(it.Subtext))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(bw.w, b.String())
	return err
}

// count is the number of batches written so far.
func (bw *batchWriter) count() int { return bw.n }
