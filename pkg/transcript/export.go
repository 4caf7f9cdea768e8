// SPDX-License-Identifier: Apache-2.0
package transcript

import (
	"fmt"
	"io"
	"strings"
	"time"

	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/charlenopires/FlaFludeAgentes/pkg/errors"
)

// WriteMarkdown renders the transcript as a markdown document with a header,
// one section per statement.
func (t *Transcript) WriteMarkdown(w io.Writer, title string) error {
	if title == "" {
		title = "Debate Fla-Flu"
	}
	entries := t.Entries()

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if len(entries) > 0 {
		fmt.Fprintf(&b, "**Data:** %s\n\n", entries[0].Timestamp.Format("02/01/2006 15:04"))
	}
	fmt.Fprintf(&b, "**Declarações:** %d\n\n---\n\n", len(entries))
	for _, e := range entries {
		label := speakerLabel(e.Speaker)
		switch e.Kind {
		case KindResearch:
			fmt.Fprintf(&b, "> 📊 **%s** (%s): %s\n\n", label, e.Timestamp.Format("15:04:05"), e.Text)
		case KindRuling:
			fmt.Fprintf(&b, "## Veredicto\n\n**%s:** %s\n\n", label, e.Text)
		default:
			fmt.Fprintf(&b, "**%s** (%s):\n\n%s\n\n", label, e.Timestamp.Format("15:04:05"), e.Text)
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.New(errors.CodeInternal, "markdown export failed", err)
	}
	return nil
}

// WriteJSON renders the transcript as an indented JSON document.
func (t *Transcript) WriteJSON(w io.Writer) error {
	doc := exportDoc{
		ExportedAt: time.Now().UTC(),
		Entries:    t.Entries(),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.New(errors.CodeInternal, "json export failed", err)
	}
	return nil
}

// WriteYAML renders the transcript as a YAML document.
func (t *Transcript) WriteYAML(w io.Writer) error {
	doc := exportDoc{
		ExportedAt: time.Now().UTC(),
		Entries:    t.Entries(),
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(doc); err != nil {
		return errors.New(errors.CodeInternal, "yaml export failed", err)
	}
	return nil
}

type exportDoc struct {
	ExportedAt time.Time `json:"exported_at" yaml:"exported_at"`
	Entries    []Entry   `json:"entries" yaml:"entries"`
}

// speakerLabel decorates the well-known debate actors for readable exports.
func speakerLabel(speaker string) string {
	switch speaker {
	case "flamengo":
		return "🔴⚫ Flamengo"
	case "fluminense":
		return "🟢⚪🔴 Fluminense"
	case "pesquisador":
		return "🔎 Pesquisador"
	case "supervisor":
		return "⚖️ Supervisor"
	default:
		return speaker
	}
}
