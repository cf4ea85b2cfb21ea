// Package report renders a finished research run for people: Markdown for
// files, sanitised HTML for browsers and a styled view for terminals.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"

	"github.com/jemygraw/researchgraph/research"
)

// Markdown renders the query, answer, documents and trace of a run.
func Markdown(state research.AgentState) string {
	var sb strings.Builder

	sb.WriteString("# Research report\n\n")
	fmt.Fprintf(&sb, "**Query:** %s\n\n", state.Query.Text)

	sb.WriteString("## Answer\n\n")
	if state.FinalAnswer != "" {
		sb.WriteString(strings.TrimSpace(state.FinalAnswer))
	} else {
		sb.WriteString("_No answer was produced._")
	}
	sb.WriteString("\n\n")

	if state.Error != "" {
		fmt.Fprintf(&sb, "> **Last error:** %s\n\n", state.Error)
	}

	if ids := state.DocumentIDs(); len(ids) > 0 {
		sb.WriteString("## Documents\n\n")
		for _, id := range ids {
			sb.WriteString("- " + documentLine(state.Documents[id]) + "\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Trace\n\n")
	for i, msg := range state.Messages {
		fmt.Fprintf(&sb, "%d. **%s:** %s\n", i+1, msg.Role, oneLine(msg.Content))
	}
	fmt.Fprintf(&sb, "\n_Steps: %d_\n", state.StepCount)

	return sb.String()
}

// HTML renders the Markdown report and sanitises the result.
func HTML(state research.AgentState) string {
	return string(renderHTML([]byte(Markdown(state))))
}

func renderHTML(md []byte) []byte {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse(md)

	htmlFlags := html.CommonFlags | html.HrefTargetBlank
	renderer := html.NewRenderer(html.RendererOptions{Flags: htmlFlags})

	return bluemonday.UGCPolicy().SanitizeBytes(markdown.Render(doc, renderer))
}

func documentLine(doc research.Document) string {
	line := "`" + doc.ID + "`"
	if doc.Title != "" {
		line += " " + doc.Title
	}
	if len(doc.Authors) > 0 {
		line += " (" + strings.Join(doc.Authors, ", ") + ")"
	}
	if !doc.Processed {
		line += " [pending]"
	}
	return line
}

// oneLine keeps multi-line trace messages inside a single list item.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
