package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Yates-Labs/anar/internal/engine"
	"github.com/Yates-Labs/anar/internal/orchestrator"
	"github.com/Yates-Labs/anar/internal/rag"
	"github.com/Yates-Labs/anar/internal/store/sqlite"
)

// LipGloss signature purple/pink palette
var (
	headerColor  = lipgloss.Color("#F780FF") // Bright pink/magenta
	idColor      = lipgloss.Color("#BD93F9") // Purple
	numberColor  = lipgloss.Color("#FF79C6") // Pink
	textColor    = lipgloss.Color("#E9E9F4") // Light purple/white
	borderColor  = lipgloss.Color("#6272A4") // Muted purple
	summaryColor = lipgloss.Color("#8BE9FD") // Cyan accent
	errorColor   = lipgloss.Color("#FF5555")
)

type column struct {
	title string
	width int
	color lipgloss.Color
	right bool
}

func renderTable(w io.Writer, columns []column, rows [][]string) {
	headerStyle := lipgloss.NewStyle().
		Foreground(headerColor).
		Bold(true).
		Padding(0, 1)
	borderStyle := lipgloss.NewStyle().Foreground(borderColor)
	sep := borderStyle.Render("│")

	headers := make([]string, len(columns))
	separatorParts := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = headerStyle.Width(c.width).Render(c.title)
		separatorParts[i] = strings.Repeat("─", c.width)
	}
	fmt.Fprintln(w, strings.Join(headers, sep))
	fmt.Fprintln(w, borderStyle.Render(strings.Join(separatorParts, "┼")))

	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, c := range columns {
			style := lipgloss.NewStyle().
				Foreground(c.color).
				Padding(0, 1).
				Width(c.width)
			if c.right {
				style = style.Align(lipgloss.Right)
			}
			cells[i] = style.Render(row[i])
		}
		fmt.Fprintln(w, strings.Join(cells, sep))
	}
}

func renderSummary(w io.Writer, format string, args ...any) {
	style := lipgloss.NewStyle().
		Foreground(summaryColor).
		Italic(true)
	fmt.Fprintln(w)
	fmt.Fprintln(w, style.Render(fmt.Sprintf(format, args...)))
}

func spanString(s engine.Span) string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

func renderStructure(w io.Writer, s *engine.NarrativeStructure) {
	title := lipgloss.NewStyle().Foreground(idColor).Bold(true)
	fmt.Fprintln(w, title.Render(fmt.Sprintf("%s  %s", s.Title, s.ID)))
	fmt.Fprintln(w)

	frames := append([]engine.Frame{s.Root}, s.Frames...)
	rows := make([][]string, len(frames))
	for i, f := range frames {
		parent := "-"
		if f.ParentLevel != nil {
			parent = s.ParentOf(i - 1).ID
		}
		rows[i] = []string{
			strings.Repeat("  ", f.Level) + f.ID,
			strconv.Itoa(f.Level),
			f.Narrator,
			spanString(f.Span),
			parent,
		}
	}
	renderTable(w, []column{
		{title: "FRAME", width: 16, color: idColor},
		{title: "LEVEL", width: 7, color: numberColor, right: true},
		{title: "NARRATOR", width: 20, color: textColor},
		{title: "SPAN", width: 12, color: numberColor},
		{title: "PARENT", width: 8, color: idColor},
	}, rows)

	if len(s.CulturalElements) > 0 {
		fmt.Fprintln(w)
		rows = make([][]string, len(s.CulturalElements))
		for i, el := range s.CulturalElements {
			rows[i] = []string{
				string(el.Type),
				string(el.Context),
				string(el.Significance),
				strconv.FormatFloat(el.Confidence, 'f', 2, 64),
				el.Text,
			}
		}
		renderTable(w, []column{
			{title: "ELEMENT", width: 21, color: idColor},
			{title: "CONTEXT", width: 20, color: textColor},
			{title: "SIGNIFICANCE", width: 14, color: textColor},
			{title: "CONF", width: 6, color: numberColor, right: true},
			{title: "TEXT", width: 30, color: textColor},
		}, rows)
	}

	m := s.Metadata
	renderSummary(w, "Depth %d, %d frames, %d cultural elements (%d markers, dropped: %d low confidence, %d missing context, %d missing attributes)",
		s.FrameLevel, len(s.Frames), len(s.CulturalElements), m.MarkerCount,
		m.DroppedLowConfidence, m.DroppedMissingContext, m.DroppedMissingAttributes)
}

func renderResults(w io.Writer, results []orchestrator.DocumentResult) {
	rows := make([][]string, len(results))
	failed := 0
	for i, r := range results {
		frames, elements, status := "-", "-", "ok"
		if r.Structure != nil {
			frames = strconv.Itoa(len(r.Structure.Frames))
			elements = strconv.Itoa(len(r.Structure.CulturalElements))
		}
		if r.Err != nil {
			failed++
			status = string(engine.Classify(r.Err))
		}
		rows[i] = []string{strconv.Itoa(r.Index), r.Title, frames, elements, status}
	}
	renderTable(w, []column{
		{title: "#", width: 6, color: numberColor, right: true},
		{title: "TITLE", width: 32, color: idColor},
		{title: "FRAMES", width: 8, color: numberColor, right: true},
		{title: "ELEMENTS", width: 10, color: numberColor, right: true},
		{title: "STATUS", width: 22, color: errorColor},
	}, rows)
	renderSummary(w, "Total: %d documents, %d failed", len(results), failed)
}

func renderSummaries(w io.Writer, summaries []sqlite.Summary) {
	rows := make([][]string, len(summaries))
	for i, s := range summaries {
		rows[i] = []string{
			s.DocumentID,
			s.Title,
			strconv.Itoa(s.FrameLevel),
			strconv.Itoa(s.ElementCount),
			s.SavedAt.Format("Jan 02, 15:04"),
		}
	}
	renderTable(w, []column{
		{title: "DOCUMENT", width: 38, color: idColor},
		{title: "TITLE", width: 28, color: textColor},
		{title: "DEPTH", width: 7, color: numberColor, right: true},
		{title: "ELEMENTS", width: 10, color: numberColor, right: true},
		{title: "SAVED", width: 15, color: textColor},
	}, rows)
	renderSummary(w, "Total: %d documents", len(summaries))
}

func renderHits(w io.Writer, hits []rag.ElementHit) {
	rows := make([][]string, len(hits))
	for i, h := range hits {
		rows[i] = []string{
			strconv.FormatFloat(float64(h.Score), 'f', 3, 32),
			string(h.ElementType),
			string(h.Context),
			h.Text,
			h.Title,
		}
	}
	renderTable(w, []column{
		{title: "SCORE", width: 7, color: numberColor, right: true},
		{title: "ELEMENT", width: 21, color: idColor},
		{title: "CONTEXT", width: 20, color: textColor},
		{title: "TEXT", width: 30, color: textColor},
		{title: "DOCUMENT", width: 28, color: textColor},
	}, rows)
}
