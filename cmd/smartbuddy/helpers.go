package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/germanamz/smartbuddy/pkg/engine"
	"github.com/mattn/go-runewidth"
)

// mdRenderer renders markdown to terminal-formatted output.
var mdRenderer *glamour.TermRenderer

func initMarkdownRenderer(width int) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return
	}
	mdRenderer = r
}

// renderMarkdown converts markdown text to terminal-formatted output.
func renderMarkdown(text string) string {
	if mdRenderer == nil {
		return text
	}
	out, err := mdRenderer.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

// preview returns s on one line, cut to at most width terminal cells.
// Wide runes such as Devanagari conjuncts and emoji are measured by cell.
func preview(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// fmtDuration formats a duration for display.
func fmtDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	min := int(d.Minutes())
	sec := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", min, sec)
}

// stageLabel describes a pipeline event for the progress line.
func stageLabel(e engine.Event) string {
	switch e.Stage {
	case engine.StageRequesting:
		return "Asking the model..."
	case engine.StageRetrying:
		return fmt.Sprintf("Attempt %d failed, retrying in %s...", e.Attempt, fmtDuration(e.Delay))
	case engine.StageCheckingLanguage:
		return "Checking the script..."
	case engine.StageCorrecting:
		return fmt.Sprintf("Only %.0f%% in the right script, rewriting...", e.Ratio*100)
	case engine.StageAccepted:
		return "Done"
	case engine.StageFailed:
		return "Failed"
	default:
		return "Starting..."
	}
}
