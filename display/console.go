package display

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
)

// Console draws the panel on a terminal.
type Console struct {
	w       io.Writer
	columns int
	style   lipgloss.Style
	logger  *slog.Logger

	lastCurrent string
	lastNext    string
	drawn       bool
}

func NewConsole(w io.Writer, columns int, border bool, logger *slog.Logger) *Console {
	if columns <= 0 {
		columns = DefaultColumns
	}

	style := lipgloss.NewStyle().Width(columns)
	if border {
		style = style.Border(lipgloss.RoundedBorder()).Padding(0, 1)
	}

	return &Console{
		w:       w,
		columns: columns,
		style:   style,
		logger:  logger,
	}
}

// Show redraws the panel. Identical consecutive frames are skipped.
func (c *Console) Show(current, next string) {
	current = Truncate(current, c.columns)
	next = Truncate(next, c.columns)

	if c.drawn && current == c.lastCurrent && next == c.lastNext {
		return
	}

	if _, err := fmt.Fprintln(c.w, c.Render(current, next)); err != nil {
		c.logger.Error("Failed to draw display", "error", err)
		return
	}

	c.lastCurrent, c.lastNext, c.drawn = current, next, true
}

// Render returns the frame without writing it.
func (c *Console) Render(current, next string) string {
	return c.style.Render(current + "\n" + next)
}
