package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/pthm-cable/droplets/telemetry"
)

// Report renders a summary of a run: the final window and a plot of mean
// particle height across windows. Returns a short note for an empty run.
func Report(windows []telemetry.WindowStats) string {
	if len(windows) == 0 {
		return dim.Render("no stats windows recorded")
	}

	last := windows[len(windows)-1]
	summary := panelStyle.Render(statsTable(last))

	var resets, drags int
	for _, w := range windows {
		resets += w.Resets
		drags += w.DragStarts
	}
	totals := fmt.Sprintf("%s %d  %s %d  %s %d",
		dim.Render("windows"), len(windows),
		dim.Render("drags"), drags,
		dim.Render("resets"), resets,
	)

	parts := []string{
		headerStyle.Render("droplets · run report"),
		summary,
		totals,
	}

	if len(windows) > 1 {
		parts = append(parts, "", cyan.Render(heightPlot(windows)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// heightPlot charts mean particle height per window. Height is plotted as
// negative Y so the curve falls as the particles do.
func heightPlot(windows []telemetry.WindowStats) string {
	data := make([]float64, len(windows))
	for i, w := range windows {
		data[i] = -w.MeanY
	}

	caption := fmt.Sprintf("mean height (m, up) over %.1fs", windows[len(windows)-1].SimTimeSec)
	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption(caption),
	)
	return strings.TrimRight(graph, "\n")
}
