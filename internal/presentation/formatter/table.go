package formatter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/penwyp/go-activity-timeline/internal/core/pipeline"
	"github.com/penwyp/go-activity-timeline/internal/core/timeline"
	"github.com/penwyp/go-activity-timeline/internal/util"
)

const maxTitleWidth = 48

// TableFormatter prints one boxed table per day group.
type TableFormatter struct {
	headers []string
	loc     *time.Location
}

func NewTableFormatter(loc *time.Location) *TableFormatter {
	if loc == nil {
		loc = time.Local
	}
	return &TableFormatter{
		headers: []string{"Time", "Action", "Entity", "Title", "Actor"},
		loc:     loc,
	}
}

func (f *TableFormatter) Format(w io.Writer, result pipeline.Result) error {
	if len(result.Groups) == 0 {
		_, err := fmt.Fprintln(w, "No activity matches the current filters.")
		return err
	}

	for i, group := range result.Groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		heading := group.Label
		if group.DateKey != timeline.UnknownDateKey && group.Label != group.DateKey {
			heading = fmt.Sprintf("%s (%s)", group.Label, group.DateKey)
		}
		fmt.Fprintf(w, "%s  %d\n", heading, len(group.Entries))

		rows := make([][]string, len(group.Entries))
		for j, e := range group.Entries {
			rows[j] = f.row(e)
		}
		widths := f.calculateColumnWidths(rows)

		f.printBorder(w, widths, "top")
		f.printRow(w, f.headers, widths)
		f.printBorder(w, widths, "middle")
		for _, row := range rows {
			f.printRow(w, row, widths)
		}
		f.printBorder(w, widths, "bottom")
	}

	shown := len(result.VisibleEntries())
	fmt.Fprintf(w, "\nShowing %d of %d entries", shown, len(result.Filtered))
	if len(result.Filtered) != result.Total {
		fmt.Fprintf(w, " (%d before filters)", result.Total)
	}
	if result.HasMore {
		fmt.Fprint(w, ", raise --limit to see more")
	}
	_, err := fmt.Fprintf(w, "\n%s\n", Summarize(result.Filtered).String())
	return err
}

func (f *TableFormatter) row(e timeline.TimelineEntry) []string {
	title := e.Title
	if e.Description != "" {
		title += " · " + e.Description
	}
	return []string{
		util.FormatClock(e.Time, f.loc),
		ActionLabel(e.ActionKey),
		EntityLabel(e.EntityKey),
		util.TruncateToWidth(title, maxTitleWidth),
		e.ActorName(),
	}
}

// calculateColumnWidths sizes each column to its widest cell in display cells.
func (f *TableFormatter) calculateColumnWidths(rows [][]string) []int {
	widths := make([]int, len(f.headers))
	for i, header := range f.headers {
		widths[i] = util.GetDisplayWidth(header)
	}
	for _, row := range rows {
		for i, value := range row {
			if w := util.GetDisplayWidth(value); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func (f *TableFormatter) printBorder(w io.Writer, widths []int, borderType string) {
	var left, middle, right string
	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	default:
		left, middle, right = "└", "┴", "┘"
	}

	var b strings.Builder
	b.WriteString(left)
	for i, width := range widths {
		b.WriteString(strings.Repeat("─", width+2))
		if i < len(widths)-1 {
			b.WriteString(middle)
		}
	}
	b.WriteString(right)
	fmt.Fprintln(w, b.String())
}

func (f *TableFormatter) printRow(w io.Writer, values []string, widths []int) {
	var b strings.Builder
	b.WriteString("│")
	for i, value := range values {
		b.WriteString(" ")
		b.WriteString(util.PadToWidth(value, widths[i]))
		b.WriteString(" │")
	}
	fmt.Fprintln(w, b.String())
}
