package display

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/penwyp/go-activity-timeline/internal/core/model"
	"github.com/penwyp/go-activity-timeline/internal/core/taxonomy"
	"github.com/penwyp/go-activity-timeline/internal/core/timeline"
	"github.com/penwyp/go-activity-timeline/internal/presentation/formatter"
	"github.com/penwyp/go-activity-timeline/internal/util"
)

const (
	defaultWidth  = 100
	defaultHeight = 30
	headerLines   = 4
	footerLines   = 2
)

// TerminalDisplay draws the interactive timeline into the alternate screen.
type TerminalDisplay struct {
	out               io.Writer
	fd                int
	inAlternateScreen bool
	size              func() (int, int)
}

func NewTerminalDisplay() *TerminalDisplay {
	td := &TerminalDisplay{out: os.Stdout, fd: int(os.Stdout.Fd())}
	td.size = td.terminalSize
	return td
}

// NewWriterDisplay renders into w at a fixed size.
func NewWriterDisplay(w io.Writer, width, height int) *TerminalDisplay {
	return &TerminalDisplay{
		out:  w,
		fd:   -1,
		size: func() (int, int) { return width, height },
	}
}

func (td *TerminalDisplay) terminalSize() (int, int) {
	if !term.IsTerminal(td.fd) {
		return defaultWidth, defaultHeight
	}
	w, h, err := term.GetSize(td.fd)
	if err != nil || w <= 0 || h <= 0 {
		return defaultWidth, defaultHeight
	}
	return w, h
}

// EnterAlternateScreen switches to alternate screen buffer
func (td *TerminalDisplay) EnterAlternateScreen() {
	if td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.AltScreenOn+util.ClearScreen+util.MoveCursorHome+util.HideCursor)
	td.inAlternateScreen = true
}

// ExitAlternateScreen returns to normal screen buffer
func (td *TerminalDisplay) ExitAlternateScreen() {
	if !td.inAlternateScreen {
		return
	}
	fmt.Fprint(td.out, util.ClearScreen+util.MoveCursorHome+util.ShowCursor+util.AltScreenOff)
	td.inAlternateScreen = false
}

// Render draws a full frame. Lines are overwritten in place and the rest of the screen cleared.
func (td *TerminalDisplay) Render(state ViewState) {
	width, height := td.size()
	lines := td.BuildFrame(state, width, height)

	var b strings.Builder
	b.WriteString(util.MoveCursorHome)
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\r\n")
		}
		b.WriteString(line)
		b.WriteString("\033[K")
	}
	// No newline after the last line: a full-height frame would scroll.
	b.WriteString("\033[J")
	fmt.Fprint(td.out, b.String())
}

// RenderLoading draws a single-line placeholder while the first fetch runs.
func (td *TerminalDisplay) RenderLoading(message string) {
	fmt.Fprint(td.out, util.MoveCursorHome+util.FormatHeaderTitle("Activity Timeline")+"\033[K\r\n\r\n  "+message+"\033[K\033[J")
}

// BuildFrame lays out one frame as lines no wider than width.
func (td *TerminalDisplay) BuildFrame(state ViewState, width, height int) []string {
	if state.ShowHelp {
		return helpLines(width)
	}

	lines := make([]string, 0, height)
	lines = append(lines, headerLine(state, width))
	lines = append(lines, sourcesLine(state))
	lines = append(lines, filterLine(state))
	lines = append(lines, util.FormatSectionSeparator(width))

	bodyHeight := height - headerLines - footerLines
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	lines = append(lines, bodyWindow(bodyLines(state, width), bodyHeight)...)

	lines = append(lines, util.FormatSectionSeparator(width))
	lines = append(lines, footerLine(state, width))
	return lines
}

func headerLine(state ViewState, width int) string {
	counts := make(map[model.Source]int, len(state.Sources))
	for _, s := range state.Sources {
		counts[s.Source] = s.Count
	}
	tab := func(t model.Tab, name string, n int) string {
		label := fmt.Sprintf(" %s (%d) ", name, n)
		if state.Tab == t {
			return util.Colorize(util.ColorReverse, label)
		}
		return label
	}
	title := util.FormatHeaderTitle("Activity Timeline")
	tabs := tab(model.TabActivity, "Activity", counts[model.SourceActivity]) + " " +
		tab(model.TabProcessing, "Processing", counts[model.SourceProcessing])

	refreshed := ""
	if !state.LastRefresh.IsZero() {
		refreshed = util.Colorize(util.ColorGray, "updated "+util.FormatClock(state.LastRefresh, location(state)))
	}
	return title + "  " + tabs + "  " + refreshed
}

func sourcesLine(state ViewState) string {
	parts := make([]string, 0, len(state.Sources))
	for _, s := range state.Sources {
		var status string
		switch s.Status.State {
		case timeline.SourceReady:
			status = util.Colorize(util.ColorGreen, fmt.Sprintf("ok (%d)", s.Count))
		case timeline.SourceFailed:
			msg := "failed"
			if s.Status.Err != nil {
				msg += ": " + util.TruncateToWidth(s.Status.Err.Error(), 30)
			}
			status = util.Colorize(util.ColorRed, msg)
		default:
			status = util.Colorize(util.ColorYellow, "loading…")
		}
		parts = append(parts, fmt.Sprintf("%s: %s", s.Source, status))
	}
	return "  " + strings.Join(parts, "   ")
}

func filterLine(state ViewState) string {
	search := state.SearchInput
	if state.SearchFocused {
		search = util.Colorize(util.ColorCyan, "/"+search+"▏")
	} else if search == "" {
		search = util.Colorize(util.ColorGray, "press / to search")
	}

	pill := func(name, value string) string {
		if value == "" {
			return util.Colorize(util.ColorGray, name+": all")
		}
		return util.Colorize(util.ColorMagenta, "["+name+": "+value+" ✕]")
	}
	parts := []string{
		"  Search: " + search,
		pill("action", state.Filter.ActionFilter),
		pill("entity", state.Filter.EntityFilter),
	}
	if state.Filter.DateFrom != "" || state.Filter.DateTo != "" {
		parts = append(parts, util.Colorize(util.ColorMagenta,
			fmt.Sprintf("[%s … %s]", orDash(state.Filter.DateFrom), orDash(state.Filter.DateTo))))
	}
	return strings.Join(parts, "  ")
}

type bodyLine struct {
	text     string
	selected bool
}

func bodyLines(state ViewState, width int) []bodyLine {
	if len(state.Result.Groups) == 0 {
		msg := "No activity yet."
		if state.Result.Total > 0 {
			msg = "No entries match the current filters. Press c to clear them."
		}
		return []bodyLine{{text: "  " + util.Colorize(util.ColorGray, msg)}}
	}

	loc := location(state)
	var lines []bodyLine
	index := 0
	for _, group := range state.Result.Groups {
		label := group.Label
		if group.IsToday {
			label = util.Colorize(util.ColorGreen, label)
		}
		lines = append(lines, bodyLine{text: util.FormatDataTitle(label) + util.Colorize(util.ColorGray, fmt.Sprintf("  %d", len(group.Entries)))})

		for _, e := range group.Entries {
			selected := index == state.Selected
			lines = append(lines, bodyLine{text: entryLine(e, loc, width, selected), selected: selected})
			if e.ID == state.ExpandedID {
				for _, d := range detailLines(e, loc, width) {
					lines = append(lines, bodyLine{text: d})
				}
			}
			index++
		}
	}
	if state.Result.HasMore {
		remaining := len(state.Result.Filtered) - index
		lines = append(lines, bodyLine{text: util.Colorize(util.ColorCyan, fmt.Sprintf("  … %d more, press m to load more", remaining))})
	}
	return lines
}

func entryLine(e timeline.TimelineEntry, loc *time.Location, width int, selected bool) string {
	action := taxonomy.GetActionDescriptor(e.ActionKey)
	verb := formatter.ActionLabel(e.ActionKey)
	badge := util.PadToWidth(verb, 11)
	entity := util.PadToWidth(formatter.EntityLabel(e.EntityKey), 10)

	text := e.Title
	if actor := e.ActorName(); actor != "" {
		text += " · " + actor
	}
	prefix := "  "
	if selected {
		prefix = "▸ "
	}
	clock := util.FormatClock(e.Time, loc)
	room := width - util.GetDisplayWidth(fmt.Sprintf("%s%s  %s %s ", prefix, clock, badge, entity))
	if !selected {
		badge = util.Colorize(tokenColor(action.ColorToken), badge)
	}
	head := fmt.Sprintf("%s%s  %s %s ", prefix, clock, badge, entity)
	line := head + util.TruncateToWidth(text, room)
	if selected {
		return util.ColorReverse + util.PadToWidth(line, width) + util.ColorReset
	}
	return line
}

func detailLines(e timeline.TimelineEntry, loc *time.Location, width int) []string {
	indent := "      "
	room := width - len(indent)
	var out []string
	add := func(label, value string) {
		if value == "" {
			return
		}
		out = append(out, indent+util.Colorize(util.ColorGray, label+": ")+util.TruncateToWidth(value, room-len(label)-2))
	}
	add("Description", e.Description)
	add("Actor", e.ActorName())
	if e.HasTime() {
		add("When", e.Time.In(loc).Format("Mon Jan 2 2006 15:04:05 MST"))
	} else {
		add("When", orDash(e.Timestamp))
	}
	add("Source", string(e.Source))
	add("ID", e.ID)

	keys := make([]string, 0, len(e.Metadata))
	for k := range e.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		add(k, metadataValue(k, e.Metadata[k]))
	}
	return out
}

func metadataValue(key string, v any) string {
	var n float64
	switch x := v.(type) {
	case int:
		n = float64(x)
	case float64:
		n = x
	default:
		return fmt.Sprint(v)
	}
	switch key {
	case "tokens_used":
		return util.FormatNumber(int(n))
	case "duration_ms":
		return util.FormatDuration(time.Duration(n) * time.Millisecond)
	}
	return fmt.Sprint(v)
}

// bodyWindow scrolls so the selected line stays visible.
func bodyWindow(lines []bodyLine, height int) []string {
	start := 0
	for i, l := range lines {
		if l.selected && i >= height {
			start = i - height + 1
			break
		}
	}
	end := start + height
	if end > len(lines) {
		end = len(lines)
	}
	out := make([]string, 0, height)
	for _, l := range lines[start:end] {
		out = append(out, l.text)
	}
	return out
}

func footerLine(state ViewState, width int) string {
	visible := len(state.Result.VisibleEntries())
	counts := fmt.Sprintf("  %d of %d shown", visible, len(state.Result.Filtered))
	if len(state.Result.Filtered) != state.Result.Total {
		counts += fmt.Sprintf(" (%d total)", state.Result.Total)
	}
	room := width - util.GetDisplayWidth(counts) - 2
	if room <= 0 {
		return counts
	}
	if state.StatusMessage != "" {
		return counts + "  " + util.Colorize(util.ColorYellow, util.TruncateToWidth(state.StatusMessage, room))
	}
	hints := "/ search  j/k move  ⏎ details  m more  t tab  a/e pill  c clear  J/C export  h help  q quit"
	return counts + "  " + util.Colorize(util.ColorGray, util.TruncateToWidth(hints, room))
}

func helpLines(width int) []string {
	lines := []string{
		util.FormatHeaderTitle("Activity Timeline - Help"),
		util.FormatSectionSeparator(width),
		"",
		"Keyboard Shortcuts:",
		"",
		"  /          Focus search (Enter or Esc to leave)",
		"  Esc        Collapse the open detail panel",
		"  j/k ↑/↓    Move the selection",
		"  Enter/Spc  Toggle the detail panel",
		"  m          Load more entries",
		"  Tab/t      Switch between Activity and Processing",
		"  a          Filter by the selected entry's action (again to clear)",
		"  e          Filter by the selected entry's entity (again to clear)",
		"  c          Clear search and filters",
		"  J / C      Export the filtered entries as JSON / CSV",
		"  r          Refresh both sources",
		"  h          Toggle this help",
		"  q/Ctrl+C   Quit",
		"",
		util.FormatSectionSeparator(width),
		"Press 'h' to return...",
	}
	return lines
}

var tokenColors = map[string]string{
	"green":   util.ColorGreen,
	"emerald": util.ColorGreen,
	"teal":    util.ColorCyan,
	"cyan":    util.ColorCyan,
	"sky":     util.ColorCyan,
	"blue":    util.ColorBlue,
	"indigo":  util.ColorBlue,
	"violet":  util.ColorMagenta,
	"purple":  util.ColorMagenta,
	"fuchsia": util.ColorMagenta,
	"red":     util.ColorRed,
	"amber":   util.ColorYellow,
	"slate":   util.ColorGray,
}

// tokenColor maps a palette token such as "green-600" to the nearest ANSI color.
func tokenColor(token string) string {
	hue, _, _ := strings.Cut(token, "-")
	return tokenColors[hue]
}

func location(state ViewState) *time.Location {
	if state.Location != nil {
		return state.Location
	}
	return time.Local
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
