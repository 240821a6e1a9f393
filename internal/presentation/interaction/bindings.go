package interaction

// Command is what a keystroke asks the timeline view to do.
type Command int

const (
	CmdNone Command = iota
	CmdQuit
	CmdFocusSearch
	CmdBlurSearch
	CmdSearchInput
	CmdSearchBackspace
	CmdCollapse
	CmdUp
	CmdDown
	CmdToggleDetail
	CmdLoadMore
	CmdSwitchTab
	CmdToggleActionPill
	CmdToggleEntityPill
	CmdClearFilters
	CmdExportJSON
	CmdExportCSV
	CmdRefresh
	CmdHelp
)

var commandNames = map[Command]string{
	CmdNone:             "none",
	CmdQuit:             "quit",
	CmdFocusSearch:      "focus-search",
	CmdBlurSearch:       "blur-search",
	CmdSearchInput:      "search-input",
	CmdSearchBackspace:  "search-backspace",
	CmdCollapse:         "collapse",
	CmdUp:               "up",
	CmdDown:             "down",
	CmdToggleDetail:     "toggle-detail",
	CmdLoadMore:         "load-more",
	CmdSwitchTab:        "switch-tab",
	CmdToggleActionPill: "toggle-action",
	CmdToggleEntityPill: "toggle-entity",
	CmdClearFilters:     "clear-filters",
	CmdExportJSON:       "export-json",
	CmdExportCSV:        "export-csv",
	CmdRefresh:          "refresh",
	CmdHelp:             "help",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

var normalBindings = map[rune]Command{
	'q': CmdQuit,
	'/': CmdFocusSearch,
	'j': CmdDown,
	'k': CmdUp,
	' ': CmdToggleDetail,
	'm': CmdLoadMore,
	't': CmdSwitchTab,
	'a': CmdToggleActionPill,
	'e': CmdToggleEntityPill,
	'c': CmdClearFilters,
	'J': CmdExportJSON,
	'C': CmdExportCSV,
	'r': CmdRefresh,
	'h': CmdHelp,
	'?': CmdHelp,
}

// Resolve maps a key event to a command. While the search field has focus, printable
// keys edit the query and only Enter, Escape, Backspace and Ctrl+C keep a meaning.
func Resolve(ev KeyEvent, searchFocused bool) Command {
	if ev.Type == KeyCtrlC {
		return CmdQuit
	}

	if searchFocused {
		switch ev.Type {
		case KeyEscape, KeyEnter:
			return CmdBlurSearch
		case KeyBackspace:
			return CmdSearchBackspace
		case KeyChar:
			return CmdSearchInput
		case KeyUp:
			return CmdUp
		case KeyDown:
			return CmdDown
		}
		return CmdNone
	}

	switch ev.Type {
	case KeyEscape:
		return CmdCollapse
	case KeyEnter:
		return CmdToggleDetail
	case KeyTab:
		return CmdSwitchTab
	case KeyUp:
		return CmdUp
	case KeyDown:
		return CmdDown
	case KeyChar:
		if cmd, ok := normalBindings[ev.Key]; ok {
			return cmd
		}
	}
	return CmdNone
}
