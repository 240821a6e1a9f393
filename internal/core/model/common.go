package model

// Tab selects which raw stream feeds the timeline.
type Tab string

const (
	TabActivity   Tab = "activity"
	TabProcessing Tab = "processing"
)

// ParseTab maps user input to a Tab. ok is false for unknown names.
func ParseTab(s string) (Tab, bool) {
	switch Tab(s) {
	case TabActivity, TabProcessing:
		return Tab(s), true
	}
	return "", false
}

// Other returns the tab that is not t.
func (t Tab) Other() Tab {
	if t == TabProcessing {
		return TabActivity
	}
	return TabProcessing
}

// Source tags where a timeline entry came from.
type Source string

const (
	SourceActivity   Source = "activity"
	SourceProcessing Source = "processing"
)

// Export formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)
