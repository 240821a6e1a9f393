package model

// RawActor is the actor block attached to an activity-log event.
type RawActor struct {
	DisplayName string `json:"display_name,omitempty"`
	Username    string `json:"username,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// RawActivityEvent is one audit-trail record. Action is "<entity>.<verb>".
type RawActivityEvent struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	Actor     *RawActor      `json:"actor,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt string         `json:"created_at"`
}

// ActivityLogResponse is the envelope returned by the activity-log endpoint.
type ActivityLogResponse struct {
	Activities []RawActivityEvent `json:"activities"`
	Total      int                `json:"total"`
}

// RawProcessingEvent is one document-processing session. It carries no stable identifier.
type RawProcessingEvent struct {
	Filename       string `json:"filename,omitempty"`
	Status         string `json:"status,omitempty"`
	ModelUsed      string `json:"model_used,omitempty"`
	TokensUsed     int    `json:"tokens_used,omitempty"`
	DurationMs     int    `json:"duration_ms,omitempty"`
	FactsExtracted int    `json:"facts_extracted,omitempty"`
	QuestionsAdded int    `json:"questions_added,omitempty"`
	DecisionsAdded int    `json:"decisions_added,omitempty"`
	RisksAdded     int    `json:"risks_added,omitempty"`
	ActionsAdded   int    `json:"actions_added,omitempty"`
	PeopleAdded    int    `json:"people_added,omitempty"`
	Timestamp      string `json:"timestamp"`
}

// ExtractionCount is one named counter of a processing session.
type ExtractionCount struct {
	Field string
	Label string
	Count int
}

// ExtractionCounts returns the extraction counters in display order.
func (e RawProcessingEvent) ExtractionCounts() []ExtractionCount {
	return []ExtractionCount{
		{Field: "facts_extracted", Label: "facts", Count: e.FactsExtracted},
		{Field: "questions_added", Label: "questions", Count: e.QuestionsAdded},
		{Field: "decisions_added", Label: "decisions", Count: e.DecisionsAdded},
		{Field: "risks_added", Label: "risks", Count: e.RisksAdded},
		{Field: "actions_added", Label: "actions", Count: e.ActionsAdded},
		{Field: "people_added", Label: "people", Count: e.PeopleAdded},
	}
}

// FileEvent is a change notification for a watched source file.
type FileEvent struct {
	Path      string
	Operation string
}
