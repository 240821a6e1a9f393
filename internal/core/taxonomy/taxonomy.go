// Package taxonomy holds the fixed vocabulary of action verbs and entity types that
// appear on the timeline, together with their display descriptors.
//
// Lookups are total: keys the registry does not know resolve to a default descriptor,
// so producers can grow the vocabulary without breaking consumers.
package taxonomy

import (
	"sort"
	"strings"
)

const (
	// DefaultEntityKey is used when an action string carries no entity segment.
	DefaultEntityKey = "item"
	// DefaultActionKey is used when an action string carries no verb segment.
	DefaultActionKey = "updated"
)

// ActionDescriptor describes how an action verb is presented.
type ActionDescriptor struct {
	Key             string
	IconID          string
	ColorToken      string
	BackgroundToken string
	BorderToken     string
	Label           string
}

// EntityDescriptor describes how an entity type is presented.
type EntityDescriptor struct {
	Key    string
	IconID string
	Label  string
}

var defaultAction = ActionDescriptor{
	Key:             "",
	IconID:          "activity",
	ColorToken:      "gray-600",
	BackgroundToken: "gray-50",
	BorderToken:     "gray-200",
	Label:           "Action",
}

var defaultEntity = EntityDescriptor{
	Key:    "",
	IconID: "box",
	Label:  "Item",
}

var actions = map[string]ActionDescriptor{
	"created":     {Key: "created", IconID: "plus", ColorToken: "green-600", BackgroundToken: "green-50", BorderToken: "green-200", Label: "Created"},
	"updated":     {Key: "updated", IconID: "pencil", ColorToken: "blue-600", BackgroundToken: "blue-50", BorderToken: "blue-200", Label: "Updated"},
	"deleted":     {Key: "deleted", IconID: "trash", ColorToken: "red-600", BackgroundToken: "red-50", BorderToken: "red-200", Label: "Deleted"},
	"processed":   {Key: "processed", IconID: "cpu", ColorToken: "purple-600", BackgroundToken: "purple-50", BorderToken: "purple-200", Label: "Processed"},
	"uploaded":    {Key: "uploaded", IconID: "upload", ColorToken: "indigo-600", BackgroundToken: "indigo-50", BorderToken: "indigo-200", Label: "Uploaded"},
	"imported":    {Key: "imported", IconID: "download", ColorToken: "indigo-600", BackgroundToken: "indigo-50", BorderToken: "indigo-200", Label: "Imported"},
	"exported":    {Key: "exported", IconID: "share", ColorToken: "cyan-600", BackgroundToken: "cyan-50", BorderToken: "cyan-200", Label: "Exported"},
	"restored":    {Key: "restored", IconID: "rotate-ccw", ColorToken: "teal-600", BackgroundToken: "teal-50", BorderToken: "teal-200", Label: "Restored"},
	"archived":    {Key: "archived", IconID: "archive", ColorToken: "amber-600", BackgroundToken: "amber-50", BorderToken: "amber-200", Label: "Archived"},
	"completed":   {Key: "completed", IconID: "check", ColorToken: "emerald-600", BackgroundToken: "emerald-50", BorderToken: "emerald-200", Label: "Completed"},
	"assigned":    {Key: "assigned", IconID: "user-plus", ColorToken: "sky-600", BackgroundToken: "sky-50", BorderToken: "sky-200", Label: "Assigned"},
	"commented":   {Key: "commented", IconID: "message-square", ColorToken: "slate-600", BackgroundToken: "slate-50", BorderToken: "slate-200", Label: "Commented"},
	"linked":      {Key: "linked", IconID: "link", ColorToken: "violet-600", BackgroundToken: "violet-50", BorderToken: "violet-200", Label: "Linked"},
	"synthesized": {Key: "synthesized", IconID: "sparkles", ColorToken: "fuchsia-600", BackgroundToken: "fuchsia-50", BorderToken: "fuchsia-200", Label: "Synthesized"},
}

var entities = map[string]EntityDescriptor{
	"document": {Key: "document", IconID: "file-text", Label: "Document"},
	"fact":     {Key: "fact", IconID: "lightbulb", Label: "Fact"},
	"question": {Key: "question", IconID: "help-circle", Label: "Question"},
	"decision": {Key: "decision", IconID: "git-branch", Label: "Decision"},
	"risk":     {Key: "risk", IconID: "alert-triangle", Label: "Risk"},
	"action":   {Key: "action", IconID: "check-square", Label: "Action"},
	"person":   {Key: "person", IconID: "user", Label: "Person"},
	"contact":  {Key: "contact", IconID: "contact", Label: "Contact"},
	"team":     {Key: "team", IconID: "users", Label: "Team"},
	"project":  {Key: "project", IconID: "folder", Label: "Project"},
	"email":    {Key: "email", IconID: "mail", Label: "Email"},
	"meeting":  {Key: "meeting", IconID: "calendar", Label: "Meeting"},
	"comment":  {Key: "comment", IconID: "message-circle", Label: "Comment"},
}

// GetActionDescriptor returns the descriptor for key, or the default descriptor.
func GetActionDescriptor(key string) ActionDescriptor {
	if d, ok := actions[key]; ok {
		return d
	}
	return defaultAction
}

// GetEntityDescriptor returns the descriptor for key, or the default descriptor.
func GetEntityDescriptor(key string) EntityDescriptor {
	if d, ok := entities[key]; ok {
		return d
	}
	return defaultEntity
}

// IsKnownAction reports whether key has its own descriptor.
func IsKnownAction(key string) bool {
	_, ok := actions[key]
	return ok
}

// IsKnownEntity reports whether key has its own descriptor.
func IsKnownEntity(key string) bool {
	_, ok := entities[key]
	return ok
}

// ParseAction splits "<entity>.<verb>" into its keys. Segments past the second are ignored.
// A string without a separator, or an empty segment, falls back to DefaultEntityKey and
// DefaultActionKey.
func ParseAction(action string) (entityKey, actionKey string) {
	entityKey, actionKey = DefaultEntityKey, DefaultActionKey

	parts := strings.SplitN(action, ".", 3)
	if len(parts) < 2 {
		return entityKey, actionKey
	}
	if parts[0] != "" {
		entityKey = parts[0]
	}
	if parts[1] != "" {
		actionKey = parts[1]
	}
	return entityKey, actionKey
}

// ActionKeys lists the registered action keys in sorted order.
func ActionKeys() []string {
	return sortedKeys(actions)
}

// EntityKeys lists the registered entity keys in sorted order.
func EntityKeys() []string {
	return sortedKeys(entities)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
