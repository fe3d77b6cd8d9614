// Package change holds the data model shared by every pipeline stage.
package change

import "time"

// Kind is what happened to a file.
type Kind string

const (
	Created  Kind = "created"
	Modified Kind = "modified"
	Deleted  Kind = "deleted"
	Moved    Kind = "moved"
)

// Valid reports whether k is one of the four known kinds.
func (k Kind) Valid() bool {
	switch k {
	case Created, Modified, Deleted, Moved:
		return true
	}
	return false
}

// Notification is one file event as delivered by the watcher.
// Dest is set only for Moved.
type Notification struct {
	Path      string
	Kind      Kind
	Timestamp time.Time
	Dest      string
}

// Target returns the path whose content should be scored.
func (n Notification) Target() string {
	if n.Kind == Moved && n.Dest != "" {
		return n.Dest
	}
	return n.Path
}

// Details is the per-change analysis attached to a scored change.
type Details struct {
	LinesChanged     int      `json:"lines_changed"`
	FunctionsAdded   []string `json:"functions_added"`
	Language         string   `json:"language"`
	HasSecurity      bool     `json:"has_security"`
	HasErrorHandling bool     `json:"has_error_handling"`
	HasTests         bool     `json:"has_tests"`
	Unreadable       bool     `json:"unreadable,omitempty"`
	Binary           bool     `json:"binary,omitempty"`
	Error            string   `json:"error,omitempty"`
}

// Scored is a notification after the scoring engine has seen it.
// It is not modified after creation.
type Scored struct {
	Path      string
	Dest      string
	Kind      Kind
	Timestamp time.Time
	Score     int
	Details   Details
}

// File returns the path a reader would recognize the change by.
func (s Scored) File() string {
	if s.Kind == Moved && s.Dest != "" {
		return s.Dest
	}
	return s.Path
}
