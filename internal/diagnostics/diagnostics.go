// Package diagnostics collects per-item degradations encountered while decorating an artifact.
// A failed field fill, image embed or page copy is recorded here instead of aborting the artifact.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// Scopes name the step that degraded.
const (
	ScopeField      = "field"
	ScopeProvenance = "provenance"
	ScopeOverlay    = "overlay"
	ScopeAppend     = "append"
	ScopeImage      = "image"
	ScopeRender     = "render"
)

// ItemError records one skipped item.
type ItemError struct {
	Scope string `json:"scope"`
	Key   string `json:"key"`
	Err   error  `json:"-"`
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Scope, e.Key, e.Err)
}

func (e ItemError) Unwrap() error {
	return e.Err
}

func (e ItemError) MarshalJSON() ([]byte, error) {
	msg := ""
	if e.Err != nil {
		msg = e.Err.Error()
	}
	return json.Marshal(struct {
		Scope string `json:"scope"`
		Key   string `json:"key"`
		Error string `json:"error"`
	}{e.Scope, e.Key, msg})
}

// List accumulates item errors and logs each one at Warn.
type List struct {
	logger *slog.Logger
	items  []ItemError
}

func New(logger *slog.Logger) *List {
	return &List{logger: logger}
}

// Record adds an item error when err is non-nil and reports whether it did.
func (l *List) Record(scope, key string, err error) bool {
	if err == nil {
		return false
	}
	if l.logger != nil {
		l.logger.Warn("artifact item degraded", "scope", scope, "key", key, "error", err)
	}
	l.items = append(l.items, ItemError{Scope: scope, Key: key, Err: err})
	return true
}

// Items returns the recorded errors in the order they occurred.
func (l *List) Items() []ItemError {
	if l == nil {
		return nil
	}
	return append([]ItemError(nil), l.items...)
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// Has reports whether an error was recorded for scope and key.
func (l *List) Has(scope, key string) bool {
	for _, it := range l.Items() {
		if it.Scope == scope && it.Key == key {
			return true
		}
	}
	return false
}
