// Package status delivers human-readable progress updates to the host UI.
// Emitters are purely observational: a failing or absent emitter never
// affects tool control flow.
package status

import "fmt"

// Update is one progress event.
type Update struct {
	Level       string // "info" | "error"
	Description string
	Done        bool
}

// Emitter receives progress updates during a tool run.
type Emitter interface {
	Emit(u Update)
}

// EmitterFunc adapts a function to the Emitter interface.
type EmitterFunc func(u Update)

func (f EmitterFunc) Emit(u Update) { f(u) }

// Nop discards all updates.
var Nop Emitter = EmitterFunc(func(Update) {})

// Info emits an in-progress informational update.
func Info(e Emitter, format string, args ...any) {
	if e == nil {
		return
	}
	e.Emit(Update{Level: "info", Description: fmt.Sprintf(format, args...)})
}

// Error emits a terminal error update.
func Error(e Emitter, format string, args ...any) {
	if e == nil {
		return
	}
	e.Emit(Update{Level: "error", Description: fmt.Sprintf(format, args...), Done: true})
}

// Done emits a terminal success update.
func Done(e Emitter, format string, args ...any) {
	if e == nil {
		return
	}
	e.Emit(Update{Level: "info", Description: fmt.Sprintf(format, args...), Done: true})
}

// Console writes updates to stdout, one line each.
type Console struct{}

func (Console) Emit(u Update) {
	marker := "↳"
	if u.Done {
		marker = "✓"
	}
	if u.Level == "error" {
		marker = "✗"
	}
	fmt.Printf("  %s %s\n", marker, u.Description)
}
