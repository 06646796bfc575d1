package vcedit

import (
	"context"
	"log/slog"
)

type EventKind string

const (
	EventRecord      EventKind = "record"
	EventFlush       EventKind = "flush"
	EventUndo        EventKind = "undo"
	EventRedo        EventKind = "redo"
	EventFreeze      EventKind = "freeze"
	EventDiscard     EventKind = "discard"
	EventRelease     EventKind = "release"
	EventNoSelection EventKind = "no_selection"
)

// Event is a diagnostic notification from the history.
type Event struct {
	Kind   EventKind
	Ops    int // operations involved: recorded, flushed, undone, released ids
	Past   int
	Future int
	Err    error
}

// Observer receives diagnostic events. It must not call back into the
// history that emitted the event.
type Observer func(Event)

// LogObserver writes events to logger, errors at warn level and
// everything else at debug.
func LogObserver(logger *slog.Logger) Observer {
	return func(ev Event) {
		level := slog.LevelDebug
		attrs := []slog.Attr{
			slog.Int("ops", ev.Ops),
			slog.Int("past", ev.Past),
			slog.Int("future", ev.Future),
		}
		if ev.Err != nil {
			level = slog.LevelWarn
			attrs = append(attrs, slog.Any("error", ev.Err))
		}
		logger.LogAttrs(context.Background(), level, "vcedit "+string(ev.Kind), attrs...)
	}
}
