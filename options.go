package vcedit

// Default configuration values.
const (
	// DefaultMaxBatches is the undo depth when none is set. Zero keeps
	// every batch.
	DefaultMaxBatches = 0
)

type settings struct {
	store           IDStore
	selection       Selection
	observer        Observer
	maxBatches      int
	mergeText       bool
	strictSelection bool
}

func defaultSettings() settings {
	return settings{
		maxBatches: DefaultMaxBatches,
		mergeText:  true,
	}
}

// Option configures a History or an Editor during creation.
type Option func(*settings)

// WithIDStore sets the identity store. Editors default to a MapStore.
func WithIDStore(store IDStore) Option {
	return func(s *settings) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSelection sets the live cursor captured on flush and restored on
// undo and redo.
func WithSelection(sel Selection) Option {
	return func(s *settings) {
		s.selection = sel
	}
}

// WithObserver sets the diagnostic event hook.
func WithObserver(obs Observer) Option {
	return func(s *settings) {
		s.observer = obs
	}
}

// WithMaxBatches bounds the number of undoable batches. Zero or less
// keeps every batch.
func WithMaxBatches(max int) Option {
	return func(s *settings) {
		s.maxBatches = max
	}
}

// WithTextMerge turns compaction of text updates on flush on or off.
func WithTextMerge(enabled bool) Option {
	return func(s *settings) {
		s.mergeText = enabled
	}
}

// WithStrictSelection makes Flush fail with ErrNoSelection instead of
// recording NullRange when there is no cursor to capture.
func WithStrictSelection(strict bool) Option {
	return func(s *settings) {
		s.strictSelection = strict
	}
}
