package kumitate

import "github.com/rs/zerolog"

// Option configures a World at construction time.
type Option func(*World)

// WithLogger sets the logger used for structural events such as archetype
// creation and builder acquisition. The default logger discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(w *World) {
		w.logger = logger
	}
}
