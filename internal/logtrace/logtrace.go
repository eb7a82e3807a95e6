// Package logtrace wires structured logging via zerolog and exposes the
// small set of context helpers the rest of the engine uses to carry a
// session id through a bulk-change session.
package logtrace

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger configures the global zerolog logger to write timestamped
// records to stderr.
func InitLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

type sessionIDKey struct{}

// WithSessionID attaches a bulk-change session id to the context for
// logging purposes.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// SessionIDFromContext extracts the session id attached by WithSessionID,
// or "" if none is set.
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, ok := ctx.Value(sessionIDKey{}).(string)
	if !ok {
		return ""
	}
	return v
}
