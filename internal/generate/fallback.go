package generate

import (
	"context"
	"log/slog"
	"time"
)

// WithFallback wraps a Generator so a slow or failing backend degrades to
// the persona's canned lines instead of stalling the turn. Generate never
// returns an error.
type WithFallback struct {
	inner   Generator
	timeout time.Duration
	logger  *slog.Logger
}

func NewWithFallback(inner Generator, timeout time.Duration, logger *slog.Logger) *WithFallback {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WithFallback{inner: inner, timeout: timeout, logger: logger}
}

// Generate implements Generator.
func (w *WithFallback) Generate(ctx context.Context, req Request) (string, error) {
	if w.inner == nil {
		return FallbackReply(req), nil
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	reply, err := w.inner.Generate(ctx, req)
	if err != nil {
		w.logger.Warn("generation failed, using fallback reply",
			"persona", req.Persona,
			"error", err)
		return FallbackReply(req), nil
	}
	return reply, nil
}
