// Package captcha turns portal challenge images into best-guess text.
// Recognition is a soft signal: the portal's own validation is the only
// acceptance test, so the solver loop treats a wrong guess as expected
// rather than as a failure of this package.
package captcha

import (
	"context"
	"log/slog"
	"strings"
)

// Engine is a swappable OCR backend. Implementations receive the
// preprocessed image and return a candidate text with a confidence in
// [0, 1] derived from engine internals where available.
type Engine interface {
	Recognize(ctx context.Context, image []byte) (text string, confidence float64, err error)
}

// Recognizer applies deterministic preprocessing and delegates to an
// Engine. It is stateless and safe for concurrent use.
type Recognizer struct {
	engine Engine
	logger *slog.Logger
}

// New creates a recognizer around the given engine.
func New(engine Engine, logger *slog.Logger) *Recognizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recognizer{engine: engine, logger: logger}
}

// Recognize preprocesses the challenge image and runs the engine.
// Undecodable image bytes fail with an invalid_image fault; an empty
// guess from the engine is returned as-is with its (low) confidence, it
// is the portal's job to reject it.
func (r *Recognizer) Recognize(ctx context.Context, image []byte) (string, float64, error) {
	processed, err := Preprocess(image)
	if err != nil {
		return "", 0, err
	}

	text, confidence, err := r.engine.Recognize(ctx, processed)
	if err != nil {
		return "", 0, err
	}

	text = normalizeGuess(text)
	r.logger.Debug("captcha recognized",
		"text_len", len(text), "confidence", confidence)
	return text, confidence, nil
}

// normalizeGuess strips whitespace and lowercases: the portal's captcha
// alphabet is lowercase alphanumeric.
func normalizeGuess(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
