package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nikhilbhat/courtwatch/internal/faults"
	"github.com/nikhilbhat/courtwatch/internal/portal"
	"github.com/nikhilbhat/courtwatch/internal/search"
)

// SessionClient is the pipeline's view of one portal session.
// *portal.Session implements it; tests script it.
type SessionClient interface {
	OpenChallenge(ctx context.Context) (*portal.Challenge, error)
	Submit(ctx context.Context, ch *portal.Challenge, solved string, req search.Request) ([]byte, error)
	Fetch(ctx context.Context, req search.Request) ([]byte, error)
}

// Recognizer turns a challenge image into a candidate text with a
// confidence signal. *captcha.Recognizer implements it.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (text string, confidence float64, err error)
}

// solveAndSubmit drives the challenge/recognize/submit state machine:
// each attempt opens a fresh challenge (tokens are single-use), runs the
// recognizer, and submits together with the query. A portal captcha
// rejection is the expected outcome of a wrong OCR guess and loops with
// the attempt counter incremented; any other failure is infrastructure
// and surfaces immediately so the retry policy can classify it; the
// distinction keeps real outages from hiding behind captcha retries, and
// a single bad guess from aborting the run.
//
// Returns the accepted payload and the number of submissions made.
func solveAndSubmit(ctx context.Context, sess SessionClient, rec Recognizer, req search.Request, maxAttempts int, logger *slog.Logger) ([]byte, int, error) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ch, err := sess.OpenChallenge(ctx)
		if err != nil {
			return nil, attempt - 1, err
		}

		text, confidence, err := rec.Recognize(ctx, ch.Image)
		if err != nil {
			return nil, attempt - 1, err
		}

		payload, err := sess.Submit(ctx, ch, text, req)
		if err == nil {
			logger.Debug("captcha accepted", "attempt", attempt, "confidence", confidence)
			return payload, attempt, nil
		}
		if errors.Is(err, portal.ErrCaptchaRejected) {
			logger.Debug("captcha rejected, retrying with fresh challenge",
				"attempt", attempt, "confidence", confidence)
			continue
		}
		return nil, attempt, err
	}

	return nil, maxAttempts, &faults.Error{
		Kind:     faults.KindCaptchaExhausted,
		Msg:      "portal rejected every captcha guess",
		Attempts: maxAttempts,
	}
}
