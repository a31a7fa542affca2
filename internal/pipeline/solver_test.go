package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/nikhilbhat/courtwatch/internal/faults"
	"github.com/nikhilbhat/courtwatch/internal/portal"
	"github.com/nikhilbhat/courtwatch/internal/search"
)

// scriptedSession rejects the first `rejects` submissions and accepts
// the next one, handing out a fresh token per challenge.
type scriptedSession struct {
	rejects int

	challenges int
	submits    int
	tokensSeen []string
	fetches    int

	submitPayload []byte
	fetchPayload  []byte

	openErr   error
	submitErr error
}

func (s *scriptedSession) OpenChallenge(context.Context) (*portal.Challenge, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	s.challenges++
	return &portal.Challenge{
		Image: []byte("png bytes"),
		Token: fmt.Sprintf("token-%d", s.challenges),
	}, nil
}

func (s *scriptedSession) Submit(_ context.Context, ch *portal.Challenge, _ string, _ search.Request) ([]byte, error) {
	s.submits++
	s.tokensSeen = append(s.tokensSeen, ch.Token)
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	if s.submits <= s.rejects {
		return nil, portal.ErrCaptchaRejected
	}
	return s.submitPayload, nil
}

func (s *scriptedSession) Fetch(context.Context, search.Request) ([]byte, error) {
	s.fetches++
	return s.fetchPayload, nil
}

type fixedRecognizer struct {
	text string
	err  error
}

func (r fixedRecognizer) Recognize(context.Context, []byte) (string, float64, error) {
	return r.text, 0.8, r.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestSolveAndSubmitRetriesRejections(t *testing.T) {
	sess := &scriptedSession{rejects: 2, submitPayload: []byte("payload")}

	payload, attempts, err := solveAndSubmit(context.Background(), sess,
		fixedRecognizer{text: "abc12"}, search.Request{}, 4, discardLogger())
	if err != nil {
		t.Fatalf("solveAndSubmit() error = %v", err)
	}
	if string(payload) != "payload" {
		t.Errorf("payload = %q", payload)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}

	// Every submission must ride a fresh challenge.
	if len(sess.tokensSeen) != 3 {
		t.Fatalf("tokens seen = %d, want 3", len(sess.tokensSeen))
	}
	seen := map[string]bool{}
	for _, tok := range sess.tokensSeen {
		if seen[tok] {
			t.Errorf("token %q reused across attempts", tok)
		}
		seen[tok] = true
	}
}

func TestSolveAndSubmitExhaustsAttempts(t *testing.T) {
	sess := &scriptedSession{rejects: 100}

	_, attempts, err := solveAndSubmit(context.Background(), sess,
		fixedRecognizer{text: "abc12"}, search.Request{}, 4, discardLogger())
	if kind := faults.KindOf(err); kind != faults.KindCaptchaExhausted {
		t.Fatalf("fault kind = %v, want captcha_exhausted", kind)
	}
	if attempts != 4 {
		t.Errorf("attempts = %d, want the full budget of 4", attempts)
	}
	if got := faults.AttemptsOf(err); got != 4 {
		t.Errorf("AttemptsOf = %d, want 4", got)
	}
	if sess.submits != 4 {
		t.Errorf("submissions = %d, want 4", sess.submits)
	}
}

func TestSolveAndSubmitSurfacesRecognizerFailure(t *testing.T) {
	sess := &scriptedSession{}
	recErr := faults.New(faults.KindInvalidImage, "not a png")

	_, attempts, err := solveAndSubmit(context.Background(), sess,
		fixedRecognizer{err: recErr}, search.Request{}, 4, discardLogger())
	if !errors.Is(err, recErr) {
		t.Fatalf("error = %v, want the recognizer fault", err)
	}
	if attempts != 0 {
		t.Errorf("attempts = %d, want 0 (nothing was submitted)", attempts)
	}
	if sess.submits != 0 {
		t.Errorf("submissions = %d, want 0", sess.submits)
	}
}

func TestSolveAndSubmitSurfacesInfrastructureFailure(t *testing.T) {
	infraErr := faults.New(faults.KindTransient, "502 from portal")
	sess := &scriptedSession{submitErr: infraErr}

	_, attempts, err := solveAndSubmit(context.Background(), sess,
		fixedRecognizer{text: "abc12"}, search.Request{}, 4, discardLogger())
	if !errors.Is(err, infraErr) {
		t.Fatalf("error = %v, want the transport fault", err)
	}
	// A non-rejection failure never burns further captcha attempts.
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestSolveAndSubmitSurfacesChallengeFailure(t *testing.T) {
	openErr := faults.New(faults.KindTransient, "image endpoint down")
	sess := &scriptedSession{openErr: openErr}

	_, attempts, err := solveAndSubmit(context.Background(), sess,
		fixedRecognizer{text: "abc12"}, search.Request{}, 4, discardLogger())
	if !errors.Is(err, openErr) {
		t.Fatalf("error = %v, want the challenge fault", err)
	}
	if attempts != 0 {
		t.Errorf("attempts = %d, want 0", attempts)
	}
}
