package portal

import (
	"errors"
	"strings"

	"github.com/nikhilbhat/courtwatch/internal/faults"
)

// ErrCaptchaRejected reports that the portal validated the session but
// rejected the captcha solution. This is an expected outcome of an OCR
// guess, not an infrastructure failure: the solver loop catches it and
// tries a fresh challenge instead of feeding it to the retry policy.
var ErrCaptchaRejected = errors.New("portal rejected the captcha solution")

// ErrChallengeUsed reports a challenge token submitted twice. Challenges
// are single-use; reuse is a caller bug.
var ErrChallengeUsed = errors.New("challenge already submitted")

// classifyBody inspects the leading bytes of a portal response for the
// semantic rejection markers the portal embeds in otherwise-OK
// responses. Returns nil when the payload looks like a real result.
func classifyBody(body []byte) error {
	head := strings.ToUpper(string(body[:min(len(body), 64)]))
	switch {
	case strings.Contains(head, "INVALID CAPTCHA"):
		return ErrCaptchaRejected
	case strings.Contains(head, "RECORD NOT FOUND"),
		strings.Contains(head, "NO RECORD"),
		strings.Contains(head, "ERROR"):
		// The portal reports both "no such case" and input rejections as
		// an ERROR payload once the captcha passed.
		return faults.New(faults.KindNotFound, "portal reported no matching record")
	}
	return nil
}
