package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/nikhilbhat/courtwatch/internal/faults"
)

// Fingerprint is a deterministic digest over the semantic fields of a
// case record. Two records with identical case content yield identical
// fingerprints regardless of incidental source formatting.
type Fingerprint [sha256.Size]byte

func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// ParseFingerprint decodes the hex rendering produced by String.
func ParseFingerprint(s string) (Fingerprint, error) {
	var f Fingerprint
	b, err := hex.DecodeString(s)
	if err != nil {
		return f, fmt.Errorf("decode fingerprint: %w", err)
	}
	if len(b) != len(f) {
		return f, fmt.Errorf("fingerprint length %d, want %d", len(b), len(f))
	}
	copy(f[:], b)
	return f, nil
}

// OutcomeKind states what a refresh run concluded.
type OutcomeKind string

const (
	OutcomeCreated   OutcomeKind = "created"
	OutcomeUnchanged OutcomeKind = "unchanged"
	OutcomeUpdated   OutcomeKind = "updated"
	OutcomeFailed    OutcomeKind = "failed"
)

// RefreshOutcome is the terminal result of one pipeline run.
//
//   - Created: no previous fingerprint existed; Record and New are set.
//   - Unchanged: Old holds the matching previous fingerprint.
//   - Updated: Record, Old and New are all set for audit.
//   - Failed: ErrKind and Detail describe the terminal error.
type RefreshOutcome struct {
	Kind   OutcomeKind  `json:"kind"`
	CNR    string       `json:"cnr,omitempty"`
	Record *CaseRecord  `json:"record,omitempty"`
	Old    *Fingerprint `json:"old_fingerprint,omitempty"`
	New    *Fingerprint `json:"new_fingerprint,omitempty"`

	// CaptchaAttempts counts challenge submissions made during the run.
	CaptchaAttempts int `json:"captcha_attempts,omitempty"`

	ErrKind faults.Kind `json:"error_kind,omitempty"`
	Detail  string      `json:"detail,omitempty"`
}

// Failed reports whether the run ended in a terminal error.
func (o RefreshOutcome) Failed() bool {
	return o.Kind == OutcomeFailed
}

// FailedOutcome builds a Failed outcome from a classified error.
func FailedOutcome(cnr string, err error) RefreshOutcome {
	return RefreshOutcome{
		Kind:    OutcomeFailed,
		CNR:     cnr,
		ErrKind: faults.KindOf(err),
		Detail:  err.Error(),
	}
}
