// Package store defines the contract the pipeline holds toward the
// persistent record store, plus the bundled implementations. The store
// owns the case records it receives and caches each record's fingerprint
// for the next refresh; at-most-one concurrent refresh per case is the
// caller's responsibility, not enforced here.
package store

import (
	"context"
	"errors"

	"github.com/nikhilbhat/courtwatch/internal/models"
)

// ErrNotTracked indicates the case identifier is not in the store.
var ErrNotTracked = errors.New("case not tracked")

// TrackedCase is one case enrolled for refresh.
type TrackedCase struct {
	CNR   string       `json:"cnr"`
	Court models.Court `json:"court"`
	// SyncCalendar marks cases whose hearing changes feed the calendar
	// collaborator downstream.
	SyncCalendar bool `json:"sync_calendar,omitempty"`
}

// Store is the pipeline's view of the persistent record store.
type Store interface {
	// Upsert stores a record with its fingerprint, replacing any
	// previous version, and enrolls the case if it was not tracked.
	Upsert(ctx context.Context, rec *models.CaseRecord, fp models.Fingerprint) error

	// GetFingerprint returns the cached fingerprint of the last stored
	// version, or nil when the case has never been stored.
	GetFingerprint(ctx context.Context, cnr string) (*models.Fingerprint, error)

	// GetRecord returns the last stored version of a case.
	// Fails with ErrNotTracked when absent.
	GetRecord(ctx context.Context, cnr string) (*models.CaseRecord, error)

	// ListTracked enumerates the cases the bulk-refresh driver iterates.
	ListTracked(ctx context.Context) ([]TrackedCase, error)
}
