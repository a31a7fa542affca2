package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/contrib/rews"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/pkg/logger"
	"github.com/surrealdb/surrealdb.go/surrealcbor"

	"github.com/nikhilbhat/courtwatch/internal/models"
)

// SurrealConfig holds SurrealDB connection configuration.
type SurrealConfig struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
}

// surrealSchema defines the case and fingerprint tables. The record
// payload stays flexible (the portal's layout versions add fields); the
// tracking metadata is schemaful.
const surrealSchema = `
    DEFINE TABLE IF NOT EXISTS case SCHEMALESS;
    DEFINE FIELD IF NOT EXISTS cnr ON case TYPE string;
    DEFINE FIELD IF NOT EXISTS fingerprint ON case TYPE string;
    DEFINE FIELD IF NOT EXISTS state_code ON case TYPE string;
    DEFINE FIELD IF NOT EXISTS court_code ON case TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS sync_calendar ON case TYPE bool DEFAULT false;
    DEFINE FIELD IF NOT EXISTS stored_at ON case TYPE datetime DEFAULT time::now();
    DEFINE INDEX IF NOT EXISTS case_cnr ON case FIELDS cnr UNIQUE;
`

// storedCase is the persisted shape of one tracked case.
type storedCase struct {
	CNR          string             `json:"cnr"`
	Fingerprint  string             `json:"fingerprint"`
	StateCode    string             `json:"state_code"`
	CourtCode    string             `json:"court_code,omitempty"`
	SyncCalendar bool               `json:"sync_calendar"`
	Record       *models.CaseRecord `json:"record,omitempty"`
}

// Surreal is a SurrealDB-backed Store with auto-reconnect.
type Surreal struct {
	conn *rews.Connection[*gorillaws.Connection]
	db   *surrealdb.DB
}

// NewSurreal connects, authenticates and initializes the schema.
func NewSurreal(ctx context.Context, cfg SurrealConfig, log *slog.Logger) (*Surreal, error) {
	if log == nil {
		log = slog.Default()
	}
	sdkLogger := logger.New(log.Handler())
	codec := surrealcbor.New()

	// gorillaws wants the base URL without the /rpc suffix.
	baseURL := strings.TrimSuffix(cfg.URL, "/rpc")

	conn := rews.New(
		func(ctx context.Context) (*gorillaws.Connection, error) {
			return gorillaws.New(&connection.Config{
				BaseURL:     baseURL,
				Marshaler:   codec,
				Unmarshaler: codec,
				Logger:      sdkLogger,
			}), nil
		},
		5*time.Second,
		codec,
		sdkLogger,
	)
	retryer := rews.NewExponentialBackoffRetryer()
	retryer.InitialDelay = time.Second
	retryer.MaxDelay = 30 * time.Second
	retryer.Multiplier = 2.0
	retryer.MaxRetries = 10
	conn.Retryer = retryer

	if err := conn.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	db, err := surrealdb.FromConnection(ctx, conn)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("from connection: %w", err)
	}
	if _, err := db.SignIn(ctx, surrealdb.Auth{
		Username: cfg.Username,
		Password: cfg.Password,
	}); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("signin: %w", err)
	}
	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("use: %w", err)
	}
	if _, err := surrealdb.Query[any](ctx, db, surrealSchema, nil); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Surreal{conn: conn, db: db}, nil
}

// Close closes the connection.
func (s *Surreal) Close(ctx context.Context) error {
	return s.conn.Close(ctx)
}

func (s *Surreal) Upsert(ctx context.Context, rec *models.CaseRecord, fp models.Fingerprint) error {
	doc := storedCase{
		CNR:         rec.CNR,
		Fingerprint: fp.String(),
		StateCode:   rec.Court.StateCode,
		CourtCode:   rec.Court.CourtCode,
		Record:      rec,
	}
	_, err := surrealdb.Query[any](ctx, s.db,
		`UPSERT type::thing("case", $cnr) MERGE $doc SET stored_at = time::now()`,
		map[string]any{"cnr": rec.CNR, "doc": doc})
	if err != nil {
		return fmt.Errorf("upsert case %s: %w", rec.CNR, err)
	}
	return nil
}

func (s *Surreal) GetFingerprint(ctx context.Context, cnr string) (*models.Fingerprint, error) {
	doc, err := s.get(ctx, cnr)
	if err != nil || doc == nil {
		return nil, err
	}
	fp, err := models.ParseFingerprint(doc.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("stored fingerprint for %s: %w", cnr, err)
	}
	return &fp, nil
}

func (s *Surreal) GetRecord(ctx context.Context, cnr string) (*models.CaseRecord, error) {
	doc, err := s.get(ctx, cnr)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.Record == nil {
		return nil, ErrNotTracked
	}
	return doc.Record, nil
}

func (s *Surreal) ListTracked(ctx context.Context) ([]TrackedCase, error) {
	results, err := surrealdb.Query[[]storedCase](ctx, s.db,
		`SELECT cnr, fingerprint, state_code, court_code, sync_calendar FROM case ORDER BY cnr`, nil)
	if err != nil {
		return nil, fmt.Errorf("list tracked: %w", err)
	}

	var tracked []TrackedCase
	if results != nil && len(*results) > 0 {
		for _, doc := range (*results)[0].Result {
			court, err := models.LookupCourt(doc.StateCode, doc.CourtCode)
			if err != nil {
				// A stored selector no longer in the bench table cannot be
				// refreshed; skip rather than failing the whole listing.
				continue
			}
			tracked = append(tracked, TrackedCase{
				CNR:          doc.CNR,
				Court:        court,
				SyncCalendar: doc.SyncCalendar,
			})
		}
	}
	return tracked, nil
}

func (s *Surreal) get(ctx context.Context, cnr string) (*storedCase, error) {
	results, err := surrealdb.Query[[]storedCase](ctx, s.db,
		`SELECT * FROM type::thing("case", $cnr)`,
		map[string]any{"cnr": cnr})
	if err != nil {
		return nil, fmt.Errorf("get case %s: %w", cnr, err)
	}
	if results == nil || len(*results) == 0 || len((*results)[0].Result) == 0 {
		return nil, nil
	}
	doc := (*results)[0].Result[0]
	return &doc, nil
}
