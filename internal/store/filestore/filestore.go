// Package filestore persists footprint data in a single JSON document guarded
// by a lockfile. Every write replaces the whole document atomically.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/forecast"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/logging"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/recommend"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/store"
	"github.com/AdamSabry1233/Environmental-Footprint-Tracker/internal/trips"
)

// SchemaVersion is the document version written by this package.
const SchemaVersion = 1

type document struct {
	Version         int                                   `json:"version"`
	Trips           []trips.Record                        `json:"trips"`
	Routes          []forecast.Route                      `json:"routes"`
	Recommendations map[string][]recommend.Recommendation `json:"recommendations"`
	Feedback        []recommend.Signal                    `json:"feedback"`
	Goals           map[string]store.Goal                 `json:"goals"`
}

func newDocument() *document {
	return &document{
		Version:         SchemaVersion,
		Recommendations: make(map[string][]recommend.Recommendation),
		Goals:           make(map[string]store.Goal),
	}
}

// Store is a JSON file backed store. It is safe for concurrent use within a
// process and coordinates across processes with a lockfile.
type Store struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns a Store backed by path. The file is created on first write.
func New(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("file store path is required")
	}
	s := &Store{path: path, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Close is a no-op; the document is written on every update.
func (s *Store) Close() error {
	return nil
}

func (s *Store) view(ctx context.Context, fn func(*document)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := acquireFileLock(s.path)
	if err != nil {
		return fmt.Errorf("acquiring file lock: %w", err)
	}
	defer unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	fn(doc)
	return nil
}

func (s *Store) update(ctx context.Context, op string, fn func(*document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := acquireFileLock(s.path)
	if err != nil {
		return fmt.Errorf("acquiring file lock: %w", err)
	}
	defer unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if err = fn(doc); err != nil {
		return err
	}
	if err = s.save(doc); err != nil {
		return err
	}

	logging.FromContext(ctx).Debug().Ctx(ctx).
		Str("component", "filestore").
		Str("operation", op).
		Str("path", s.path).
		Msg("document written")
	return nil
}

func (s *Store) load() (*document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return newDocument(), nil
		}
		return nil, fmt.Errorf("reading store file: %w", err)
	}

	doc := newDocument()
	if err = json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrStoreCorrupted, err)
	}
	if doc.Version != SchemaVersion {
		return nil, fmt.Errorf("%w: unsupported version %d (expected %d)",
			store.ErrStoreCorrupted, doc.Version, SchemaVersion)
	}
	if doc.Recommendations == nil {
		doc.Recommendations = make(map[string][]recommend.Recommendation)
	}
	if doc.Goals == nil {
		doc.Goals = make(map[string]store.Goal)
	}
	return doc, nil
}

func (s *Store) save(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling store document: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err = os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing store temp file: %w", err)
	}
	if err = os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming store temp file: %w", err)
	}
	return nil
}

func newID() string {
	return ulid.Make().String()
}

// TripHistory returns a user's trips in insertion order.
func (s *Store) TripHistory(ctx context.Context, userID string) ([]trips.Record, error) {
	out := []trips.Record{}
	err := s.view(ctx, func(doc *document) {
		for _, t := range doc.Trips {
			if t.UserID == userID {
				out = append(out, t)
			}
		}
	})
	return out, err
}

// AllTripHistory returns every user's trips.
func (s *Store) AllTripHistory(ctx context.Context) ([]trips.Record, error) {
	var out []trips.Record
	err := s.view(ctx, func(doc *document) {
		out = slices.Clone(doc.Trips)
	})
	if out == nil {
		out = []trips.Record{}
	}
	return out, err
}

// AppendTrip stores r, assigning an ID and timestamp when missing.
func (s *Store) AppendTrip(ctx context.Context, r trips.Record) (trips.Record, error) {
	if r.ID == "" {
		r.ID = newID()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = s.now().UTC()
	}
	err := s.update(ctx, "append_trip", func(doc *document) error {
		doc.Trips = append(doc.Trips, r)
		return nil
	})
	return r, err
}

// RouteHistory returns a user's routes in insertion order.
func (s *Store) RouteHistory(ctx context.Context, userID string) ([]forecast.Route, error) {
	out := []forecast.Route{}
	err := s.view(ctx, func(doc *document) {
		for _, r := range doc.Routes {
			if r.UserID == userID {
				out = append(out, r)
			}
		}
	})
	return out, err
}

// AppendRoute stores r, assigning an ID and timestamp when missing.
func (s *Store) AppendRoute(ctx context.Context, r forecast.Route) (forecast.Route, error) {
	if r.ID == "" {
		r.ID = newID()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = s.now().UTC()
	}
	err := s.update(ctx, "append_route", func(doc *document) error {
		doc.Routes = append(doc.Routes, r)
		return nil
	})
	return r, err
}

// ReplaceRecommendations swaps a user's stored recommendations for cands in a
// single document write.
func (s *Store) ReplaceRecommendations(
	ctx context.Context,
	userID string,
	cands []recommend.Candidate,
) ([]recommend.Recommendation, error) {
	now := s.now().UTC()
	recs := make([]recommend.Recommendation, len(cands))
	for i, c := range cands {
		recs[i] = recommend.Recommendation{ID: newID(), UserID: userID, CreatedAt: now, Candidate: c}
	}
	err := s.update(ctx, "replace_recommendations", func(doc *document) error {
		doc.Recommendations[userID] = recs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(recs), nil
}

// Recommendations returns a user's current recommendations.
func (s *Store) Recommendations(ctx context.Context, userID string) ([]recommend.Recommendation, error) {
	var out []recommend.Recommendation
	err := s.view(ctx, func(doc *document) {
		out = slices.Clone(doc.Recommendations[userID])
	})
	if out == nil {
		out = []recommend.Recommendation{}
	}
	return out, err
}

// RecordFeedback stores sig. When sig references a recommendation its
// strategy key and description are taken from that recommendation; an unknown
// reference yields store.ErrNotFound.
func (s *Store) RecordFeedback(ctx context.Context, sig recommend.Signal) (recommend.Signal, error) {
	if sig.ID == "" {
		sig.ID = newID()
	}
	if sig.CreatedAt.IsZero() {
		sig.CreatedAt = s.now().UTC()
	}
	err := s.update(ctx, "record_feedback", func(doc *document) error {
		if sig.RecommendationID != "" {
			idx := slices.IndexFunc(doc.Recommendations[sig.UserID], func(r recommend.Recommendation) bool {
				return r.ID == sig.RecommendationID
			})
			if idx < 0 {
				return fmt.Errorf("recommendation %s for user %s: %w", sig.RecommendationID, sig.UserID, store.ErrNotFound)
			}
			rec := doc.Recommendations[sig.UserID][idx]
			sig.StrategyKey = rec.StrategyKey
			sig.Description = rec.Description
		}
		doc.Feedback = append(doc.Feedback, sig)
		return nil
	})
	return sig, err
}

// Feedback returns the signals of the given users, or of everyone when none
// are given.
func (s *Store) Feedback(ctx context.Context, userIDs ...string) ([]recommend.Signal, error) {
	out := []recommend.Signal{}
	err := s.view(ctx, func(doc *document) {
		for _, sig := range doc.Feedback {
			if len(userIDs) == 0 || slices.Contains(userIDs, sig.UserID) {
				out = append(out, sig)
			}
		}
	})
	return out, err
}

// SetGoal stores or replaces a user's goal.
func (s *Store) SetGoal(ctx context.Context, g store.Goal) (store.Goal, error) {
	if g.SetAt.IsZero() {
		g.SetAt = s.now().UTC()
	}
	err := s.update(ctx, "set_goal", func(doc *document) error {
		doc.Goals[g.UserID] = g
		return nil
	})
	return g, err
}

// Goal returns a user's goal or store.ErrNotFound.
func (s *Store) Goal(ctx context.Context, userID string) (store.Goal, error) {
	var (
		g     store.Goal
		found bool
	)
	err := s.view(ctx, func(doc *document) {
		g, found = doc.Goals[userID]
	})
	if err != nil {
		return store.Goal{}, err
	}
	if !found {
		return store.Goal{}, fmt.Errorf("goal for user %s: %w", userID, store.ErrNotFound)
	}
	return g, nil
}
