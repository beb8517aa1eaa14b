// Package statestore persists test data records under the original plus
// changelog delta model. The master file ("<name>.json") is treated as
// read-mostly input; all writes go to the "-current" delta sibling.
package statestore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/stateline/pkg/domain"
)

// DefaultSessionFields are the field names that must never survive a save
// cycle. They are stripped recursively from the snapshot and every delta.
var DefaultSessionFields = []string{"logged_in", "login", "session_token"}

// Store implements ports.DataStore on the local filesystem.
type Store struct {
	sessionFields map[string]struct{}
	logger        *slog.Logger
}

// Option configures the store.
type Option func(*Store)

// WithSessionFields overrides the session-only field set.
func WithSessionFields(fields ...string) Option {
	return func(s *Store) {
		s.sessionFields = make(map[string]struct{}, len(fields))
		for _, f := range fields {
			s.sessionFields[f] = struct{}{}
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a file-backed delta store.
func New(opts ...Option) *Store {
	s := &Store{
		sessionFields: make(map[string]struct{}, len(DefaultSessionFields)),
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, f := range DefaultSessionFields {
		s.sessionFields[f] = struct{}{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DeltaPath returns the "-current" sibling for a master data path.
func DeltaPath(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	if strings.HasSuffix(base, "-current") {
		return path
	}
	return base + "-current" + ext
}

// Load reads the record, preferring the delta sibling over the master. A
// master file holding a plain object (no changelog envelope) is wrapped as
// the original snapshot. Date-like strings are normalized recursively.
func (s *Store) Load(ctx context.Context, path string) (*domain.Record, error) {
	raw, src, err := s.readPreferred(path)
	if err != nil {
		return nil, err
	}

	rec, err := decodeRecord(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", src, err)
	}

	rec.Original = NormalizeDates(rec.Original)
	for i := range rec.ChangeLog {
		rec.ChangeLog[i].Delta = NormalizeDates(rec.ChangeLog[i].Delta)
	}

	s.logger.Debug("test data loaded", "path", src, "changelog", len(rec.ChangeLog))
	return rec, nil
}

// Save strips session-only fields from the snapshot and every delta
// (dropping deltas that become empty) and writes the record atomically to
// the delta sibling. The master file is never written here.
func (s *Store) Save(ctx context.Context, path string, rec *domain.Record) error {
	clean := s.scrub(rec)
	return s.writeAtomic(DeltaPath(path), clean)
}

// SaveMaster writes the record to the master path itself. Normal operation
// never needs this; the call is logged loudly so it shows up in triage.
func (s *Store) SaveMaster(ctx context.Context, path string, rec *domain.Record) error {
	s.logger.Warn("WRITING MASTER TEST DATA FILE directly; the delta sibling is the intended write target",
		"path", path)
	clean := s.scrub(rec)
	return s.writeAtomic(path, clean)
}

func (s *Store) scrub(rec *domain.Record) *domain.Record {
	out := &domain.Record{
		Original: StripFields(rec.Original, s.sessionFields),
	}
	for _, entry := range rec.ChangeLog {
		delta := StripFields(entry.Delta, s.sessionFields)
		if len(delta) == 0 {
			continue
		}
		entry.Delta = delta
		out.ChangeLog = append(out.ChangeLog, entry)
	}
	return out
}

func (s *Store) writeAtomic(path string, rec *domain.Record) error {
	data, err := json.MarshalIndent(envelope{Original: rec.Original, ChangeLog: rec.ChangeLog}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".statedata-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}

	s.logger.Debug("test data saved", "path", path, "changelog", len(rec.ChangeLog))
	return nil
}

func (s *Store) readPreferred(path string) ([]byte, string, error) {
	delta := DeltaPath(path)
	if raw, err := os.ReadFile(delta); err == nil {
		return raw, delta, nil
	} else if !os.IsNotExist(err) {
		return nil, "", fmt.Errorf("read %s: %w", delta, err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("%s: %w", path, domain.ErrDataNotFound)
		}
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return raw, path, nil
}

// envelope is the on-disk JSON shape.
type envelope struct {
	Original  map[string]any       `json:"_original"`
	ChangeLog []domain.ChangeEntry `json:"_changeLog"`
}

func decodeRecord(raw []byte) (*domain.Record, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	if env.Original != nil || env.ChangeLog != nil {
		return &domain.Record{Original: env.Original, ChangeLog: env.ChangeLog}, nil
	}

	// Plain snapshot without the delta envelope: treat it as the original.
	var snapshot map[string]any
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, err
	}
	return &domain.Record{Original: snapshot}, nil
}
