// Package mastery persists the per-card mastery ledger as a single JSON
// document. Every mutation is written through before the call returns, and
// writes go to a temp file that is renamed over the ledger so a crash never
// leaves a partial document behind.
package mastery

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"github.com/verte-zerg/tango/internal/logging"
	"github.com/verte-zerg/tango/internal/model"
)

// ErrNilLedger is returned by mutators handed a nil ledger.
var ErrNilLedger = errors.New("mastery: nil ledger")

// renameFile is swapped in tests to simulate a crash before the replace.
var renameFile = os.Rename

// SaveErrorPolicy decides what a failed save does.
type SaveErrorPolicy string

const (
	// SaveErrorFail returns a *PersistenceError to the caller.
	SaveErrorFail SaveErrorPolicy = "fail"
	// SaveErrorWarn logs the failure and reports success.
	SaveErrorWarn SaveErrorPolicy = "warn"
)

// ParseSaveErrorPolicy validates a policy name. Empty input means fail.
func ParseSaveErrorPolicy(raw string) (SaveErrorPolicy, error) {
	switch SaveErrorPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SaveErrorFail:
		return SaveErrorFail, nil
	case SaveErrorWarn:
		return SaveErrorWarn, nil
	default:
		return "", fmt.Errorf("unknown save error policy %q (use fail or warn)", raw)
	}
}

// PersistenceError reports a ledger that could not be made durable.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("mastery: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Source tells where a loaded ledger came from.
type Source int

const (
	// SourceFile means the document was read and parsed.
	SourceFile Source = iota
	// SourceMissing means no document exists yet.
	SourceMissing
	// SourceUnreadable means the document exists but could not be read.
	SourceUnreadable
	// SourceCorrupt means the document could not be parsed.
	SourceCorrupt
)

func (s Source) String() string {
	switch s {
	case SourceFile:
		return "file"
	case SourceMissing:
		return "missing"
	case SourceUnreadable:
		return "unreadable"
	case SourceCorrupt:
		return "corrupt"
	default:
		return "unknown"
	}
}

// LoadResult is the outcome of Load. Ledger is never nil; Err holds the
// cause when Source is SourceUnreadable or SourceCorrupt.
type LoadResult struct {
	Ledger model.Ledger
	Source Source
	Err    error
}

// Options configures a Store.
type Options struct {
	Logger      *slog.Logger
	OnSaveError SaveErrorPolicy
}

// Store owns the ledger document at a fixed path.
type Store struct {
	path   string
	lock   *flock.Flock
	mu     sync.Mutex
	logger *slog.Logger
	policy SaveErrorPolicy
}

// New returns a store for the ledger at path. Nothing is read until Load.
func New(path string, opts Options) *Store {
	policy := opts.OnSaveError
	if policy == "" {
		policy = SaveErrorFail
	}
	return &Store{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logging.NewComponentLogger(opts.Logger, "mastery"),
		policy: policy,
	}
}

// Path returns the canonical ledger path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the ledger. Load never fails: a missing, unreadable or
// malformed document yields an empty ledger and the Source says which.
func (s *Store) Load() LoadResult {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return LoadResult{Ledger: model.Ledger{}, Source: SourceMissing}
		}
		s.logger.Warn("failed to read ledger; starting empty",
			logging.String("path", s.path),
			logging.Error(err))
		return LoadResult{Ledger: model.Ledger{}, Source: SourceUnreadable, Err: err}
	}
	var ledger model.Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		s.logger.Warn("failed to parse ledger; starting empty",
			logging.String("path", s.path),
			logging.Error(err))
		return LoadResult{Ledger: model.Ledger{}, Source: SourceCorrupt, Err: err}
	}
	if ledger == nil {
		ledger = model.Ledger{}
	}
	s.logger.Debug("loaded ledger",
		logging.String("path", s.path),
		logging.Int("entry_count", len(ledger)))
	return LoadResult{Ledger: ledger, Source: SourceFile}
}

// Save replaces the persisted document with the full ledger.
func (s *Store) Save(ledger model.Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ledger)
}

// RecordShown counts one exposure of id.
func (s *Store) RecordShown(ledger model.Ledger, id string) error {
	return s.ApplyDelta(ledger, id, 1, 0)
}

// RecordCorrect counts one correct answer for id. Shown is left alone.
func (s *Store) RecordCorrect(ledger model.Ledger, id string) error {
	return s.ApplyDelta(ledger, id, 0, 1)
}

// ApplyDelta adds both deltas to the entry for id and persists once.
// Deltas are applied as given, negative values included. An empty id is
// untracked and ignored.
func (s *Store) ApplyDelta(ledger model.Ledger, id string, shownDelta, correctDelta int) error {
	if ledger == nil {
		return ErrNilLedger
	}
	if id == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	applyDelta(ledger, id, shownDelta, correctDelta)
	return s.persist(ledger)
}

// ReconcileResult counts the entries a Reconcile pass touched.
type ReconcileResult struct {
	Added   int
	Removed int
}

// Reconcile drops entries whose id is not in valid and seeds zeroed entries
// for valid ids that are missing.
func (s *Store) Reconcile(ledger model.Ledger, valid map[string]struct{}) (ReconcileResult, error) {
	if ledger == nil {
		return ReconcileResult{}, ErrNilLedger
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	res := reconcile(ledger, valid)
	s.logger.Debug("reconciled ledger",
		logging.Int("added", res.Added),
		logging.Int("removed", res.Removed))
	return res, s.persist(ledger)
}

// Reset zeroes every existing entry. Entries are kept.
func (s *Store) Reset(ledger model.Ledger) error {
	if ledger == nil {
		return ErrNilLedger
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range ledger {
		ledger[id] = model.MasteryRecord{}
	}
	return s.persist(ledger)
}

// Update runs one load-mutate-save transaction. It holds the store mutex and
// the cross-process file lock for the whole cycle, so concurrent callers in
// this or another process never lose each other's updates. fn returning an
// error aborts the save.
func (s *Store) Update(fn func(model.Ledger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	unlock, err := s.lockFile()
	if err != nil {
		return s.handleSaveError(err)
	}
	defer unlock()

	ledger := s.Load().Ledger
	if err := fn(ledger); err != nil {
		return err
	}
	return s.handleSaveError(s.write(ledger))
}

// Apply is ApplyDelta run as one Update transaction against the persisted
// document, for callers that hold no ledger of their own.
func (s *Store) Apply(id string, shownDelta, correctDelta int) error {
	if id == "" {
		return nil
	}
	return s.Update(func(ledger model.Ledger) error {
		applyDelta(ledger, id, shownDelta, correctDelta)
		return nil
	})
}

// ReconcileAll is Reconcile run as one Update transaction against the
// persisted document.
func (s *Store) ReconcileAll(valid map[string]struct{}) (ReconcileResult, error) {
	var res ReconcileResult
	err := s.Update(func(ledger model.Ledger) error {
		res = reconcile(ledger, valid)
		return nil
	})
	return res, err
}

// ResetAll zeroes every persisted entry in one Update transaction.
func (s *Store) ResetAll() error {
	return s.Update(func(ledger model.Ledger) error {
		for id := range ledger {
			ledger[id] = model.MasteryRecord{}
		}
		return nil
	})
}

// Snapshot returns a fresh copy of the persisted ledger. Readers never see
// a partial document because writers only ever rename complete files.
func (s *Store) Snapshot() model.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Load().Ledger
}

func (s *Store) persist(ledger model.Ledger) error {
	unlock, err := s.lockFile()
	if err != nil {
		return s.handleSaveError(err)
	}
	defer unlock()
	return s.handleSaveError(s.write(ledger))
}

func (s *Store) lockFile() (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, &PersistenceError{Op: "lock", Path: s.path, Err: err}
	}
	if err := s.lock.Lock(); err != nil {
		return nil, &PersistenceError{Op: "lock", Path: s.path, Err: err}
	}
	return func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("failed to release ledger lock", logging.Error(err))
		}
	}, nil
}

func (s *Store) handleSaveError(err error) error {
	if err == nil {
		return nil
	}
	if s.policy == SaveErrorWarn {
		s.logger.Warn("ledger not saved", logging.String("path", s.path), logging.Error(err))
		return nil
	}
	return err
}

func (s *Store) write(ledger model.Ledger) error {
	if ledger == nil {
		ledger = model.Ledger{}
	}
	data, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return &PersistenceError{Op: "encode", Path: s.path, Err: err}
	}
	dir := filepath.Dir(s.path)
	tmpFile, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return &PersistenceError{Op: "create temp", Path: s.path, Err: err}
	}
	tmpPath := tmpFile.Name()
	committed := false
	defer func() {
		if committed {
			return
		}
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if err := tmpFile.Chmod(0o644); err != nil {
		return &PersistenceError{Op: "chmod temp", Path: s.path, Err: err}
	}
	if _, err := tmpFile.Write(data); err != nil {
		return &PersistenceError{Op: "write temp", Path: s.path, Err: err}
	}
	if err := tmpFile.Sync(); err != nil {
		return &PersistenceError{Op: "sync temp", Path: s.path, Err: err}
	}
	if err := tmpFile.Close(); err != nil {
		return &PersistenceError{Op: "close temp", Path: s.path, Err: err}
	}
	if err := renameFile(tmpPath, s.path); err != nil {
		return &PersistenceError{Op: "replace", Path: s.path, Err: err}
	}
	committed = true
	return nil
}

func applyDelta(ledger model.Ledger, id string, shownDelta, correctDelta int) {
	rec := ledger[id]
	rec.Shown += shownDelta
	rec.Correct += correctDelta
	ledger[id] = rec
}

func reconcile(ledger model.Ledger, valid map[string]struct{}) ReconcileResult {
	var res ReconcileResult
	for id := range valid {
		if _, ok := ledger[id]; !ok {
			ledger[id] = model.MasteryRecord{}
			res.Added++
		}
	}
	for id := range ledger {
		if _, ok := valid[id]; !ok {
			delete(ledger, id)
			res.Removed++
		}
	}
	return res
}
