package store

import (
	"dailydigest/internal/core"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

const (
	// DefaultPath is the history file relative to the working directory.
	DefaultPath = "digests-data.json"
	// DefaultRetention is how many digests are kept.
	DefaultRetention = 30
)

// Options configures a Store.
type Options struct {
	Path      string
	Retention int
	// Location decides which calendar day a digest belongs to. Nil means time.Local.
	Location *time.Location
}

// Store is the JSON-file digest history with a sibling backup copy.
// It is not safe for concurrent writers; one run owns it at a time.
type Store struct {
	fs        afero.Fs
	path      string
	retention int
	loc       *time.Location
	log       *slog.Logger
}

// New creates a store on fs. Unset options fall back to the defaults.
func New(fs afero.Fs, opts Options, log *slog.Logger) *Store {
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		fs:        fs,
		path:      opts.Path,
		retention: opts.Retention,
		loc:       opts.Location,
		log:       log,
	}
}

// NewOnDisk creates a store backed by the real filesystem.
func NewOnDisk(opts Options, log *slog.Logger) *Store {
	return New(afero.NewOsFs(), opts, log)
}

// Path returns the history file path.
func (s *Store) Path() string {
	return s.path
}

// BackupPath returns the sibling backup file path.
func (s *Store) BackupPath() string {
	return s.path + ".backup"
}

// List returns the stored digests as they are on disk. It never fails.
func (s *Store) List() []core.Digest {
	return s.load()
}

// Upsert replaces the digest for the same calendar day or appends a new one,
// keeps the newest Retention entries and saves. It returns the saved list.
func (s *Store) Upsert(digest core.Digest) ([]core.Digest, error) {
	digests := s.load()

	key := digest.Slug(s.loc)
	replaced := false
	for i := range digests {
		if digests[i].Slug(s.loc) == key {
			digests[i] = digest
			replaced = true
			break
		}
	}
	if replaced {
		s.log.Info("Updated existing digest", "date", digest.Date, "key", key)
	} else {
		digests = append(digests, digest)
		s.log.Info("Added new digest", "date", digest.Date, "key", key)
	}

	digests = core.SortDigestsNewestFirst(digests)
	if len(digests) > s.retention {
		s.log.Debug("Dropping digests beyond retention", "dropped", len(digests)-s.retention, "retention", s.retention)
		digests = digests[:s.retention]
	}

	if err := s.save(digests); err != nil {
		return nil, err
	}
	return digests, nil
}

// load reads the history file, falling back to the backup and then to an empty list.
func (s *Store) load() []core.Digest {
	exists, err := afero.Exists(s.fs, s.path)
	if err != nil || !exists {
		s.log.Info("No existing digest data file found, starting with empty list", "path", s.path)
		return []core.Digest{}
	}

	digests, err := s.readFile(s.path)
	if err == nil {
		s.log.Debug("Loaded digests", "count", len(digests), "path", s.path)
		return digests
	}
	s.log.Warn("Error loading digests, trying backup", "path", s.path, "error", err.Error())

	backup := s.BackupPath()
	if ok, _ := afero.Exists(s.fs, backup); ok {
		digests, err := s.readFile(backup)
		if err == nil {
			s.log.Info("Loaded digests from backup", "count", len(digests))
			return digests
		}
		s.log.Warn("Failed to load from backup", "path", backup, "error", err.Error())
	}

	s.log.Warn("Starting with empty digest list due to errors")
	return []core.Digest{}
}

// storedDigest detects missing required fields, which plain unmarshaling would zero-fill.
type storedDigest struct {
	Date       *string          `json:"date"`
	IntroText  string           `json:"introText"`
	Categories *[]core.Category `json:"categories"`
	Timestamp  *int64           `json:"timestamp"`
}

func (s *Store) readFile(path string) ([]core.Digest, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw []storedDigest
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("digest data is not a valid array: %w", err)
	}

	digests := make([]core.Digest, 0, len(raw))
	for i, d := range raw {
		if d.Date == nil || *d.Date == "" || d.Timestamp == nil || *d.Timestamp == 0 || d.Categories == nil {
			return nil, fmt.Errorf("invalid digest structure at index %d", i)
		}
		digests = append(digests, core.Digest{
			Date:       *d.Date,
			IntroText:  d.IntroText,
			Categories: *d.Categories,
			Timestamp:  *d.Timestamp,
		})
	}
	return digests, nil
}

// save backs up the current file, writes the new list and restores the backup if the write fails.
func (s *Store) save(digests []core.Digest) error {
	data, err := json.MarshalIndent(digests, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode digests: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := s.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	backup := s.BackupPath()
	if exists, _ := afero.Exists(s.fs, s.path); exists {
		current, err := afero.ReadFile(s.fs, s.path)
		if err != nil {
			return fmt.Errorf("failed to read current digests for backup: %w", err)
		}
		if err := afero.WriteFile(s.fs, backup, current, 0644); err != nil {
			return fmt.Errorf("failed to write backup: %w", err)
		}
	}

	writeErr := afero.WriteFile(s.fs, s.path, data, 0644)
	if writeErr == nil {
		s.log.Info("Saved digests", "count", len(digests), "path", s.path)
		return nil
	}

	s.log.Error("Error saving digests", "error", writeErr.Error())
	if err := s.restore(backup); err != nil {
		s.log.Error("Failed to restore from backup", "error", err.Error())
	}
	return fmt.Errorf("failed to save digests: %w", writeErr)
}

func (s *Store) restore(backup string) error {
	data, err := afero.ReadFile(s.fs, backup)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0644); err != nil {
		return err
	}
	s.log.Info("Restored digests from backup", "path", s.path)
	return nil
}
