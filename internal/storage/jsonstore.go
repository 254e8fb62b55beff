// Package storage is the durable side of the service: a JSON document
// store with one file per collection. The engine itself is in-memory;
// only moderation state (bans, reports, credentials, action log) lives
// here.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	CollectionBans        = "bans.json"
	CollectionReports     = "reports.json"
	CollectionActions     = "admin_actions.json"
	CollectionCredentials = "admin_credentials.json"
)

// defaultCredentials seeds a placeholder admin login that cannot match
// any password. Deployments must write a real bcrypt hash before the
// admin API is usable.
const defaultCredentials = `{"users":[{"username":"admin","passwordHash":"$2a$10$ReplaceThisPlaceholderHash"}]}`

func defaultData(collection string) string {
	switch collection {
	case CollectionBans:
		return `{}`
	case CollectionReports, CollectionActions:
		return `[]`
	case CollectionCredentials:
		return defaultCredentials
	default:
		return `{}`
	}
}

// Store reads and writes whole collections. Writes are serialized; the
// caller owns read-modify-write atomicity for its own collection.
type Store struct {
	mu  sync.Mutex
	fs  afero.Fs
	dir string
}

func New(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// Init creates the data directory and seeds every collection that does
// not exist yet with its default document.
func (s *Store) Init() error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	collections := []string{CollectionBans, CollectionReports, CollectionActions, CollectionCredentials}
	for _, c := range collections {
		path := filepath.Join(s.dir, c)
		if _, err := s.fs.Stat(path); err == nil {
			continue
		}
		if err := afero.WriteFile(s.fs, path, []byte(defaultData(c)), 0o644); err != nil {
			return fmt.Errorf("seed %s: %w", c, err)
		}
		log.Info().Str("module", "storage").Str("collection", c).Msg("seeded collection with defaults")
	}
	return nil
}

// Read decodes a collection into v. A missing file decodes the
// collection's default document instead.
func (s *Store) Read(collection string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := afero.ReadFile(s.fs, filepath.Join(s.dir, collection))
	if err != nil {
		if os.IsNotExist(err) {
			return json.Unmarshal([]byte(defaultData(collection)), v)
		}
		return fmt.Errorf("read %s: %w", collection, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", collection, err)
	}
	return nil
}

// Write replaces a collection with v.
func (s *Store) Write(collection string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", collection, err)
	}
	if err := afero.WriteFile(s.fs, filepath.Join(s.dir, collection), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", collection, err)
	}
	return nil
}
