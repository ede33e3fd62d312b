package localfs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"orcamentos/internal/domain"
	"orcamentos/internal/schema"

	"go.uber.org/zap"
)

// Store is the offline fallback backend: one JSON array file per table plus a
// local uploads directory. Writes are whole-file rewrites guarded by a mutex,
// which is enough for the single-operator fallback scenario.
type Store struct {
	dir    string
	logger *zap.Logger
	mu     sync.Mutex
}

func New(dir string, logger *zap.Logger) (*Store, error) {
	s := &Store{dir: dir, logger: logger}

	if err := os.MkdirAll(s.uploadsDir(), 0o755); err != nil {
		return nil, fmt.Errorf("creating local data dirs: %w", err)
	}
	for _, t := range []schema.Table{schema.Users, schema.Budgets} {
		if err := s.ensureTableFile(t); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) tablePath(t schema.Table) string {
	return filepath.Join(s.dir, strings.ToLower(t.Name)+".json")
}

func (s *Store) uploadsDir() string {
	return filepath.Join(s.dir, "uploads")
}

func (s *Store) ensureTableFile(t schema.Table) error {
	path := s.tablePath(t)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
		return fmt.Errorf("initializing %s: %w", path, err)
	}
	return nil
}

func (s *Store) readTable(t schema.Table) ([]schema.Record, error) {
	if err := s.ensureTableFile(t); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.tablePath(t))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", t.Name, err)
	}
	var recs []schema.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", t.Name, err)
	}
	// hand-edited files may miss columns; readers expect every known key
	for _, rec := range recs {
		for _, c := range t.Columns {
			if _, ok := rec[c]; !ok {
				rec[c] = ""
			}
		}
	}
	return recs, nil
}

func (s *Store) writeTable(t schema.Table, recs []schema.Record) error {
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", t.Name, err)
	}
	if err := os.WriteFile(s.tablePath(t), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", t.Name, err)
	}
	return nil
}

func (s *Store) ListTable(t schema.Table) ([]schema.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readTable(t)
}

func (s *Store) AppendRow(t schema.Table, rec schema.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.readTable(t)
	if err != nil {
		return err
	}
	// keep the stored shape identical to the sheet: known columns only,
	// absent fields as empty strings
	stored := make(schema.Record, len(t.Columns))
	for _, c := range t.Columns {
		stored[c] = rec[c]
	}
	return s.writeTable(t, append(recs, stored))
}

func (s *Store) UpdateFields(t schema.Table, id string, updates schema.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, err := s.readTable(t)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		if rec["id"] != id {
			continue
		}
		for field, value := range updates {
			if t.Col(field) >= 0 {
				rec[field] = value
			}
		}
		return s.writeTable(t, recs)
	}
	return fmt.Errorf("%s id %q: %w", t.Name, id, domain.ErrNotFound)
}

// UploadBlob writes the attachment under uploads/ with a timestamp prefix and
// returns the path, mirroring what the remote backend does with public links.
func (s *Store) UploadBlob(owner, filename string, data []byte, mimeType string) (string, error) {
	name := fmt.Sprintf("%s_%s", time.Now().Format("20060102150405"), filepath.Base(filename))
	path := filepath.Join(s.uploadsDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("saving upload %s: %w", filename, err)
	}
	s.logger.Info("upload saved locally", zap.String("owner", owner), zap.String("path", path))
	return path, nil
}
