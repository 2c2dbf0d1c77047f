package widgetconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Store loads and saves widget configs. Get creates the default config for
// an unknown project.
type Store interface {
	Get(ctx context.Context, projectID string) (*Config, error)
	Upsert(ctx context.Context, projectID string, update Update) (*Config, error)
}

const fileName = "widget-config.json"

type fileContents struct {
	Configs []*Config `json:"configs"`
}

// FileStore keeps all configs in one JSON file.
type FileStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewFileStore stores configs under dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("widgetconfig: create data dir: %w", err)
	}
	return &FileStore{
		path: filepath.Join(dir, fileName),
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *FileStore) Get(_ context.Context, projectID string) (*Config, error) {
	if projectID == "" {
		return nil, ErrMissingProject
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, c := range contents.Configs {
		if c.ProjectID == projectID {
			return c, nil
		}
	}
	cfg := Default(projectID, s.now())
	contents.Configs = append(contents.Configs, cfg)
	if err := s.save(contents); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *FileStore) Upsert(_ context.Context, projectID string, update Update) (*Config, error) {
	if projectID == "" {
		return nil, ErrMissingProject
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := s.load()
	if err != nil {
		return nil, err
	}
	now := s.now()
	var cfg *Config
	for _, c := range contents.Configs {
		if c.ProjectID == projectID {
			cfg = c
			break
		}
	}
	if cfg == nil {
		cfg = Default(projectID, now)
		contents.Configs = append(contents.Configs, cfg)
	}
	cfg.Apply(update)
	cfg.ProjectID = projectID
	cfg.UpdatedAt = now
	if err := s.save(contents); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (s *FileStore) load() (*fileContents, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &fileContents{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("widgetconfig: read %s: %w", s.path, err)
	}
	var contents fileContents
	if err := json.Unmarshal(data, &contents); err != nil {
		return nil, fmt.Errorf("widgetconfig: decode %s: %w", s.path, err)
	}
	return &contents, nil
}

// save replaces the file atomically.
func (s *FileStore) save(contents *fileContents) error {
	data, err := json.MarshalIndent(contents, "", "  ")
	if err != nil {
		return fmt.Errorf("widgetconfig: encode configs: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("widgetconfig: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("widgetconfig: replace %s: %w", s.path, err)
	}
	return nil
}
