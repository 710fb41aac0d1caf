// Package settings keeps the user's ROM directory per console in a TOML
// document.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

var ErrUnknownConsole = errors.New("settings: unknown console abbreviation")

// Config is the on-disk document. go-toml writes map keys sorted.
type Config struct {
	RomPaths map[string]string `toml:"rom_paths" json:"rom_paths"`
}

// Store guards one config file. Every mutation is written through.
type Store struct {
	mu   sync.Mutex
	path string
	cfg  Config
}

// Load reads path, adds an empty entry for every abbreviation it lacks and
// saves the result. A missing file starts from an empty document; an
// unparsable one is an error and is left untouched.
func Load(path string, abbreviations []string) (*Store, error) {
	var cfg Config

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read settings: %w", err)
	default:
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse settings %s: %w", path, err)
		}
	}

	if cfg.RomPaths == nil {
		cfg.RomPaths = make(map[string]string, len(abbreviations))
	}
	for _, abbr := range abbreviations {
		if _, ok := cfg.RomPaths[abbr]; !ok {
			cfg.RomPaths[abbr] = ""
		}
	}

	s := &Store{path: path, cfg: cfg}
	if err := s.Save(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns a copy of the current document.
func (s *Store) Get() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Config{RomPaths: maps.Clone(s.cfg.RomPaths)}
}

func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// SetRomPath points a known console at dir and saves.
func (s *Store) SetRomPath(abbr, dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.cfg.RomPaths[abbr]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownConsole, abbr)
	}
	s.cfg.RomPaths[abbr] = dir
	if err := s.save(); err != nil {
		s.cfg.RomPaths[abbr] = prev
		return err
	}
	return nil
}

func (s *Store) save() error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}

	b, err := toml.Marshal(s.cfg)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	// Write beside the target and rename so readers never see half a file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}
