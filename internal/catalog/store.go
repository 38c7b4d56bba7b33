package catalog

import (
	"sync"

	"go.uber.org/zap"
)

// Store holds the current catalog and swaps it atomically on Reload.
type Store struct {
	dir    string
	logger *zap.Logger

	mu  sync.RWMutex
	cat *Catalog
}

// NewStore loads dir once and returns a store serving it.
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cat, err := Load(dir)
	if err != nil {
		return nil, err
	}
	return &Store{dir: dir, logger: logger, cat: cat}, nil
}

// StaticStore wraps an already built catalog. Reload is a no-op.
func StaticStore(cat *Catalog) *Store {
	return &Store{cat: cat, logger: zap.NewNop()}
}

// Current returns the catalog in effect.
func (s *Store) Current() *Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat
}

// Dir is the directory the store reloads from.
func (s *Store) Dir() string { return s.dir }

// Reload re-reads the data directory. On failure the previous catalog is kept.
func (s *Store) Reload() error {
	if s.dir == "" {
		return nil
	}
	cat, err := Load(s.dir)
	if err != nil {
		s.logger.Warn("catalog reload failed", zap.String("dir", s.dir), zap.Error(err))
		return err
	}
	s.mu.Lock()
	s.cat = cat
	s.mu.Unlock()
	s.logger.Info("catalog reloaded",
		zap.Int("cities", len(cat.Cities)),
		zap.Int("cruises", len(cat.Cruises)),
		zap.Int("deals", len(cat.Deals)),
	)
	return nil
}
