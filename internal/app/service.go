package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"rich-trivia-service/internal/domain"
)

// CatalogRepository provides the full question catalog (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context) ([]domain.Question, error)
}

// GameService builds game sessions: it loads and validates the catalog,
// draws a play sequence and hands out a controller for it.
type GameService struct {
	catalog     CatalogRepository
	stats       *StatsService
	revealDelay time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewGameService(catalog CatalogRepository, stats *StatsService, revealDelay time.Duration) *GameService {
	return NewGameServiceWithRand(catalog, stats, revealDelay, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewGameServiceWithRand is for tests that need a deterministic draw.
func NewGameServiceWithRand(catalog CatalogRepository, stats *StatsService, revealDelay time.Duration, rnd *rand.Rand) *GameService {
	return &GameService{
		catalog:     catalog,
		stats:       stats,
		revealDelay: revealDelay,
		rnd:         rnd,
	}
}

// StartGame draws a fresh play sequence and starts a session over it.
func (s *GameService) StartGame(ctx context.Context, onCommit func(Snapshot)) (*Game, error) {
	catalog, err := s.catalog.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateCatalog(catalog); err != nil {
		return nil, err
	}

	s.mu.Lock()
	sequence, err := SelectSequence(catalog, s.rnd)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return NewGame(sequence, s.revealDelay, onCommit)
}

// Stats exposes the stats use cases to the transport layer.
func (s *GameService) Stats() *StatsService {
	return s.stats
}
