package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"rich-trivia-service/internal/domain"
	"rich-trivia-service/internal/infra/memory"
)

func TestCatalogCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		CatalogLoader: memory.NewStaticCatalogLoader(sampleCatalog()),
	}
	cache := NewCatalogCache(client, loader, time.Minute)

	catalog, err := cache.GetCatalog(context.Background())
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if len(catalog) != 2 || loader.calls != 1 {
		t.Fatalf("expected 2 questions from one load, got %d questions, %d calls", len(catalog), loader.calls)
	}
	if !mr.Exists("catalog:questions") {
		t.Fatalf("expected redis key to be set")
	}

	// Second call should hit redis, loader not incremented.
	if _, err := cache.GetCatalog(context.Background()); err != nil {
		t.Fatalf("get catalog 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
}

func TestCatalogCachePropagatesLoaderError(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	cache := NewCatalogCache(newClient(mr), memory.NewStaticCatalogLoader(nil), time.Minute)
	if _, err := cache.GetCatalog(context.Background()); err != domain.ErrCatalogEmpty {
		t.Fatalf("expected ErrCatalogEmpty, got %v", err)
	}
}

type countingLoader struct {
	CatalogLoader
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context) ([]domain.Question, error) {
	l.calls++
	return l.CatalogLoader.LoadCatalog(ctx)
}

func sampleCatalog() []domain.Question {
	answers := []domain.Answer{
		{ID: "a", Text: "3", Correct: false},
		{ID: "b", Text: "4", Correct: true},
	}
	return []domain.Question{
		{ID: "q1", Text: "What is 2 + 2?", Level: 1, Money: 100, Answers: answers},
		{ID: "q2", Text: "What is 6 x 7?", Level: 2, Money: 500, Answers: answers},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
