package recall

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/moodyhq/placerec/core"
	"github.com/moodyhq/placerec/repository"
	"github.com/moodyhq/placerec/store"
)

func seedPlaces(repo *repository.Memory) {
	repo.AddPlace(&core.Place{ID: "bar", Name: "Bar", Likes: 50, Tags: []string{"rock", "beer"}})
	repo.AddPlace(&core.Place{ID: "cafe", Name: "Cafe", Likes: 30, Tags: []string{"coffee"}})
	repo.AddPlace(&core.Place{ID: "club", Name: "Club", Likes: 10, Tags: []string{"rock"}})
}

func TestHot_TopPlaces(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	seedPlaces(repo)
	hot := &Hot{Repo: repo}

	t.Run("global order without user signals", func(t *testing.T) {
		places, err := hot.TopPlaces(ctx, core.NewUser("u"), 0, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(places) != 3 || places[0].ID != "bar" || places[1].ID != "cafe" {
			t.Fatalf("unexpected order: %v", placeIDs(places))
		}
	})

	t.Run("own interactions reorder the page", func(t *testing.T) {
		user := metricsUser("u", map[string]int{"club": 7})
		places, err := hot.TopPlaces(ctx, user, 0, 10)
		if err != nil {
			t.Fatal(err)
		}
		if places[0].ID != "club" {
			t.Fatalf("expected club first after personalization, got %v", placeIDs(places))
		}
	})

	t.Run("interest tags narrow the page", func(t *testing.T) {
		user := core.NewUser("u")
		user.Metrics = []core.Metric{{PlaceID: "x", Interactions: 1, Interest: "rock"}}
		places, err := hot.TopPlaces(ctx, user, 0, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(places) != 2 {
			t.Fatalf("expected rock-tagged places only, got %v", placeIDs(places))
		}
		for _, p := range places {
			if !p.HasTag("rock") {
				t.Fatalf("place %s has no rock tag", p.ID)
			}
		}
	})

	t.Run("empty filter result falls back to unfiltered", func(t *testing.T) {
		user := core.NewUser("u")
		user.Metrics = []core.Metric{{PlaceID: "x", Interactions: 1, Interest: "opera"}}
		places, err := hot.TopPlaces(ctx, user, 0, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(places) != 3 {
			t.Fatalf("tag filter must be ignored when nothing matches, got %v", placeIDs(places))
		}
	})

	t.Run("offset beyond catalog yields empty", func(t *testing.T) {
		places, err := hot.TopPlaces(ctx, core.NewUser("u"), 100, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(places) != 0 {
			t.Fatalf("expected empty slice, got %v", placeIDs(places))
		}
	})

	t.Run("non-positive limit yields empty", func(t *testing.T) {
		places, err := hot.TopPlaces(ctx, core.NewUser("u"), 0, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(places) != 0 {
			t.Fatalf("expected empty slice, got %v", placeIDs(places))
		}
	})
}

func TestHot_StoreBackedRanking(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	seedPlaces(repo)

	kv := store.NewMemoryStore()
	defer kv.Close()
	// zset 榜单与 likes 序不同：club 被人工置顶
	if err := kv.ZAdd(ctx, "hot:places", 99, "club"); err != nil {
		t.Fatal(err)
	}
	if err := kv.ZAdd(ctx, "hot:places", 1, "bar"); err != nil {
		t.Fatal(err)
	}

	hot := &Hot{Repo: repo, Store: kv, Key: "hot:places"}
	places, err := hot.TopPlaces(ctx, core.NewUser("u"), 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(places) != 2 || places[0].ID != "club" || places[1].ID != "bar" {
		t.Fatalf("expected zset order [club, bar], got %v", placeIDs(places))
	}

	t.Run("missing zset falls back to repository", func(t *testing.T) {
		fallback := &Hot{Repo: repo, Store: kv, Key: "no-such-key"}
		places, err := fallback.TopPlaces(ctx, core.NewUser("u"), 0, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(places) != 3 {
			t.Fatalf("expected repository fallback, got %v", placeIDs(places))
		}
	})

	t.Run("zset read error degrades with a warning", func(t *testing.T) {
		var buf bytes.Buffer
		degraded := &Hot{
			Repo:   repo,
			Store:  brokenStore{},
			Key:    "hot:places",
			Logger: zerolog.New(&buf),
		}
		places, err := degraded.TopPlaces(ctx, core.NewUser("u"), 0, 10)
		if err != nil {
			t.Fatalf("store failure must degrade to repository, got %v", err)
		}
		if len(places) != 3 {
			t.Fatalf("expected repository fallback, got %v", placeIDs(places))
		}
		logged := buf.String()
		if !strings.Contains(logged, "hot:places") || !strings.Contains(logged, "connection refused") {
			t.Fatalf("degraded read must log key and cause, got %q", logged)
		}
	})
}

// brokenStore 的 zset 读取永远失败，模拟后端故障。
type brokenStore struct{}

func (brokenStore) Name() string { return "broken" }
func (brokenStore) Close() error { return nil }

func (brokenStore) Get(context.Context, string) ([]byte, error) {
	return nil, core.ErrStoreNotSupported
}
func (brokenStore) Set(context.Context, string, []byte, ...int) error {
	return core.ErrStoreNotSupported
}
func (brokenStore) Delete(context.Context, string) error {
	return core.ErrStoreNotSupported
}
func (brokenStore) ZAdd(context.Context, string, float64, string) error {
	return core.ErrStoreNotSupported
}
func (brokenStore) ZRange(context.Context, string, int64, int64) ([]string, error) {
	return nil, errors.New("connection refused")
}
func (brokenStore) ZScore(context.Context, string, string) (float64, error) {
	return 0, core.ErrStoreNotSupported
}

var _ core.KeyValueStore = brokenStore{}

func placeIDs(places []*core.Place) []string {
	out := make([]string, 0, len(places))
	for _, p := range places {
		out = append(out, p.ID)
	}
	return out
}
