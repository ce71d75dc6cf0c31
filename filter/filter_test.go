package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/moodyhq/placerec/core"
)

func recCtx(metrics map[string]int) *core.RecommendContext {
	user := core.NewUser("u")
	for placeID, count := range metrics {
		user.Metrics = append(user.Metrics, core.Metric{PlaceID: placeID, Interactions: count})
	}
	return &core.RecommendContext{UserID: user.ID, User: user}
}

func TestVisited_ShouldFilter(t *testing.T) {
	ctx := context.Background()
	rctx := recCtx(map[string]int{"seen": 3, "zero": 0})
	f := &Visited{}

	tests := []struct {
		name   string
		itemID string
		want   bool
	}{
		{"visited place is dropped", "seen", true},
		{"zero interactions passes", "zero", false},
		{"unseen place passes", "new", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.ShouldFilter(ctx, rctx, core.NewItem(tt.itemID))
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("nil context is permissive", func(t *testing.T) {
		got, err := f.ShouldFilter(ctx, nil, core.NewItem("seen"))
		if err != nil || got {
			t.Fatalf("expected pass-through, got (%v, %v)", got, err)
		}
	})
}

func TestExpr_ShouldFilter(t *testing.T) {
	ctx := context.Background()
	rctx := recCtx(nil)
	rctx.User.Age = 17

	tests := []struct {
		name       string
		expression string
		item       *core.Item
		want       bool
	}{
		{
			name:       "score predicate",
			expression: `item.score < 1.0`,
			item:       &core.Item{ID: "p1", Score: 0.5},
			want:       true,
		},
		{
			name:       "score predicate passes high scores",
			expression: `item.score < 1.0`,
			item:       &core.Item{ID: "p1", Score: 2.0},
			want:       false,
		},
		{
			name:       "user field predicate",
			expression: `user.age < 18`,
			item:       core.NewItem("p1"),
			want:       true,
		},
		{
			name:       "empty expression never filters",
			expression: "",
			item:       core.NewItem("p1"),
			want:       false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &Expr{Expression: tt.expression}
			got, err := f.ShouldFilter(ctx, rctx, tt.item)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// errFilter 总是报错，用于验证 Node 跳过故障过滤器。
type errFilter struct{}

func (f *errFilter) Name() string { return "filter.err" }

func (f *errFilter) ShouldFilter(context.Context, *core.RecommendContext, *core.Item) (bool, error) {
	return true, errors.New("filter backend down")
}

func TestNode_Process(t *testing.T) {
	ctx := context.Background()
	rctx := recCtx(map[string]int{"seen": 2})
	items := []*core.Item{core.NewItem("seen"), core.NewItem("new")}

	t.Run("combines filters and labels removals", func(t *testing.T) {
		node := &Node{Filters: []Filter{&Visited{}}}
		got, err := node.Process(ctx, rctx, items)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].ID != "new" {
			t.Fatalf("expected only unseen item, got %d items", len(got))
		}
		if lbl := items[0].Labels["filtered"]; lbl.Value != "true" || lbl.Source != "filter.visited" {
			t.Fatalf("dropped item not labeled: %+v", items[0].Labels)
		}
	})

	t.Run("failing filter is skipped", func(t *testing.T) {
		node := &Node{Filters: []Filter{&errFilter{}}}
		got, err := node.Process(ctx, rctx, []*core.Item{core.NewItem("p1")})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 {
			t.Fatal("error filter must not drop items")
		}
	})

	t.Run("no filters passes everything", func(t *testing.T) {
		node := &Node{}
		got, err := node.Process(ctx, rctx, items)
		if err != nil || len(got) != len(items) {
			t.Fatalf("expected pass-through, got (%d items, %v)", len(got), err)
		}
	})
}
