package rerank

import (
	"context"
	"testing"

	"github.com/moodyhq/placerec/core"
	"github.com/moodyhq/placerec/pkg/utils"
)

func TestTopN_Process(t *testing.T) {
	ctx := context.Background()
	items := []*core.Item{core.NewItem("p1"), core.NewItem("p2"), core.NewItem("p3")}

	tests := []struct {
		name string
		n    int
		want int
	}{
		{"truncates to n", 2, 2},
		{"n larger than input", 10, 3},
		{"zero n keeps everything", 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := &TopN{N: tt.n}
			got, err := node.Process(ctx, nil, items)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Fatalf("got %d items, want %d", len(got), tt.want)
			}
			// 截断保序
			for i, item := range got {
				if item.ID != items[i].ID {
					t.Fatalf("order changed at %d: %s", i, item.ID)
				}
			}
		})
	}
}

func TestDiversity_Process(t *testing.T) {
	ctx := context.Background()

	tagged := func(id, tag string) *core.Item {
		it := core.NewItem(id)
		it.PutLabel("tag", utils.Label{Value: tag, Source: "test"})
		return it
	}

	t.Run("keeps first item per tag", func(t *testing.T) {
		items := []*core.Item{
			tagged("p1", "rock"),
			tagged("p2", "rock"),
			tagged("p3", "jazz"),
		}
		node := &Diversity{}
		got, err := node.Process(ctx, nil, items)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 || got[0].ID != "p1" || got[1].ID != "p3" {
			t.Fatalf("unexpected survivors: %v", itemIDs(got))
		}
	})

	t.Run("untagged items always pass", func(t *testing.T) {
		items := []*core.Item{core.NewItem("p1"), core.NewItem("p2")}
		node := &Diversity{}
		got, err := node.Process(ctx, nil, items)
		if err != nil || len(got) != 2 {
			t.Fatalf("untagged items must survive, got %d", len(got))
		}
	})

	t.Run("falls back to meta tag", func(t *testing.T) {
		it1 := core.NewItem("p1")
		it1.PutMeta("tag", "coffee")
		it2 := core.NewItem("p2")
		it2.PutMeta("tag", "coffee")
		node := &Diversity{}
		got, err := node.Process(ctx, nil, []*core.Item{it1, it2})
		if err != nil || len(got) != 1 {
			t.Fatalf("meta tag dedupe failed, got %d items", len(got))
		}
	})
}

func itemIDs(items []*core.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}
