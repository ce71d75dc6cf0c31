package dsl

import (
	"testing"

	"github.com/moodyhq/placerec/core"
	"github.com/moodyhq/placerec/pkg/utils"
)

func fixture() (*core.Item, *core.RecommendContext) {
	item := core.NewItem("p1")
	item.Score = 42.5
	item.PutMeta("tags", []string{"rock", "beer"})
	item.PutLabel("recall_source", utils.Label{Value: "hot", Source: "recall"})

	user := core.NewUser("u1")
	user.Age = 25
	user.MusicGenre = "rock"
	rctx := &core.RecommendContext{UserID: user.ID, User: user}
	return item, rctx
}

func TestEval_Evaluate(t *testing.T) {
	item, rctx := fixture()

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"empty expression is true", "", true},
		{"item id", `item.id == "p1"`, true},
		{"item score", `item.score > 40.0`, true},
		{"label shorthand", `label.recall_source == "hot"`, true},
		{"label full form", `item.labels.recall_source.value == "hot"`, true},
		{"user age", `user.age < 30`, true},
		{"user genre", `user.music_genre == "rock"`, true},
		{"meta membership", `"beer" in item.meta.tags`, true},
		{"conjunction", `label.recall_source == "hot" && item.score > 100.0`, false},
		{"negative", `user.age > 60`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewEval(item, rctx).Evaluate(tt.expr)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("%q: got %v, want %v", tt.expr, got, tt.want)
			}
		})
	}

	t.Run("compile error surfaces", func(t *testing.T) {
		if _, err := NewEval(item, rctx).Evaluate(`((`); err == nil {
			t.Fatal("expected compile error")
		}
	})

	t.Run("non-boolean result is rejected", func(t *testing.T) {
		if _, err := NewEval(item, rctx).Evaluate(`item.score`); err == nil {
			t.Fatal("expected type error for non-boolean expression")
		}
	})

	t.Run("nil item still evaluates user side", func(t *testing.T) {
		got, err := NewEval(nil, rctx).Evaluate(`user.age == 25`)
		if err != nil || !got {
			t.Fatalf("got (%v, %v)", got, err)
		}
	})
}
