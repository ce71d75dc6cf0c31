package cache

import (
	"sort"
	"testing"
	"time"
)

func TestTTL_GetSet(t *testing.T) {
	c := NewTTL[[]string](time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss for absent key")
	}

	c.Set("u1", []string{"p1", "p2"})
	got, ok := c.Get("u1")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if len(got) != 2 || got[0] != "p1" || got[1] != "p2" {
		t.Fatalf("unexpected value: %v", got)
	}
}

func TestTTL_Expiry(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	c := NewTTL[int](300 * time.Second)
	c.SetClock(func() time.Time { return now })

	c.Set("k", 42)

	// 窗口边界：299s 仍命中，恰好 300s 失效
	now = base.Add(299 * time.Second)
	if v, ok := c.Get("k"); !ok || v != 42 {
		t.Fatalf("expected hit at 299s, got (%v, %v)", v, ok)
	}

	now = base.Add(300 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss at exactly 300s")
	}

	// 过期条目被惰性剔除
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after lazy eviction, len=%d", c.Len())
	}
}

func TestTTL_SetResetsWindow(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	c := NewTTL[string](10 * time.Second)
	c.SetClock(func() time.Time { return now })

	c.Set("k", "old")
	now = base.Add(8 * time.Second)
	c.Set("k", "new")

	now = base.Add(15 * time.Second)
	if v, ok := c.Get("k"); !ok || v != "new" {
		t.Fatalf("Set should reset the window, got (%v, %v)", v, ok)
	}
}

func TestTTL_DeleteMissingIsNoop(t *testing.T) {
	c := NewTTL[int](time.Minute)
	c.Delete("never-inserted") // 不 panic、不报错

	c.Set("k", 1)
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss after Delete")
	}
}

func TestTTL_Clear(t *testing.T) {
	c := NewTTL[int](time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after Clear, len=%d", c.Len())
	}
}

func TestTTL_KeysLiveView(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	c := NewTTL[int](10 * time.Second)
	c.SetClock(func() time.Time { return now })

	c.Set("old", 1)
	now = base.Add(5 * time.Second)
	c.Set("fresh", 2)

	now = base.Add(12 * time.Second)
	keys := c.Keys()
	if len(keys) != 1 || keys[0] != "fresh" {
		t.Fatalf("expected only fresh key, got %v", keys)
	}
}

func TestTTL_DefaultWindow(t *testing.T) {
	c := NewTTL[int](0)
	if c.ttl != DefaultTTL {
		t.Fatalf("expected default ttl %v, got %v", DefaultTTL, c.ttl)
	}
}

func TestTTL_KeysSortedStable(t *testing.T) {
	c := NewTTL[int](time.Minute)
	for _, k := range []string{"b", "a", "c"} {
		c.Set(k, 0)
	}
	keys := c.Keys()
	sort.Strings(keys)
	if len(keys) != 3 || keys[0] != "a" || keys[2] != "c" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}
