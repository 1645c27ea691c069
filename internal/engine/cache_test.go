package engine

import (
	"strings"
	"testing"
	"time"
)

func TestCacheKey(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		k1 := CacheKey("transcript", "dQw4w9WgXcQ", "en")
		k2 := CacheKey("transcript", "dQw4w9WgXcQ", "en")
		if k1 != k2 {
			t.Errorf("CacheKey not deterministic: %q != %q", k1, k2)
		}
	})

	t.Run("different inputs differ", func(t *testing.T) {
		k1 := CacheKey("search", "golang")
		k2 := CacheKey("search", "python")
		if k1 == k2 {
			t.Errorf("different inputs produced same key: %q", k1)
		}
	})

	t.Run("has prefix", func(t *testing.T) {
		if k := CacheKey("test"); !strings.HasPrefix(k, "yt:") {
			t.Errorf("expected yt: prefix, got %q", k)
		}
	})
}

func TestCacheGetSet(t *testing.T) {
	InitCache("", time.Minute, 100, 5*time.Minute)

	ctx := t.Context()
	key := CacheKey("test", "round-trip")

	if _, ok := CacheGet(ctx, key); ok {
		t.Error("expected cache miss on empty cache")
	}

	CacheSet(ctx, key, []byte("hello"))
	got, ok := CacheGet(ctx, key)
	if !ok {
		t.Fatal("expected cache hit after set")
	}
	if string(got) != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

func TestCacheJSONRoundTrip(t *testing.T) {
	InitCache("", time.Minute, 100, 5*time.Minute)

	ctx := t.Context()
	key := CacheKey("test", "json")

	in := SuggestOutput{Query: "golang", Suggestions: []string{"golang tutorial", "golang vs rust"}}
	CacheSetJSON(ctx, key, in)

	out, ok := CacheGetJSON[SuggestOutput](ctx, key)
	if !ok {
		t.Fatal("expected hit")
	}
	if out.Query != in.Query || len(out.Suggestions) != 2 {
		t.Errorf("round-trip = %+v", out)
	}

	if _, ok := CacheGetJSON[ChannelOutput](ctx, CacheKey("test", "absent")); ok {
		t.Error("expected miss for absent key")
	}
}

func TestCacheExpiry(t *testing.T) {
	InitCache("", time.Millisecond, 100, 5*time.Minute)

	ctx := t.Context()
	key := CacheKey("test", "expiry")
	CacheSet(ctx, key, []byte("soon gone"))

	time.Sleep(5 * time.Millisecond)
	if _, ok := CacheGet(ctx, key); ok {
		t.Error("expected miss after TTL")
	}
}
