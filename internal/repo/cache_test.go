package repo

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeKV struct {
	data map[string]string
	sets int
	dels int
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}}
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	v, ok := f.data[key]
	if !ok {
		return "", errors.New("cache miss")
	}
	return v, nil
}

func (f *fakeKV) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.sets++
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	return nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	f.dels++
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

type cachedDoc struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
}

func TestAggregateCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	cache := NewAggregateCache(kv, "codelist", time.Minute)

	var miss cachedDoc
	if cache.Get(ctx, "CTCodelist_1", &miss) {
		t.Fatal("expected miss on empty cache")
	}

	if err := cache.Put(ctx, "CTCodelist_1", cachedDoc{UID: "CTCodelist_1", Name: "Race"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var hit cachedDoc
	if !cache.Get(ctx, "CTCodelist_1", &hit) {
		t.Fatal("expected hit after Put")
	}
	if hit.Name != "Race" {
		t.Fatalf("unexpected cached value %+v", hit)
	}

	if err := cache.Invalidate(ctx, "CTCodelist_1"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	var gone cachedDoc
	if cache.Get(ctx, "CTCodelist_1", &gone) {
		t.Fatal("expected miss after Invalidate")
	}
}

func TestAggregateCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKV()
	cache := NewAggregateCache(kv, "codelist", time.Minute)

	kv.data["cmdr:aggregate:codelist:CTCodelist_9"] = "{not json"

	var dest cachedDoc
	if cache.Get(ctx, "CTCodelist_9", &dest) {
		t.Fatal("corrupt entry should be a miss")
	}
	if kv.dels != 1 {
		t.Fatal("corrupt entry should be evicted")
	}
}

func TestAggregateCacheDisabled(t *testing.T) {
	ctx := context.Background()
	var cache *AggregateCache

	var dest cachedDoc
	if cache.Get(ctx, "x", &dest) {
		t.Fatal("nil cache should always miss")
	}
	if err := cache.Put(ctx, "x", dest); err != nil {
		t.Fatalf("nil cache Put should no-op, got %v", err)
	}
	if err := cache.Invalidate(ctx, "x"); err != nil {
		t.Fatalf("nil cache Invalidate should no-op, got %v", err)
	}

	disabled := NewAggregateCache(nil, "codelist", time.Minute)
	if disabled.Get(ctx, "x", &dest) {
		t.Fatal("disabled cache should always miss")
	}
}
