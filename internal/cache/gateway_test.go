package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("store down")
}
func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("store down")
}
func (failingStore) DeleteByPrefix(context.Context, string) error {
	return errors.New("store down")
}

func TestGateway_DisabledIsPassThrough(t *testing.T) {
	ctx := context.Background()
	for name, g := range map[string]*Gateway{
		"nil gateway": nil,
		"no prefix":   NewGateway(NewMemoryStore(), "", time.Minute),
		"no store":    NewGateway(nil, "tasks", time.Minute),
	} {
		if g.Enabled() {
			t.Errorf("%s: should be disabled", name)
		}
		if key := g.ListKey(nil, nil, "", 0, nil, "", nil); key != "" {
			t.Errorf("%s: list key = %q, want empty", name, key)
		}
		if key := g.ObjectKey("1", nil); key != "" {
			t.Errorf("%s: object key = %q, want empty", name, key)
		}
		if _, ok := g.ReadThrough(ctx, "tasks_list_x"); ok {
			t.Errorf("%s: disabled gateway returned a hit", name)
		}
		g.Write(ctx, "tasks_list_x", []byte("payload"))
		g.InvalidateObject(ctx, "1")
		g.InvalidateList(ctx)
	}
}

func TestGateway_ReadThroughAfterWrite(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	g := NewGateway(store, "tasks", time.Minute)

	key := g.ListKey(map[string]any{"status": "active"}, nil, "", 0, nil, "", nil)
	if _, ok := g.ReadThrough(ctx, key); ok {
		t.Fatal("cold cache returned a hit")
	}

	g.Write(ctx, key, []byte(`{"objects":[]}`))
	payload, ok := g.ReadThrough(ctx, key)
	if !ok || string(payload) != `{"objects":[]}` {
		t.Fatalf("hit = %v payload = %s", ok, payload)
	}
}

func TestGateway_InvalidationScope(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	g := NewGateway(store, "tasks", time.Minute)

	listKey := g.ListKey(nil, nil, "", 0, nil, "", nil)
	objFull := g.ObjectKey("7", nil)
	objSubset := g.ObjectKey("7", []string{"id", "title"})
	objOther := g.ObjectKey("8", nil)

	for _, key := range []string{listKey, objFull, objSubset, objOther} {
		g.Write(ctx, key, []byte("x"))
	}

	// dropping one object removes every field-shape of it and nothing else
	g.InvalidateObject(ctx, "7")
	if _, ok := g.ReadThrough(ctx, objFull); ok {
		t.Fatal("full object shape survived invalidation")
	}
	if _, ok := g.ReadThrough(ctx, objSubset); ok {
		t.Fatal("subset object shape survived invalidation")
	}
	if _, ok := g.ReadThrough(ctx, objOther); !ok {
		t.Fatal("unrelated object was invalidated")
	}
	if _, ok := g.ReadThrough(ctx, listKey); !ok {
		t.Fatal("list entry was invalidated by an object delete")
	}

	g.InvalidateList(ctx)
	if _, ok := g.ReadThrough(ctx, listKey); ok {
		t.Fatal("list entry survived list invalidation")
	}
	if _, ok := g.ReadThrough(ctx, objOther); !ok {
		t.Fatal("object entry was invalidated by a list flush")
	}
}

func TestGateway_StoreFailureDegradesToMiss(t *testing.T) {
	ctx := context.Background()
	g := NewGateway(failingStore{}, "tasks", time.Minute)

	if _, ok := g.ReadThrough(ctx, "tasks_list_x"); ok {
		t.Fatal("failing store produced a hit")
	}
	// writes and invalidations must not panic or surface errors
	g.Write(ctx, "tasks_list_x", []byte("payload"))
	g.InvalidateObject(ctx, "1")
	g.InvalidateList(ctx)
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	current := time.Unix(1000, 0)
	store.now = func() time.Time { return current }

	if err := store.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k"); !ok {
		t.Fatal("entry missing before expiry")
	}

	current = current.Add(2 * time.Minute)
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatal("entry survived past its lifetime")
	}
	if store.Len() != 0 {
		t.Fatalf("expired entry still counted: %d", store.Len())
	}
}
