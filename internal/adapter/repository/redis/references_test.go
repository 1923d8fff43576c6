package redis

import (
	"context"
	"sync"
	"testing"
)

func TestReferenceGeneratorNext(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	gen := NewReferenceGenerator(client, "")
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := gen.Next(ctx)
		if err != nil {
			t.Fatalf("next failed: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}

	if v, _ := mr.Get(DefaultReferenceKey); v != "3" {
		t.Fatalf("expected counter 3 in redis, got %q", v)
	}
}

func TestReferenceGeneratorConcurrentUnique(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	gen := NewReferenceGenerator(client, "test:refs")
	ctx := context.Background()

	var (
		mu   sync.Mutex
		seen = make(map[int64]bool)
		wg   sync.WaitGroup
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ref, err := gen.Next(ctx)
			if err != nil {
				t.Errorf("next failed: %v", err)
				return
			}
			mu.Lock()
			seen[ref] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != 20 {
		t.Fatalf("expected 20 unique references, got %d", len(seen))
	}
}

func TestReferenceGeneratorFloor(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	gen := NewReferenceGenerator(client, "")
	ctx := context.Background()

	if err := gen.Floor(ctx, 100); err != nil {
		t.Fatalf("floor failed: %v", err)
	}
	ref, err := gen.Next(ctx)
	if err != nil || ref != 101 {
		t.Fatalf("expected 101, got %d (%v)", ref, err)
	}

	// A lower floor leaves the counter alone.
	if err := gen.Floor(ctx, 5); err != nil {
		t.Fatalf("floor failed: %v", err)
	}
	ref, _ = gen.Next(ctx)
	if ref != 102 {
		t.Fatalf("expected 102, got %d", ref)
	}
}

func TestReferenceGeneratorServerDown(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()
	mr.Close()

	if _, err := NewReferenceGenerator(client, "").Next(context.Background()); err == nil {
		t.Fatalf("expected error when redis is down")
	}
}
