package imagecache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetchAndCacheCallsGeneratorOncePerKey(t *testing.T) {
	cache := New(8, time.Minute)
	calls := 0
	gen := func(context.Context, string) (string, error) {
		calls++
		return "https://img/1.png", nil
	}

	for i := 0; i < 3; i++ {
		imageURL, err := cache.FetchAndCache(context.Background(), "key-a", gen)
		if err != nil {
			t.Fatalf("FetchAndCache err: %v", err)
		}
		if imageURL != "https://img/1.png" {
			t.Fatalf("unexpected url %q", imageURL)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one generator call, got %d", calls)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected one live entry, got %d", cache.Len())
	}
}

func TestFetchAndCacheFailureIsNotSticky(t *testing.T) {
	cache := New(8, time.Minute)
	calls := 0
	gen := func(context.Context, string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("image api down")
		}
		return "https://img/2.png", nil
	}

	if _, err := cache.FetchAndCache(context.Background(), "key-b", gen); err == nil {
		t.Fatal("expected first fetch to fail")
	}
	if _, ok := cache.Get("key-b"); ok {
		t.Fatal("failure must not be cached")
	}

	imageURL, err := cache.FetchAndCache(context.Background(), "key-b", gen)
	if err != nil {
		t.Fatalf("retry err: %v", err)
	}
	if imageURL != "https://img/2.png" {
		t.Fatalf("unexpected url %q", imageURL)
	}
	if calls != 2 {
		t.Fatalf("expected retry to call the generator again, got %d calls", calls)
	}
}

func TestFetchAndCacheSharesInFlightCall(t *testing.T) {
	cache := New(8, time.Minute)
	var calls int32
	gate := make(chan struct{})
	gen := func(context.Context, string) (string, error) {
		atomic.AddInt32(&calls, 1)
		<-gate
		return "https://img/3.png", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			imageURL, err := cache.FetchAndCache(context.Background(), "key-c", gen)
			if err != nil {
				t.Errorf("FetchAndCache err: %v", err)
				return
			}
			results[i] = imageURL
		}(i)
	}

	// Let the callers pile up on the shared flight before releasing it.
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected one shared generator call, got %d", got)
	}
	for i, imageURL := range results {
		if imageURL != "https://img/3.png" {
			t.Fatalf("caller %d got %q", i, imageURL)
		}
	}
}

func TestNewFallsBackToDefaults(t *testing.T) {
	cache := New(0, 0)
	if _, err := cache.FetchAndCache(context.Background(), "key-d", func(context.Context, string) (string, error) {
		return "https://img/4.png", nil
	}); err != nil {
		t.Fatalf("FetchAndCache err: %v", err)
	}
	if imageURL, ok := cache.Get("key-d"); !ok || imageURL != "https://img/4.png" {
		t.Fatalf("expected cached entry, got %q ok=%v", imageURL, ok)
	}
}

func TestFetchAndCacheDoesNotCacheEmptyResult(t *testing.T) {
	cache := New(8, time.Minute)
	imageURL, err := cache.FetchAndCache(context.Background(), "key-e", func(context.Context, string) (string, error) {
		return "", nil
	})
	if err != nil {
		t.Fatalf("FetchAndCache err: %v", err)
	}
	if imageURL != "" {
		t.Fatalf("unexpected url %q", imageURL)
	}
	if _, ok := cache.Get("key-e"); ok {
		t.Fatal("empty result must not be cached")
	}
}
