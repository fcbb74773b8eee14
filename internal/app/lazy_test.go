package app

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestLazy_BuildsOnce(t *testing.T) {
	var l lazy[int]
	var calls atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := l.get(func() (int, error) {
				calls.Add(1)
				return 42, nil
			})
			if err != nil || v != 42 {
				t.Errorf("got (%d, %v)", v, err)
			}
		}()
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("expected one build, got %d", calls.Load())
	}
}

func TestLazy_RemembersError(t *testing.T) {
	var l lazy[string]
	boom := errors.New("boom")

	if _, err := l.get(func() (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	_, err := l.get(func() (string, error) { return "second", nil })
	if !errors.Is(err, boom) {
		t.Errorf("expected the first error to stick, got %v", err)
	}
	if _, ok := l.peek(); ok {
		t.Error("a failed component must not be visible to peek")
	}
}

func TestLazy_PeekNeverBuilds(t *testing.T) {
	var l lazy[*int]

	if _, ok := l.peek(); ok {
		t.Fatal("expected nothing before the first get")
	}

	n := 7
	l.must(func() *int { return &n })

	got, ok := l.peek()
	if !ok || got != &n {
		t.Errorf("expected the built value, got (%v, %v)", got, ok)
	}
}
