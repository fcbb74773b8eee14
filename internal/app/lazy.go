package app

import "sync"

// lazy builds a component on first use and keeps the result, error included, so a
// failed component fails the same way on every call.
type lazy[T any] struct {
	mu    sync.Mutex
	built bool
	value T
	err   error
}

func (l *lazy[T]) get(build func() (T, error)) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.built {
		l.value, l.err = build()
		l.built = true
	}
	return l.value, l.err
}

// must is get for builders that cannot fail.
func (l *lazy[T]) must(build func() T) T {
	v, _ := l.get(func() (T, error) { return build(), nil })
	return v
}

// peek returns the component only if it was built successfully. It never builds.
func (l *lazy[T]) peek() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.built || l.err != nil {
		var zero T
		return zero, false
	}
	return l.value, true
}
