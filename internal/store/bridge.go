package store

import "sync"

type subscriber struct {
	fn func()
}

// Subscribe registers listener to run after every commit, in registration
// order. Listeners run synchronously inside the commit and must not call
// actions from the same goroutine. The returned cancel is idempotent.
func (s *Store) Subscribe(listener func()) (cancel func()) {
	sub := &subscriber{fn: listener}

	s.subsMu.Lock()
	s.subs = append(s.subs[:len(s.subs):len(s.subs)], sub)
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			defer s.subsMu.Unlock()
			for i, cur := range s.subs {
				if cur == sub {
					next := make([]*subscriber, 0, len(s.subs)-1)
					next = append(next, s.subs[:i]...)
					s.subs = append(next, s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) notify() {
	s.subsMu.Lock()
	subs := s.subs
	s.subsMu.Unlock()

	for _, sub := range subs {
		sub.fn()
	}
}

// View is what selectors see: the snapshot plus the store for actions.
type View struct {
	State
	Actions *Store
}

func (s *Store) View() View {
	return View{State: s.State(), Actions: s}
}

// Binding keeps the last value a selector produced.
type Binding[T any] struct {
	mu     sync.Mutex
	value  T
	cancel func()
}

// Value returns the latest selected value.
func (b *Binding[T]) Value() T {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value
}

// Close stops the binding from receiving notifications.
func (b *Binding[T]) Close() {
	b.cancel()
}

// Select binds selector to s. After every commit the selector is re-run and,
// when the result differs (==) from the remembered one, the new value is
// stored and onChange is called with it. onChange may be nil.
func Select[T comparable](s *Store, selector func(View) T, onChange func(T)) *Binding[T] {
	return SelectFunc(s, selector, func(a, b T) bool { return a == b }, onChange)
}

// SelectFunc is Select with a caller-supplied equality. The baseline is taken
// and the listener registered with no commit in between, so it must not be
// called from a listener.
func SelectFunc[T any](s *Store, selector func(View) T, equal func(a, b T) bool, onChange func(T)) *Binding[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := &Binding[T]{value: selector(s.View())}
	b.cancel = s.Subscribe(func() {
		next := selector(s.View())

		b.mu.Lock()
		if equal(b.value, next) {
			b.mu.Unlock()
			return
		}
		b.value = next
		b.mu.Unlock()

		if onChange != nil {
			onChange(next)
		}
	})
	return b
}

// SameSlice reports whether a and b are the same slice: same backing array
// start and same length. Commits replace every collection they touch, so an
// untouched collection compares equal here.
func SameSlice[E any](a, b []E) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return (a == nil) == (b == nil)
	}
	return &a[0] == &b[0]
}

// Memo wraps derive so it only recomputes when same reports a new input.
// The returned function is safe for concurrent use.
func Memo[In, Out any](same func(a, b In) bool, derive func(In) Out) func(In) Out {
	var (
		mu     sync.Mutex
		primed bool
		lastIn In
		last   Out
	)
	return func(in In) Out {
		mu.Lock()
		defer mu.Unlock()
		if primed && same(lastIn, in) {
			return last
		}
		lastIn, last, primed = in, derive(in), true
		return last
	}
}
