// Package observer keeps ordered listener lists for store change notifications.
package observer

import "sync"

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Listeners is safe for concurrent use. The zero value is ready.
type Listeners[T any] struct {
	mu     sync.Mutex
	next   int
	subs   []subscriber[T]
	issued uint64

	turnMu sync.Mutex
	turn   *sync.Cond
	served uint64
}

// Subscribe registers fn and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (l *Listeners[T]) Subscribe(fn func(T)) func() {
	l.mu.Lock()
	l.next++
	id := l.next
	l.subs = append(l.subs, subscriber[T]{id: id, fn: fn})
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { l.remove(id) })
	}
}

func (l *Listeners[T]) remove(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, s := range l.subs {
		if s.id == id {
			l.subs = append(l.subs[:i:i], l.subs[i+1:]...)
			return
		}
	}
}

// Notify calls every listener in subscription order. Listeners may
// unsubscribe from inside the callback.
func (l *Listeners[T]) Notify(v T) {
	l.mu.Lock()
	subs := make([]subscriber[T], len(l.subs))
	copy(subs, l.subs)
	l.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// Ticket reserves the next delivery slot. Take it under the lock that orders
// the store's mutations and hand it to Deliver once that lock is released.
// Every ticket must be delivered.
func (l *Listeners[T]) Ticket() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	t := l.issued
	l.issued++
	return t
}

// Deliver notifies listeners with v after every earlier ticket has been
// delivered. A listener that mutates the same store deadlocks, since its
// own delivery waits for the one in progress.
func (l *Listeners[T]) Deliver(ticket uint64, v T) {
	l.turnMu.Lock()
	if l.turn == nil {
		l.turn = sync.NewCond(&l.turnMu)
	}
	for l.served != ticket {
		l.turn.Wait()
	}
	l.turnMu.Unlock()

	defer func() {
		l.turnMu.Lock()
		l.served++
		l.turn.Broadcast()
		l.turnMu.Unlock()
	}()
	l.Notify(v)
}

func (l *Listeners[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}
