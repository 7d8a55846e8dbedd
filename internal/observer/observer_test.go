package observer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestListeners_NotifyInOrder(t *testing.T) {
	t.Parallel()

	var l Listeners[int]
	var got []string

	l.Subscribe(func(v int) { got = append(got, "a") })
	l.Subscribe(func(v int) { got = append(got, "b") })
	l.Notify(1)

	assert.Equal(t, []string{"a", "b"}, got)
}

func TestListeners_Unsubscribe(t *testing.T) {
	t.Parallel()

	var l Listeners[string]
	calls := 0
	unsubscribe := l.Subscribe(func(string) { calls++ })

	l.Notify("x")
	unsubscribe()
	unsubscribe()
	l.Notify("y")

	assert.Equal(t, 1, calls)
	assert.Zero(t, l.Len())
}

func TestListeners_UnsubscribeDuringNotify(t *testing.T) {
	t.Parallel()

	var l Listeners[int]
	var unsubscribe func()
	seen := 0
	unsubscribe = l.Subscribe(func(int) {
		seen++
		unsubscribe()
	})
	other := 0
	l.Subscribe(func(int) { other++ })

	l.Notify(1)
	l.Notify(2)

	assert.Equal(t, 1, seen)
	assert.Equal(t, 2, other)
}

func TestListeners_DeliverInTicketOrder(t *testing.T) {
	t.Parallel()

	var l Listeners[int]
	var mu sync.Mutex
	var got []int
	l.Subscribe(func(v int) {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
	})

	first, second := l.Ticket(), l.Ticket()

	done := make(chan struct{})
	go func() {
		l.Deliver(second, 2)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("later ticket delivered before an earlier one")
	case <-time.After(20 * time.Millisecond):
	}

	l.Deliver(first, 1)
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2}, got)
}

func TestListeners_DeliverWithoutListeners(t *testing.T) {
	t.Parallel()

	var l Listeners[string]
	for i := 0; i < 3; i++ {
		l.Deliver(l.Ticket(), "x")
	}
	assert.Zero(t, l.Len())
}
