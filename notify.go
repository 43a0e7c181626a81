package chatclient

import (
	"sync"
)

// event is one queued notification: a message or an error record.
type event struct {
	message string
	err     *Error
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// notifier delivers events to subscribers on its own goroutine, in the order
// they were pushed. Pushing never blocks on a subscriber.
type notifier struct {
	logger Logger

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []event
	closed bool

	subMu     sync.RWMutex
	nextID    int
	onMessage []subscriber[string]
	onError   []subscriber[*Error]

	closeOnce sync.Once
	stopped   chan struct{}
}

func newNotifier(logger Logger) *notifier {
	n := &notifier{logger: logger, stopped: make(chan struct{})}
	n.cond = sync.NewCond(&n.mu)
	go n.run()
	return n
}

func (n *notifier) subscribeMessage(fn func(string)) func() {
	n.subMu.Lock()
	defer n.subMu.Unlock()

	n.nextID++
	id := n.nextID
	n.onMessage = append(n.onMessage, subscriber[string]{id: id, fn: fn})

	return func() {
		n.subMu.Lock()
		defer n.subMu.Unlock()
		n.onMessage = remove(n.onMessage, id)
	}
}

func (n *notifier) subscribeError(fn func(*Error)) func() {
	n.subMu.Lock()
	defer n.subMu.Unlock()

	n.nextID++
	id := n.nextID
	n.onError = append(n.onError, subscriber[*Error]{id: id, fn: fn})

	return func() {
		n.subMu.Lock()
		defer n.subMu.Unlock()
		n.onError = remove(n.onError, id)
	}
}

func remove[T any](subs []subscriber[T], id int) []subscriber[T] {
	out := make([]subscriber[T], 0, len(subs))
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}

// push queues ev. Events pushed after close are dropped.
func (n *notifier) push(ev event) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		n.logger.Debug("notification dropped after close")
		return
	}
	n.queue = append(n.queue, ev)
	n.cond.Signal()
}

// close delivers what is queued, then stops the dispatcher.
func (n *notifier) close() {
	n.closeOnce.Do(func() {
		n.mu.Lock()
		n.closed = true
		n.cond.Broadcast()
		n.mu.Unlock()
	})
	<-n.stopped
}

func (n *notifier) run() {
	defer close(n.stopped)

	for {
		batch := n.take()
		if len(batch) == 0 {
			return
		}
		for _, ev := range batch {
			n.deliver(ev)
		}
	}
}

// take waits for queued events. An empty batch means the notifier is closed
// and drained.
func (n *notifier) take() []event {
	n.mu.Lock()
	defer n.mu.Unlock()

	for len(n.queue) == 0 && !n.closed {
		n.cond.Wait()
	}

	batch := n.queue
	n.queue = nil
	return batch
}

func (n *notifier) deliver(ev event) {
	n.subMu.RLock()
	messageSubs, errorSubs := n.onMessage, n.onError
	n.subMu.RUnlock()

	if ev.err != nil {
		for _, s := range errorSubs {
			n.call(func() { s.fn(ev.err) })
		}
		return
	}

	for _, s := range messageSubs {
		n.call(func() { s.fn(ev.message) })
	}
}

func (n *notifier) call(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("subscriber panic", "panic", r)
		}
	}()
	fn()
}
