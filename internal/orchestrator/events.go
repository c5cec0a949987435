package orchestrator

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/valpere/cliptran/internal/log"
)

// Kind tags an entry of the event stream.
type Kind string

const (
	KindOriginal        Kind = "original"
	KindTranslation     Kind = "translation"
	KindTimestamp       Kind = "timestamp"
	KindCost            Kind = "cost"
	KindSkipped         Kind = "skipped"
	KindClipboardNotice Kind = "clipboard-notice"
	KindFailure         Kind = "failure"
)

// Event is one rendered line for a front end. Clear asks the front end to
// drop what it shows before rendering this event.
type Event struct {
	ID    string    `json:"id"`
	RunID string    `json:"run_id,omitempty"`
	Kind  Kind      `json:"kind"`
	Text  string    `json:"text"`
	Clear bool      `json:"clear,omitempty"`
	At    time.Time `json:"at"`
}

// DefaultSubscriberBuffer is the channel capacity given to each subscriber.
const DefaultSubscriberBuffer = 256

// Bus fans events out to subscribers over buffered channels. Publish never
// blocks: when a subscriber's buffer is full the event is dropped for that
// subscriber only.
type Bus struct {
	mu      sync.Mutex
	subs    map[int]chan Event
	nextID  int
	closed  bool
	dropped atomic.Int64
	logger  log.Logger
}

// NewBus creates an empty bus.
func NewBus(logger log.Logger) *Bus {
	if logger == nil {
		logger = log.Nop{}
	}
	return &Bus{subs: make(map[int]chan Event), logger: logger}
}

// Subscribe registers a consumer. The returned function unsubscribes and
// closes the channel.
func (b *Bus) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

// Publish delivers ev to every subscriber.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.dropped.Add(1)
			b.logger.Warn("event subscriber %d is full, dropping %s event", id, ev.Kind)
		}
	}
}

// Dropped returns how many deliveries were skipped because of full buffers.
func (b *Bus) Dropped() int64 {
	return b.dropped.Load()
}

// Close closes every subscriber channel. Later publishes are discarded.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}

// run groups the events of one pipeline invocation. With the clear display
// policy the first event it emits carries Clear.
type run struct {
	id      string
	bus     *Bus
	mu      sync.Mutex
	pending bool
}

func newRun(bus *Bus, clearFirst bool) *run {
	return &run{id: uuid.NewString(), bus: bus, pending: clearFirst}
}

func (r *run) emit(kind Kind, format string, args ...any) {
	r.mu.Lock()
	wipe := r.pending
	r.pending = false
	r.mu.Unlock()

	r.bus.Publish(Event{
		ID:    uuid.NewString(),
		RunID: r.id,
		Kind:  kind,
		Text:  fmt.Sprintf(format, args...),
		Clear: wipe,
		At:    time.Now(),
	})
}
