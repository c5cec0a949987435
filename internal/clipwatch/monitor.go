// Package clipwatch polls the clipboard for external changes and hands the
// ones worth translating to a handler.
package clipwatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/valpere/cliptran/internal/clipboard"
	"github.com/valpere/cliptran/internal/detector"
	"github.com/valpere/cliptran/internal/log"
)

const (
	DefaultPollInterval = time.Second
	DefaultErrorBackoff = 2 * time.Second
)

// ErrRunning is returned by Start when the monitor is already armed.
var ErrRunning = errors.New("clipboard monitor already running")

// Event is one accepted clipboard change.
type Event struct {
	Content    string
	ObservedAt time.Time
}

// Handler processes an accepted event. It runs on the polling goroutine and
// the next poll waits for it to return.
type Handler func(ctx context.Context, ev Event)

// LanguageSettings returns the current source setting and target language.
type LanguageSettings func() (source string, target detector.Language)

// Config holds the monitor's collaborators and timing.
type Config struct {
	Clipboard    clipboard.Clipboard
	Filter       Filter
	Languages    LanguageSettings
	Handler      Handler
	PollInterval time.Duration
	ErrorBackoff time.Duration
	Logger       log.Logger
}

// Monitor is a single cancellable polling loop. Its last-observed value
// survives Stop/Start cycles.
type Monitor struct {
	clip      clipboard.Clipboard
	filter    Filter
	languages LanguageSettings
	handler   Handler
	interval  time.Duration
	backoff   time.Duration
	logger    log.Logger

	mu     sync.Mutex
	last   string
	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a monitor. Zero durations take the defaults.
func New(cfg Config) (*Monitor, error) {
	if cfg.Clipboard == nil {
		return nil, fmt.Errorf("clipboard is required")
	}
	if cfg.Handler == nil {
		return nil, fmt.Errorf("handler is required")
	}
	if cfg.Languages == nil {
		return nil, fmt.Errorf("language settings are required")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = DefaultErrorBackoff
	}
	if cfg.Filter.MinLength == 0 && cfg.Filter.Prefixes == nil {
		cfg.Filter = DefaultFilter()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Nop{}
	}
	return &Monitor{
		clip:      cfg.Clipboard,
		filter:    cfg.Filter,
		languages: cfg.Languages,
		handler:   cfg.Handler,
		interval:  cfg.PollInterval,
		backoff:   cfg.ErrorBackoff,
		logger:    cfg.Logger,
	}, nil
}

// Start arms the polling loop. It returns ErrRunning, and changes nothing, when
// a loop is already active.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return ErrRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done
	go m.run(ctx, done)
	m.logger.Info("clipboard monitor started (interval %s)", m.interval)
	return nil
}

// Stop disarms the loop and waits for it to exit. A tick already running
// finishes first. Stop on an idle monitor is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	m.logger.Info("clipboard monitor stopped")
}

// Running reports whether the loop is armed.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

// MarkObserved records text as already seen, so the next poll does not treat
// it as an external change. Call it after writing to the clipboard.
func (m *Monitor) MarkObserved(text string) {
	m.mu.Lock()
	m.last = text
	m.mu.Unlock()
}

// LastObserved returns the last clipboard value the monitor has seen.
func (m *Monitor) LastObserved() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

func (m *Monitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		if ctx.Err() != nil {
			return
		}
		wait := m.interval
		if err := m.poll(ctx); err != nil {
			m.logger.Warn("clipboard poll failed: %v (retrying in %s)", err, m.backoff)
			wait = m.backoff
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// poll performs one tick: read, dedup against the last value, filter, and hand
// off. The handler runs detached from ctx so Stop never interrupts a
// translation in flight.
func (m *Monitor) poll(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during clipboard tick: %v", r)
		}
	}()

	content, err := m.clip.Read()
	if err != nil {
		return err
	}

	m.mu.Lock()
	if content == m.last {
		m.mu.Unlock()
		return nil
	}
	m.last = content
	m.mu.Unlock()

	source, target := m.languages()
	if reason := m.filter.Check(content, source, target); reason != Accepted {
		m.logger.Debug("clipboard change ignored: %s", reason)
		return nil
	}

	m.handler(context.WithoutCancel(ctx), Event{Content: content, ObservedAt: time.Now()})
	return nil
}
