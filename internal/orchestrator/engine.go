// Package orchestrator runs the translation pipeline: language detection, mode
// gating, terminology preprocessing, the provider call and cost accounting. It
// exposes a command set to front ends and reports back through an event
// stream and an append-only result log.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/valpere/cliptran/internal"
	"github.com/valpere/cliptran/internal/clipboard"
	"github.com/valpere/cliptran/internal/clipwatch"
	"github.com/valpere/cliptran/internal/detector"
	"github.com/valpere/cliptran/internal/log"
	"github.com/valpere/cliptran/internal/mode"
	"github.com/valpere/cliptran/internal/pricing"
	"github.com/valpere/cliptran/internal/terminology"
	"github.com/valpere/cliptran/internal/translator"
)

var (
	ErrUnknownModel    = errors.New("unknown model")
	ErrInvalidLanguage = errors.New("invalid language")
	ErrEmptyText       = errors.New("no text to translate")
	ErrNoClipboard     = errors.New("no clipboard available")
)

// DisplayPolicy tells front ends whether to keep earlier output.
type DisplayPolicy string

const (
	DisplayAppend DisplayPolicy = "append"
	DisplayClear  DisplayPolicy = "clear"
)

// ParseDisplay validates a display policy name.
func ParseDisplay(s string) (DisplayPolicy, error) {
	switch DisplayPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case DisplayAppend, "":
		return DisplayAppend, nil
	case DisplayClear:
		return DisplayClear, nil
	}
	return "", fmt.Errorf("unknown display policy %q", s)
}

// Settings are the user-adjustable knobs. Each run works on a copy taken when
// it starts, so changes never affect a request in flight.
type Settings struct {
	Source   string            `json:"source"`
	Target   detector.Language `json:"target"`
	Mode     mode.Mode         `json:"mode"`
	ModelID  string            `json:"model"`
	Quality  bool              `json:"quality"`
	AutoCopy bool              `json:"auto_copy"`
	Display  DisplayPolicy     `json:"display"`
}

// HistorySink receives every finished run.
type HistorySink interface {
	SaveRecord(ctx context.Context, rec internal.TranslationRecord) error
}

// OutputValidator checks that a translation is in the target language.
type OutputValidator interface {
	IsValid(text string, target detector.Language) (bool, error)
}

// Options configures an Engine. Providers, Models and Settings are required.
type Options struct {
	Providers      translator.Registry
	Models         *pricing.Table
	Ledger         *pricing.Ledger
	Terminology    *terminology.Store
	Clipboard      clipboard.Clipboard
	History        HistorySink
	Validator      OutputValidator
	Logger         log.Logger
	Settings       Settings
	RequestTimeout time.Duration
	BatchDelay     time.Duration
	PollInterval   time.Duration
	ErrorBackoff   time.Duration
}

// Engine owns the session state: settings, cost ledger, live terminology,
// result log and the clipboard monitor.
type Engine struct {
	providers      translator.Registry
	models         *pricing.Table
	ledger         *pricing.Ledger
	terms          *terminology.Store
	clip           clipboard.Clipboard
	history        HistorySink
	validator      OutputValidator
	logger         log.Logger
	bus            *Bus
	results        resultLog
	monitor        *clipwatch.Monitor
	requestTimeout time.Duration
	batchDelay     time.Duration

	mu       sync.RWMutex
	settings Settings
}

// New builds an engine. The clipboard monitor is only available when
// opts.Clipboard is set.
func New(opts Options) (*Engine, error) {
	if len(opts.Providers) == 0 {
		return nil, fmt.Errorf("at least one provider is required")
	}
	if opts.Models == nil {
		opts.Models = pricing.DefaultTable()
	}
	if opts.Ledger == nil {
		opts.Ledger = pricing.NewLedger()
	}
	if opts.Terminology == nil {
		opts.Terminology = terminology.NewStore(terminology.Default())
	}
	if opts.Logger == nil {
		opts.Logger = log.Nop{}
	}
	if opts.Settings.Mode == "" {
		opts.Settings.Mode = mode.Auto
	}
	if opts.Settings.Display == "" {
		opts.Settings.Display = DisplayAppend
	}
	if opts.Settings.ModelID == "" {
		opts.Settings.ModelID = pricing.DefaultModelID
	}
	if _, ok := opts.Models.Get(opts.Settings.ModelID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModel, opts.Settings.ModelID)
	}
	if err := validateLanguages(opts.Settings.Source, string(opts.Settings.Target)); err != nil {
		return nil, err
	}

	e := &Engine{
		providers:      opts.Providers,
		models:         opts.Models,
		ledger:         opts.Ledger,
		terms:          opts.Terminology,
		clip:           opts.Clipboard,
		history:        opts.History,
		validator:      opts.Validator,
		logger:         opts.Logger,
		bus:            NewBus(opts.Logger),
		requestTimeout: opts.RequestTimeout,
		batchDelay:     opts.BatchDelay,
		settings:       opts.Settings,
	}

	if opts.Clipboard != nil {
		m, err := clipwatch.New(clipwatch.Config{
			Clipboard:    opts.Clipboard,
			Filter:       clipwatch.DefaultFilter(),
			Languages:    e.languages,
			Handler:      e.monitorTick,
			PollInterval: opts.PollInterval,
			ErrorBackoff: opts.ErrorBackoff,
			Logger:       opts.Logger,
		})
		if err != nil {
			return nil, err
		}
		e.monitor = m
	}
	return e, nil
}

// Close stops the monitor and closes every event subscription.
func (e *Engine) Close() {
	e.StopMonitor()
	e.bus.Close()
}

// Subscribe returns a channel carrying every event published from now on.
func (e *Engine) Subscribe(buffer int) (<-chan Event, func()) {
	return e.bus.Subscribe(buffer)
}

// Results returns a copy of the session's result log.
func (e *Engine) Results() []Result {
	return e.results.list()
}

// Settings returns the current settings.
func (e *Engine) Settings() Settings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.settings
}

func (e *Engine) languages() (string, detector.Language) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.settings.Source, e.settings.Target
}

func (e *Engine) notice(kind Kind, format string, args ...any) {
	newRun(e.bus, false).emit(kind, format, args...)
}

// Ledger returns the session's cost totals.
func (e *Engine) Ledger() pricing.LedgerSnapshot {
	return e.ledger.Snapshot()
}

// ResetLedger zeroes the session's cost totals.
func (e *Engine) ResetLedger() {
	e.ledger.Reset()
	e.notice(KindTimestamp, "Cost statistics reset")
}

// Models lists the price table.
func (e *Engine) Models() []pricing.ModelProfile {
	return e.models.List()
}

// ActiveModel returns the profile new requests will use.
func (e *Engine) ActiveModel() pricing.ModelProfile {
	p, _ := e.models.Get(e.Settings().ModelID)
	return p
}

// SelectModel makes id the model for subsequent requests.
func (e *Engine) SelectModel(id string) error {
	p, ok := e.models.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownModel, id)
	}
	e.mu.Lock()
	e.settings.ModelID = p.ID
	e.mu.Unlock()
	e.notice(KindTimestamp, "Switched to model %s", p.DisplayName)
	return nil
}

// SetMode changes the translation mode.
func (e *Engine) SetMode(m mode.Mode) error {
	parsed, err := mode.Parse(string(m))
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.settings.Mode = parsed
	e.mu.Unlock()
	e.notice(KindTimestamp, "Translation mode: %s", parsed)
	return nil
}

// SetLanguages sets the source setting ("auto" or a language code) and the
// target language.
func (e *Engine) SetLanguages(source, target string) error {
	if err := validateLanguages(source, target); err != nil {
		return err
	}
	e.mu.Lock()
	e.settings.Source = source
	e.settings.Target = detector.Language(target)
	e.mu.Unlock()
	e.notice(KindTimestamp, "Languages: %s → %s", sourceName(source), detector.DisplayName(detector.Language(target)))
	return nil
}

// SwapLanguages exchanges source and target. It is refused while the source
// is detected automatically.
func (e *Engine) SwapLanguages() error {
	e.mu.Lock()
	s := e.settings
	if s.Source == detector.Auto || s.Source == "" {
		e.mu.Unlock()
		return fmt.Errorf("%w: cannot swap while the source language is auto", ErrInvalidLanguage)
	}
	e.settings.Source, e.settings.Target = string(s.Target), detector.Language(s.Source)
	e.mu.Unlock()
	e.notice(KindTimestamp, "Languages swapped: %s → %s",
		detector.DisplayName(s.Target), detector.DisplayName(detector.Language(s.Source)))
	return nil
}

// SetQuality toggles the quality-enhanced prompt.
func (e *Engine) SetQuality(on bool) {
	e.mu.Lock()
	e.settings.Quality = on
	e.mu.Unlock()
}

// SetAutoCopy toggles writing monitored translations back to the clipboard.
func (e *Engine) SetAutoCopy(on bool) {
	e.mu.Lock()
	e.settings.AutoCopy = on
	e.mu.Unlock()
}

// SetDisplay sets the display policy announced on subsequent runs.
func (e *Engine) SetDisplay(p DisplayPolicy) error {
	parsed, err := ParseDisplay(string(p))
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.settings.Display = parsed
	e.mu.Unlock()
	return nil
}

// Terminology returns an editable copy of the live dictionary.
func (e *Engine) Terminology() *terminology.Dictionary {
	return e.terms.Snapshot()
}

// UpdateTerminology replaces the live dictionary in one step.
func (e *Engine) UpdateTerminology(d *terminology.Dictionary) {
	e.terms.Replace(d)
	e.notice(KindTimestamp, "Terminology dictionary updated: %d terms", d.Len())
}

// ImportPresets merges the preset terms without overwriting existing ones.
func (e *Engine) ImportPresets() int {
	added := e.terms.ImportPresets()
	e.notice(KindTimestamp, "Imported %d preset terms", added)
	return added
}

func validateLanguages(source, target string) error {
	if !detector.IsSupported(target) {
		return fmt.Errorf("%w: unsupported target %q", ErrInvalidLanguage, target)
	}
	if source != detector.Auto && source != "" && !detector.IsSupported(source) {
		return fmt.Errorf("%w: unsupported source %q", ErrInvalidLanguage, source)
	}
	if source == target {
		return fmt.Errorf("%w: source and target are both %q", ErrInvalidLanguage, target)
	}
	return nil
}

func sourceName(source string) string {
	if source == detector.Auto || source == "" {
		return "auto-detect"
	}
	return detector.DisplayName(detector.Language(source))
}
