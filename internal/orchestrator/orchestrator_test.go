package orchestrator

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/valpere/cliptran/internal"
	"github.com/valpere/cliptran/internal/clipboard"
	"github.com/valpere/cliptran/internal/clipwatch"
	"github.com/valpere/cliptran/internal/detector"
	"github.com/valpere/cliptran/internal/mode"
	"github.com/valpere/cliptran/internal/pricing"
	"github.com/valpere/cliptran/internal/terminology"
	"github.com/valpere/cliptran/internal/translator"
)

type mockProvider struct {
	nameVal      string
	credErr      error
	completeFunc func(ctx context.Context, req translator.ChatRequest) (*translator.Completion, error)
	callCount    atomic.Int32

	mu   sync.Mutex
	reqs []translator.ChatRequest
}

func (m *mockProvider) Name() string { return m.nameVal }

func (m *mockProvider) CheckCredentials() error { return m.credErr }

func (m *mockProvider) Complete(ctx context.Context, req translator.ChatRequest) (*translator.Completion, error) {
	m.callCount.Add(1)
	m.mu.Lock()
	m.reqs = append(m.reqs, req)
	m.mu.Unlock()
	if m.completeFunc != nil {
		return m.completeFunc(ctx, req)
	}
	return &translator.Completion{
		Text:     "你好",
		Usage:    pricing.Usage{InputTokens: 1000, OutputTokens: 500},
		HasUsage: true,
	}, nil
}

func (m *mockProvider) lastUserMessage() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.reqs) == 0 {
		return ""
	}
	msgs := m.reqs[len(m.reqs)-1].Messages
	return msgs[len(msgs)-1].Content
}

type memoryHistory struct {
	mu   sync.Mutex
	recs []internal.TranslationRecord
}

func (h *memoryHistory) SaveRecord(_ context.Context, rec internal.TranslationRecord) error {
	h.mu.Lock()
	h.recs = append(h.recs, rec)
	h.mu.Unlock()
	return nil
}

func testTable(t *testing.T) *pricing.Table {
	t.Helper()
	table, err := pricing.NewTable([]pricing.ModelProfile{
		{ID: "test-model", ProviderID: pricing.ProviderOpenAI, InputPricePerMillionTokens: 5, OutputPricePerMillionTokens: 15},
		{ID: "other-model", ProviderID: pricing.ProviderDeepSeek, InputPricePerMillionTokens: 1, OutputPricePerMillionTokens: 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func newTestEngine(t *testing.T, p *mockProvider, mutate func(*Options)) *Engine {
	t.Helper()
	opts := Options{
		Providers: translator.Registry{
			pricing.ProviderOpenAI:   p,
			pricing.ProviderDeepSeek: p,
		},
		Models:      testTable(t),
		Terminology: terminology.NewStore(nil),
		Settings: Settings{
			Source:  detector.Auto,
			Target:  detector.Chinese,
			Mode:    mode.Auto,
			ModelID: "test-model",
		},
	}
	if mutate != nil {
		mutate(&opts)
	}
	e, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(e.Close)
	return e
}

func drain(ch <-chan Event) []Event {
	var out []Event
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		default:
			return out
		}
	}
}

func kinds(events []Event) []Kind {
	out := make([]Kind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestTranslateOne_Success(t *testing.T) {
	p := &mockProvider{nameVal: "mock"}
	hist := &memoryHistory{}
	e := newTestEngine(t, p, func(o *Options) { o.History = hist })
	events, cancel := e.Subscribe(0)
	defer cancel()

	res, err := e.TranslateOne(context.Background(), "こんにちは")
	if err != nil {
		t.Fatal(err)
	}

	if res.Status != StatusTranslated || res.Translation != "你好" {
		t.Fatalf("result = %+v", res)
	}
	if res.Detected != detector.Japanese {
		t.Errorf("Detected = %s, want ja", res.Detected)
	}
	wantCost := 1000.0/1e6*5 + 500.0/1e6*15
	if math.Abs(res.Cost-wantCost) > 1e-12 {
		t.Errorf("Cost = %v, want %v", res.Cost, wantCost)
	}

	snap := e.Ledger()
	if snap.TotalInputTokens != 1000 || snap.TotalOutputTokens != 500 {
		t.Errorf("ledger = %+v", snap)
	}

	got := kinds(drain(events))
	want := []Kind{KindCost, KindTimestamp, KindOriginal, KindTranslation}
	if strings.Join(kindStrings(got), ",") != strings.Join(kindStrings(want), ",") {
		t.Errorf("events = %v, want %v", got, want)
	}

	if len(e.Results()) != 1 {
		t.Errorf("results = %d, want 1", len(e.Results()))
	}
	if len(hist.recs) != 1 || hist.recs[0].Status != "translated" || hist.recs[0].InputTokens != 1000 {
		t.Errorf("history = %+v", hist.recs)
	}
}

func kindStrings(ks []Kind) []string {
	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = string(k)
	}
	return out
}

func TestTranslateOne_MissingUsageLeavesLedgerUntouched(t *testing.T) {
	p := &mockProvider{
		nameVal: "mock",
		completeFunc: func(context.Context, translator.ChatRequest) (*translator.Completion, error) {
			return &translator.Completion{Text: "你好"}, nil
		},
	}
	e := newTestEngine(t, p, nil)

	res, err := e.TranslateOne(context.Background(), "こんにちは")
	if err != nil {
		t.Fatal(err)
	}
	if res.Cost != 0 || e.Ledger() != (pricing.LedgerSnapshot{}) {
		t.Errorf("cost = %v, ledger = %+v", res.Cost, e.Ledger())
	}
}

func TestTranslateOne_SkippedByMode(t *testing.T) {
	p := &mockProvider{nameVal: "mock"}
	e := newTestEngine(t, p, func(o *Options) {
		o.Settings.Mode = mode.JapaneseOnly
		o.Settings.Target = detector.English
	})
	events, cancel := e.Subscribe(0)
	defer cancel()

	res, err := e.TranslateOne(context.Background(), "今天天气很好")
	if err != nil {
		t.Fatal(err)
	}

	if res.Status != StatusSkipped || res.Detected != detector.Chinese {
		t.Errorf("result = %+v", res)
	}
	if p.callCount.Load() != 0 {
		t.Errorf("provider called %d times", p.callCount.Load())
	}
	evs := drain(events)
	if len(evs) != 1 || evs[0].Kind != KindSkipped {
		t.Errorf("events = %v, want one skipped", kinds(evs))
	}
}

func TestTranslateOne_ConfigurationError(t *testing.T) {
	p := &mockProvider{
		nameVal: "mock",
		credErr: &translator.ConfigurationError{Provider: "openai", Reason: "API key is not set"},
	}
	e := newTestEngine(t, p, nil)

	_, err := e.TranslateOne(context.Background(), "こんにちは")

	var cfgErr *translator.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want ConfigurationError", err)
	}
	if p.callCount.Load() != 0 {
		t.Error("provider was called")
	}
	if len(e.Results()) != 0 {
		t.Error("configuration error produced a result")
	}

	if _, err := e.TranslateBatch(context.Background(), []string{"a", "b"}); !errors.As(err, &cfgErr) {
		t.Errorf("batch err = %v, want ConfigurationError", err)
	}
}

func TestTranslateOne_EmptyText(t *testing.T) {
	e := newTestEngine(t, &mockProvider{}, nil)
	if _, err := e.TranslateOne(context.Background(), "  \n "); !errors.Is(err, ErrEmptyText) {
		t.Errorf("err = %v, want ErrEmptyText", err)
	}
}

func TestTranslateOne_ProviderFailure(t *testing.T) {
	p := &mockProvider{
		nameVal: "mock",
		completeFunc: func(context.Context, translator.ChatRequest) (*translator.Completion, error) {
			return nil, &translator.ProviderError{Provider: "openai", StatusCode: 503, Err: errors.New("unavailable")}
		},
	}
	e := newTestEngine(t, p, nil)
	events, cancel := e.Subscribe(0)
	defer cancel()

	res, err := e.TranslateOne(context.Background(), "こんにちは")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusFailed || !strings.Contains(res.Error, "503") {
		t.Errorf("result = %+v", res)
	}
	evs := drain(events)
	if len(evs) != 1 || evs[0].Kind != KindFailure {
		t.Errorf("events = %v", kinds(evs))
	}
}

func TestTranslateOne_PanicBecomesFailure(t *testing.T) {
	p := &mockProvider{
		nameVal: "mock",
		completeFunc: func(context.Context, translator.ChatRequest) (*translator.Completion, error) {
			panic("decoder exploded")
		},
	}
	e := newTestEngine(t, p, nil)

	res, err := e.TranslateOne(context.Background(), "こんにちは")
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusFailed || !strings.Contains(res.Error, "decoder exploded") {
		t.Errorf("result = %+v", res)
	}
	if len(e.Results()) != 1 {
		t.Errorf("results = %d, want 1", len(e.Results()))
	}
}

func TestTranslateOne_AppliesTerminology(t *testing.T) {
	p := &mockProvider{nameVal: "mock"}
	dict, err := terminology.NewDictionary(terminology.Entry{Source: "アーバンも", Target: "Avamo"})
	if err != nil {
		t.Fatal(err)
	}
	e := newTestEngine(t, p, func(o *Options) { o.Terminology = terminology.NewStore(dict) })

	res, err := e.TranslateOne(context.Background(), "アーバンも広告")
	if err != nil {
		t.Fatal(err)
	}

	if res.Preprocessed != "Avamo広告" {
		t.Errorf("Preprocessed = %q", res.Preprocessed)
	}
	if len(res.Notes) != 1 || res.Notes[0].String() != "アーバンも → Avamo" {
		t.Errorf("Notes = %v", res.Notes)
	}
	if !strings.Contains(p.lastUserMessage(), "Avamo広告") {
		t.Errorf("provider did not receive preprocessed text: %q", p.lastUserMessage())
	}
}

func TestTranslateOne_ModelPinnedForRequest(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	p := &mockProvider{
		nameVal: "mock",
		completeFunc: func(_ context.Context, req translator.ChatRequest) (*translator.Completion, error) {
			close(started)
			<-release
			return &translator.Completion{
				Text:     "你好",
				Usage:    pricing.Usage{InputTokens: 1_000_000},
				HasUsage: true,
			}, nil
		},
	}
	e := newTestEngine(t, p, nil)

	done := make(chan *Result)
	go func() {
		res, _ := e.TranslateOne(context.Background(), "こんにちは")
		done <- res
	}()

	<-started
	if err := e.SelectModel("other-model"); err != nil {
		t.Fatal(err)
	}
	close(release)
	res := <-done

	if res.Model != "test-model" {
		t.Errorf("Model = %s, want test-model", res.Model)
	}
	if math.Abs(res.Cost-5.0) > 1e-9 {
		t.Errorf("Cost = %v, want 5.00 from the pinned profile", res.Cost)
	}
	if e.Settings().ModelID != "other-model" {
		t.Errorf("selection not applied to later requests")
	}
}

func TestTranslateBatch_OneLineFails(t *testing.T) {
	p := &mockProvider{
		nameVal: "mock",
		completeFunc: func(_ context.Context, req translator.ChatRequest) (*translator.Completion, error) {
			user := req.Messages[len(req.Messages)-1].Content
			if strings.Contains(user, "\nb\n") {
				return nil, errors.New("connection reset")
			}
			return &translator.Completion{
				Text:     "ok",
				Usage:    pricing.Usage{InputTokens: 10, OutputTokens: 10},
				HasUsage: true,
			}, nil
		},
	}
	e := newTestEngine(t, p, func(o *Options) { o.Settings.Source = "en" })

	batch, err := e.TranslateBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}

	if len(batch.Entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(batch.Entries))
	}
	for i, want := range []string{"a", "b", "c"} {
		if batch.Entries[i].Original != want {
			t.Errorf("entry %d = %q, want %q", i, batch.Entries[i].Original, want)
		}
	}
	if batch.Entries[1].Status != StatusFailed {
		t.Errorf("entry 1 status = %s, want failed", batch.Entries[1].Status)
	}
	if batch.Entries[0].Status != StatusTranslated || batch.Entries[2].Status != StatusTranslated {
		t.Errorf("statuses = %s, %s", batch.Entries[0].Status, batch.Entries[2].Status)
	}
	if batch.TotalCost < 0 || batch.Failed() != 1 {
		t.Errorf("TotalCost = %v, Failed = %d", batch.TotalCost, batch.Failed())
	}
}

func TestTranslateBatch_Cancelled(t *testing.T) {
	p := &mockProvider{nameVal: "mock"}
	e := newTestEngine(t, p, func(o *Options) { o.BatchDelay = 1 << 40 })

	ctx, cancel := context.WithCancel(context.Background())
	p.completeFunc = func(context.Context, translator.ChatRequest) (*translator.Completion, error) {
		cancel()
		return &translator.Completion{Text: "你好"}, nil
	}

	batch, err := e.TranslateBatch(ctx, []string{"こんにちは\nおはよう\nこんばんは"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(batch.Entries) != 3 || batch.Failed() != 2 {
		t.Errorf("entries = %d, failed = %d", len(batch.Entries), batch.Failed())
	}
}

func TestResetLedger(t *testing.T) {
	e := newTestEngine(t, &mockProvider{nameVal: "mock"}, nil)
	for i := 0; i < 3; i++ {
		if _, err := e.TranslateOne(context.Background(), "こんにちは"); err != nil {
			t.Fatal(err)
		}
	}
	if e.Ledger().CumulativeCost == 0 {
		t.Fatal("ledger did not accumulate")
	}

	e.ResetLedger()

	snap := e.Ledger()
	if snap.TotalInputTokens != 0 || snap.TotalOutputTokens != 0 || snap.CumulativeCost != 0 {
		t.Errorf("ledger after reset = %+v", snap)
	}
}

func TestDisplayClear_MarksFirstEventOfRun(t *testing.T) {
	e := newTestEngine(t, &mockProvider{nameVal: "mock"}, func(o *Options) {
		o.Settings.Display = DisplayClear
	})
	events, cancel := e.Subscribe(0)
	defer cancel()

	for i := 0; i < 2; i++ {
		if _, err := e.TranslateOne(context.Background(), "こんにちは"); err != nil {
			t.Fatal(err)
		}
	}

	evs := drain(events)
	clears := 0
	for i, ev := range evs {
		if !ev.Clear {
			continue
		}
		clears++
		if i > 0 && evs[i-1].RunID == ev.RunID {
			t.Errorf("event %d carries Clear but is not first of its run", i)
		}
	}
	if clears != 2 {
		t.Errorf("clear events = %d, want 2", clears)
	}
	if len(e.Results()) != 2 {
		t.Errorf("result log truncated: %d entries", len(e.Results()))
	}
}

func TestMonitorTick_WriteBackMarksObserved(t *testing.T) {
	clip := clipboard.NewMemory("")
	p := &mockProvider{
		nameVal: "mock",
		completeFunc: func(context.Context, translator.ChatRequest) (*translator.Completion, error) {
			return &translator.Completion{Text: "早上好，各位"}, nil
		},
	}
	e := newTestEngine(t, p, func(o *Options) {
		o.Clipboard = clip
		o.Settings.AutoCopy = true
	})

	e.monitorTick(context.Background(), clipwatch.Event{Content: "おはようございます"})

	if w := clip.Writes(); len(w) != 1 || w[0] != "早上好，各位" {
		t.Fatalf("clipboard writes = %v", w)
	}
	if got := e.monitor.LastObserved(); got != "早上好，各位" {
		t.Errorf("LastObserved = %q, want the written translation", got)
	}
}

func TestMonitorTick_NoWriteBackWhenDisabled(t *testing.T) {
	clip := clipboard.NewMemory("")
	e := newTestEngine(t, &mockProvider{nameVal: "mock"}, func(o *Options) { o.Clipboard = clip })

	e.monitorTick(context.Background(), clipwatch.Event{Content: "おはようございます"})

	if len(clip.Writes()) != 0 {
		t.Errorf("clipboard written with auto-copy off")
	}
}

func TestStartMonitor(t *testing.T) {
	e := newTestEngine(t, &mockProvider{nameVal: "mock"}, nil)
	if err := e.StartMonitor(context.Background()); !errors.Is(err, ErrNoClipboard) {
		t.Errorf("err = %v, want ErrNoClipboard", err)
	}

	e = newTestEngine(t, &mockProvider{nameVal: "mock"}, func(o *Options) {
		o.Clipboard = clipboard.NewMemory("")
	})
	if err := e.StartMonitor(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := e.StartMonitor(context.Background()); err != nil {
		t.Errorf("second start: %v", err)
	}
	if !e.MonitorRunning() {
		t.Error("monitor not running")
	}
	e.StopMonitor()
	if e.MonitorRunning() {
		t.Error("monitor still running")
	}
}

func TestSettingsCommands(t *testing.T) {
	e := newTestEngine(t, &mockProvider{nameVal: "mock"}, nil)

	if err := e.SelectModel("nope"); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("SelectModel err = %v", err)
	}
	if err := e.SwapLanguages(); !errors.Is(err, ErrInvalidLanguage) {
		t.Errorf("swap with auto source err = %v", err)
	}
	if err := e.SetLanguages("ja", "fr"); !errors.Is(err, ErrInvalidLanguage) {
		t.Errorf("SetLanguages(fr) err = %v", err)
	}
	if err := e.SetLanguages("ja", "zh"); err != nil {
		t.Fatal(err)
	}
	if err := e.SwapLanguages(); err != nil {
		t.Fatal(err)
	}
	if s := e.Settings(); s.Source != "zh" || s.Target != detector.Japanese {
		t.Errorf("after swap: %s -> %s", s.Source, s.Target)
	}
	if err := e.SetMode("chinese_only"); err != nil {
		t.Fatal(err)
	}
	if err := e.SetDisplay("sideways"); err == nil {
		t.Error("expected display error")
	}
}

func TestImportPresetsKeepsExistingTerms(t *testing.T) {
	dict, _ := terminology.NewDictionary(terminology.Entry{Source: "チェック", Target: "检查"})
	e := newTestEngine(t, &mockProvider{nameVal: "mock"}, func(o *Options) {
		o.Terminology = terminology.NewStore(dict)
	})

	added := e.ImportPresets()
	if added != len(terminology.Presets)-1 {
		t.Errorf("added = %d, want %d", added, len(terminology.Presets)-1)
	}
	if got, _ := e.Terminology().Get("チェック"); got != "检查" {
		t.Errorf("existing term overwritten: %q", got)
	}
}

func TestBus_DropsWhenFull(t *testing.T) {
	b := NewBus(nil)
	ch, cancel := b.Subscribe(1)
	defer cancel()

	b.Publish(Event{Kind: KindTimestamp})
	b.Publish(Event{Kind: KindTimestamp})

	if b.Dropped() != 1 {
		t.Errorf("Dropped = %d, want 1", b.Dropped())
	}
	if len(drain(ch)) != 1 {
		t.Error("expected one buffered event")
	}

	cancel()
	cancel()
	b.Close()
}
