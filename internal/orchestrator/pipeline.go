package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/valpere/cliptran/internal/detector"
	"github.com/valpere/cliptran/internal/mode"
	"github.com/valpere/cliptran/internal/pricing"
	"github.com/valpere/cliptran/internal/terminology"
	"github.com/valpere/cliptran/internal/translator"
)

const historyTimeout = 5 * time.Second

// TranslateOne runs the full pipeline on text. Configuration problems are
// returned as errors before anything is sent. Provider failures and internal
// faults come back as a Result with StatusFailed.
func (e *Engine) TranslateOne(ctx context.Context, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	s := e.Settings()
	if _, _, err := e.resolve(s); err != nil {
		return nil, err
	}
	r := newRun(e.bus, s.Display == DisplayClear)
	res := e.translate(ctx, r, text, s)
	return &res, nil
}

// TranslateClipboard reads the clipboard once and translates its content.
func (e *Engine) TranslateClipboard(ctx context.Context) (*Result, error) {
	if e.clip == nil {
		return nil, ErrNoClipboard
	}
	text, err := e.clip.Read()
	if err != nil {
		return nil, err
	}
	return e.TranslateOne(ctx, text)
}

// CopyToClipboard writes text to the clipboard and records it as observed so
// the monitor does not pick it up as a new change.
func (e *Engine) CopyToClipboard(text string) error {
	if e.clip == nil {
		return ErrNoClipboard
	}
	if err := e.clip.Write(text); err != nil {
		return err
	}
	if e.monitor != nil {
		e.monitor.MarkObserved(text)
	}
	return nil
}

// TranslateBatch translates every non-blank line of lines in order, pausing
// between provider calls. A failing line becomes a failed entry and the batch
// goes on. If ctx is cancelled the remaining lines are marked failed and
// ctx's error is returned along with the partial batch.
func (e *Engine) TranslateBatch(ctx context.Context, lines []string) (*BatchResult, error) {
	items := SplitLines(lines...)
	if len(items) == 0 {
		return nil, ErrEmptyText
	}
	s := e.Settings()
	if _, _, err := e.resolve(s); err != nil {
		return nil, err
	}

	r := newRun(e.bus, s.Display == DisplayClear)
	batch := &BatchResult{RunID: r.id, Entries: make([]Result, 0, len(items))}
	r.emit(KindTimestamp, "Batch translation of %d lines", len(items))

	for i, line := range items {
		if i > 0 {
			if err := sleepCtx(ctx, e.batchDelay); err != nil {
				for _, rest := range items[i:] {
					batch.Entries = append(batch.Entries, e.cancelled(ctx, r, rest, s, err))
				}
				r.emit(KindFailure, "Batch interrupted after %d of %d lines: %v", i, len(items), err)
				return batch, err
			}
		}
		res := e.translate(ctx, r, line, s)
		batch.Entries = append(batch.Entries, res)
		batch.TotalCost += res.Cost
	}

	r.emit(KindCost, "Batch finished: %d lines, %d failed, total cost $%.4f",
		len(batch.Entries), batch.Failed(), batch.TotalCost)
	return batch, nil
}

// resolve pins the model profile and provider for a request and checks the
// provider's credentials.
func (e *Engine) resolve(s Settings) (pricing.ModelProfile, translator.Provider, error) {
	profile, ok := e.models.Get(s.ModelID)
	if !ok {
		return pricing.ModelProfile{}, nil, fmt.Errorf("%w: %s", ErrUnknownModel, s.ModelID)
	}
	provider, ok := e.providers.Get(profile.ProviderID)
	if !ok {
		return profile, nil, &translator.ConfigurationError{
			Provider: profile.ProviderID,
			Reason:   "provider is not configured",
		}
	}
	if err := provider.CheckCredentials(); err != nil {
		return profile, nil, err
	}
	return profile, provider, nil
}

// translate is one pipeline run. It always returns a result and records it,
// converting panics into failed results.
func (e *Engine) translate(ctx context.Context, r *run, text string, s Settings) (res Result) {
	res = Result{
		ID:       uuid.NewString(),
		RunID:    r.id,
		Original: text,
		Target:   s.Target,
		Model:    s.ModelID,
	}
	defer func() {
		if p := recover(); p != nil {
			e.logger.Error("translation run %s panicked: %v", r.id, p)
			res.Status = StatusFailed
			res.Error = fmt.Sprintf("internal error: %v", p)
			r.emit(KindFailure, "Translation failed: %s", res.Error)
		}
		res.ProducedAt = time.Now()
		e.record(ctx, res)
	}()

	profile, provider, err := e.resolve(s)
	if err != nil {
		e.fail(r, &res, err)
		return res
	}

	res.Detected = detector.Detect(text, s.Source)
	if !mode.ShouldTranslate(res.Detected, s.Mode) {
		res.Status = StatusSkipped
		r.emit(KindSkipped, "Detected %s, not translated in %s mode: %s",
			detector.DisplayName(res.Detected), s.Mode, text)
		return res
	}

	processed, notes := terminology.Preprocess(text, e.terms.Current())
	if len(notes) > 0 {
		res.Preprocessed = processed
		res.Notes = notes
		r.emit(KindTimestamp, "Terminology: %s", joinNotes(notes))
	}

	req := translator.BuildRequest(translator.PromptParams{
		Model:   profile.APIModel(),
		Text:    processed,
		Source:  res.Detected,
		Target:  s.Target,
		Quality: s.Quality,
	})

	callCtx := ctx
	if e.requestTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.requestTimeout)
		defer cancel()
	}

	started := time.Now()
	completion, err := provider.Complete(callCtx, req)
	res.Latency = time.Since(started)
	if err != nil {
		e.fail(r, &res, err)
		return res
	}

	if completion.HasUsage {
		res.Usage = completion.Usage
		res.Cost = e.ledger.Record(profile, completion.Usage)
		r.emit(KindCost, "Cost: $%.4f (input %d, output %d tokens)",
			res.Cost, completion.Usage.InputTokens, completion.Usage.OutputTokens)
	}

	if strings.TrimSpace(completion.Text) == "" {
		e.fail(r, &res, errors.New("provider returned an empty translation"))
		return res
	}
	res.Translation = completion.Text
	res.Status = StatusTranslated

	if e.validator != nil {
		if ok, verr := e.validator.IsValid(res.Translation, s.Target); !ok {
			r.emit(KindTimestamp, "Warning: translation may not be %s: %v", detector.DisplayName(s.Target), verr)
		}
	}

	r.emit(KindTimestamp, "[%s] Translated with %s", time.Now().Format("15:04:05"), profile.DisplayName)
	r.emit(KindOriginal, "Original (%s): %s", res.Detected, text)
	r.emit(KindTranslation, "Translation (%s): %s", s.Target, res.Translation)
	return res
}

func (e *Engine) fail(r *run, res *Result, err error) {
	e.logger.Error("translation failed: %v", err)
	res.Status = StatusFailed
	res.Error = err.Error()
	r.emit(KindFailure, "Translation failed: %v", err)
}

func (e *Engine) cancelled(ctx context.Context, r *run, text string, s Settings, err error) Result {
	res := Result{
		ID:         uuid.NewString(),
		RunID:      r.id,
		Original:   text,
		Target:     s.Target,
		Model:      s.ModelID,
		Status:     StatusFailed,
		Error:      err.Error(),
		ProducedAt: time.Now(),
	}
	e.record(ctx, res)
	return res
}

// record appends res to the result log and the history journal. Journal
// failures are logged and otherwise ignored.
func (e *Engine) record(ctx context.Context, res Result) {
	e.results.append(res)
	if e.history == nil {
		return
	}
	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyTimeout)
	defer cancel()
	if err := e.history.SaveRecord(hctx, res.record()); err != nil {
		e.logger.Warn("failed to save history record %s: %v", res.ID, err)
	}
}

func joinNotes(notes []terminology.Note) string {
	parts := make([]string, len(notes))
	for i, n := range notes {
		parts[i] = n.String()
	}
	return strings.Join(parts, ", ")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
