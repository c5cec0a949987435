package orchestrator

import (
	"context"
	"errors"

	"github.com/valpere/cliptran/internal/clipwatch"
)

// StartMonitor arms the clipboard monitor. Starting an armed monitor is a
// no-op.
func (e *Engine) StartMonitor(ctx context.Context) error {
	if e.monitor == nil {
		return ErrNoClipboard
	}
	if err := e.monitor.Start(ctx); err != nil {
		if errors.Is(err, clipwatch.ErrRunning) {
			return nil
		}
		return err
	}
	e.notice(KindClipboardNotice, "Clipboard monitor started, copied text will be translated")
	return nil
}

// StopMonitor disarms the clipboard monitor, letting a running tick finish.
func (e *Engine) StopMonitor() {
	if e.monitor == nil || !e.monitor.Running() {
		return
	}
	e.monitor.Stop()
	e.notice(KindClipboardNotice, "Clipboard monitor stopped")
}

// MonitorRunning reports whether the clipboard monitor is armed.
func (e *Engine) MonitorRunning() bool {
	return e.monitor != nil && e.monitor.Running()
}

// monitorTick handles one accepted clipboard change. With auto-copy on, the
// translation is written back and marked observed before the next poll.
func (e *Engine) monitorTick(ctx context.Context, ev clipwatch.Event) {
	s := e.Settings()
	r := newRun(e.bus, s.Display == DisplayClear)
	r.emit(KindClipboardNotice, "[%s] Clipboard change detected", ev.ObservedAt.Format("15:04:05"))

	res := e.translate(ctx, r, ev.Content, s)
	if res.Status != StatusTranslated || !s.AutoCopy {
		return
	}

	if err := e.clip.Write(res.Translation); err != nil {
		e.logger.Warn("failed to copy translation to clipboard: %v", err)
		r.emit(KindClipboardNotice, "Could not copy the translation to the clipboard: %v", err)
		return
	}
	e.monitor.MarkObserved(res.Translation)
	r.emit(KindClipboardNotice, "Translation copied to the clipboard")
}
