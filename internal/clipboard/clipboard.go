// Package clipboard is the system clipboard boundary. Empty or non-text
// clipboards read as "".
package clipboard

import (
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
)

// Clipboard reads and writes plain text.
type Clipboard interface {
	Read() (string, error)
	Write(text string) error
}

// AccessError wraps a failed clipboard operation.
type AccessError struct {
	Op  string
	Err error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("clipboard %s: %v", e.Op, e.Err)
}

func (e *AccessError) Unwrap() error { return e.Err }

// System uses the OS clipboard through xclip/xsel/wl-clipboard, pbcopy or
// the Windows API.
type System struct{}

// NewSystem returns the OS clipboard, or an error when no backend is present.
func NewSystem() (*System, error) {
	if clipboard.Unsupported {
		return nil, &AccessError{Op: "init", Err: fmt.Errorf("no clipboard utility found")}
	}
	return &System{}, nil
}

func (*System) Read() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", &AccessError{Op: "read", Err: err}
	}
	return text, nil
}

func (*System) Write(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return &AccessError{Op: "write", Err: err}
	}
	return nil
}

// Memory is an in-process clipboard used when no OS clipboard is wanted and
// by tests. ReadErr, when set, is returned by the next Read.
type Memory struct {
	mu      sync.Mutex
	text    string
	writes  []string
	readErr error
	reads   int
}

// NewMemory returns a clipboard holding text.
func NewMemory(text string) *Memory {
	return &Memory{text: text}
}

func (m *Memory) Read() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.readErr != nil {
		err := m.readErr
		m.readErr = nil
		return "", &AccessError{Op: "read", Err: err}
	}
	return m.text, nil
}

func (m *Memory) Write(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	m.writes = append(m.writes, text)
	return nil
}

// Set replaces the content as if another application had copied text.
func (m *Memory) Set(text string) {
	m.mu.Lock()
	m.text = text
	m.mu.Unlock()
}

// FailNextRead makes the next Read return err.
func (m *Memory) FailNextRead(err error) {
	m.mu.Lock()
	m.readErr = err
	m.mu.Unlock()
}

// Writes returns everything written through Write.
func (m *Memory) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.writes))
	copy(out, m.writes)
	return out
}

// Reads returns how many times Read was called.
func (m *Memory) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}
