package serial

import (
	"strings"
	"sync"
)

// FakeConsole records written lines for test assertions.
type FakeConsole struct {
	mu sync.Mutex

	// Lines contains every line written, without terminators.
	Lines []string

	// WriteError, if set, will be returned by WriteLine.
	WriteError error
}

// NewFakeConsole creates an empty FakeConsole.
func NewFakeConsole() *FakeConsole {
	return &FakeConsole{}
}

// WriteLine records the line.
func (f *FakeConsole) WriteLine(line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Lines = append(f.Lines, line)
	return nil
}

// Text returns all lines joined the way they appear on the wire.
func (f *FakeConsole) Text() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Lines) == 0 {
		return ""
	}
	return strings.Join(f.Lines, LineEnding) + LineEnding
}

// Reset clears recorded lines.
func (f *FakeConsole) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Lines = nil
	f.WriteError = nil
}
