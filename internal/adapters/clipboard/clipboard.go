// Package clipboard adapts the system clipboard to the core Clipboard port.
package clipboard

import "github.com/atotto/clipboard"

// System writes to the OS clipboard
type System struct{}

// New creates a new system clipboard adapter
func New() *System {
	return &System{}
}

// WriteAll replaces the clipboard contents with text
func (s *System) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}
