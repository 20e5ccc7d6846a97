package cmd

import (
	"fmt"
	"io"
	"os"

	"landkit/internal/core/services"
)

// readCapture reads the capture blob from the file given as the first
// positional argument, or from stdin when no argument is given.
func readCapture(args []string) (string, error) {
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read capture file: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read capture from stdin: %w", err)
	}
	return string(data), nil
}

// loadCapture reads and parses a capture, populating the registry
func loadCapture(args []string) error {
	input, err := readCapture(args)
	if err != nil {
		return err
	}

	_, err = parseService.Execute(getContext(), services.ParseRequest{Input: input})
	return err
}
