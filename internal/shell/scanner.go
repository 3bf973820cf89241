package shell

import (
	"bufio"
	"io"
)

// ScannerReader is a LineReader over a plain byte stream, used when stdin
// is not a terminal. It never echoes a prompt.
type ScannerReader struct {
	scanner *bufio.Scanner
}

// NewScannerReader wraps r in a line-at-a-time reader.
func NewScannerReader(r io.Reader) *ScannerReader {
	return &ScannerReader{
		scanner: bufio.NewScanner(r),
	}
}

// Readline returns the next line, or io.EOF when input is exhausted.
func (s *ScannerReader) Readline() (string, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.scanner.Text(), nil
}

// SetPrompt is a no-op; piped input gets no prompt.
func (s *ScannerReader) SetPrompt(prompt string) {}
