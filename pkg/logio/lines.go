package logio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

// ReorderedSuffix is appended to the log path for the demultiplexed copy.
const ReorderedSuffix = ".reordered"

// ErrLineTooLong is returned when a line exceeds the configured maximum.
var ErrLineTooLong = errors.New("log line too long")

// ReadLines reads all lines of r without their terminators. Lines longer than
// maxLineSize bytes fail the read.
func ReadLines(r io.Reader, maxLineSize int) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(maxLineSize, bufio.MaxScanTokenSize)), maxLineSize)

	var lines []string

	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}

	err := scanner.Err()
	if errors.Is(err, bufio.ErrTooLong) {
		return nil, fmt.Errorf("%w: line %d exceeds %s", ErrLineTooLong, len(lines)+1,
			humanize.IBytes(uint64(maxLineSize)))
	}

	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	return lines, nil
}

// ReadFile opens path, decompressing as needed, and reads all its lines.
func ReadFile(path string, maxLineSize int) ([]string, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return ReadLines(rc, maxLineSize)
}

// WriteLines writes each line followed by a newline.
func WriteLines(w io.Writer, lines []string) error {
	bw := bufio.NewWriter(w)

	for _, l := range lines {
		_, err := bw.WriteString(l)
		if err == nil {
			err = bw.WriteByte('\n')
		}

		if err != nil {
			return fmt.Errorf("write lines: %w", err)
		}
	}

	err := bw.Flush()
	if err != nil {
		return fmt.Errorf("flush lines: %w", err)
	}

	return nil
}

// WriteFile writes lines to path, compressing as its extension implies.
func WriteFile(path string, lines []string) error {
	wc, err := Create(path)
	if err != nil {
		return err
	}

	err = WriteLines(wc, lines)
	if err != nil {
		wc.Close()

		return err
	}

	err = wc.Close()
	if err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	return nil
}

// ReorderedPath returns where the demultiplexed copy of logPath is written.
// A compression extension is dropped; the copy is plain text.
func ReorderedPath(logPath string) string {
	return StripCompression(logPath) + ReorderedSuffix
}
