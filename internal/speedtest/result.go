package speedtest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

var (
	// ErrResultMissing means the speed test has not produced a result file yet
	ErrResultMissing = errors.New("speed test result not found, run the test first")

	// ErrResultUnparsable means the result file holds no ranked IP
	ErrResultUnparsable = errors.New("unable to parse speed test result, run the test again")
)

// ReadResult returns every line of the result file
func ReadResult(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrResultMissing, path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	text := strings.TrimPrefix(string(content), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

// FastestIP returns the first field of the first data row. Rows are
// ranked best-first and the header row is skipped.
func FastestIP(path string) (string, error) {
	lines, err := ReadResult(path)
	if err != nil {
		return "", err
	}
	if len(lines) < 2 {
		return "", fmt.Errorf("%w: %s has no data rows", ErrResultUnparsable, path)
	}

	ip, _, _ := strings.Cut(lines[1], ",")
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return "", fmt.Errorf("%w: empty first field in %s", ErrResultUnparsable, path)
	}
	return ip, nil
}
