package registry

import (
	"os"
	"strings"
)

// WriteSignalFile writes newly discovered names one per line for the
// notification step to pick up. No new names truncates the file to
// empty rather than leaving a stale list behind.
func WriteSignalFile(path string, names []string) error {
	var contents strings.Builder
	for _, name := range names {
		contents.WriteString(name)
		contents.WriteString("\n")
	}
	return os.WriteFile(path, []byte(contents.String()), 0644)
}

// ReadSignalFile returns the names recorded by the last watch run.
// A missing file means the watcher never ran, which callers treat
// differently from an empty run, so the error is passed through.
func ReadSignalFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0)
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		names = append(names, line)
	}
	return names, nil
}

// ConsumeSignalFile truncates the signal file once its contents have
// been dispatched, so a failed scrape on the next run cannot re-alert
// the same names.
func ConsumeSignalFile(path string) error {
	return os.WriteFile(path, nil, 0644)
}
