package cache

import (
	"strings"
	"time"
)

// entry is one memory tier record: the classes extracted from a file,
// the content hash they were computed from, and the creation time.
// The tier owns the classes slice; lookups hand out copies.
type entry struct {
	classes   []string
	hash      uint64
	createdAt time.Time
}

// classList returns a caller-owned copy of the entry's classes.
func (e entry) classList() []string {
	return append([]string(nil), e.classes...)
}

// encodeClasses renders a class list in the disk entry format:
// UTF-8 text, one class per line, each line terminated by a newline.
func encodeClasses(classes []string) []byte {
	var buf strings.Builder
	for _, class := range classes {
		buf.WriteString(class)
		buf.WriteByte('\n')
	}
	return []byte(buf.String())
}

// decodeClasses parses the disk entry format. Lines are trimmed and
// blank lines are skipped, so a trailing newline never produces an
// empty class.
func decodeClasses(data []byte) []string {
	var classes []string
	for _, line := range strings.Split(string(data), "\n") {
		class := strings.TrimSpace(line)
		if class == "" {
			continue
		}
		classes = append(classes, class)
	}
	return classes
}
