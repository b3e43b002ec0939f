// Package sync holds the directional orchestrators. Each flow pulls
// from one side, pushes to another, and isolates failures at the
// workout boundary so one bad record never stalls the run.
package sync

import (
	"strconv"
	"strings"
)

// ParseAnchor extracts the coach workout id a logged workout title
// carries. The id is the title's last line, or failing that its last
// space-separated token. A non-numeric tail means the workout has no
// anchor and stays unlinked on the coach side.
func ParseAnchor(title string) (int64, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return 0, false
	}

	candidate := title
	if i := strings.LastIndex(title, "\n"); i >= 0 {
		candidate = title[i+1:]
	}
	candidate = strings.TrimSpace(candidate)
	if id, err := strconv.ParseInt(candidate, 10, 64); err == nil && id > 0 {
		return id, true
	}

	if i := strings.LastIndex(candidate, " "); i >= 0 {
		candidate = candidate[i+1:]
	}
	id, err := strconv.ParseInt(candidate, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
