// Package superset recovers exercise ordering and superset groupings
// from a coach workout description. The description is the only carrier
// of this structure: an HTML paragraph whose lines are separated by
// <br/> markers, each line of the form "<identifier>) <exercise name>".
// A bare numeric identifier ("3") is a standalone exercise; a
// number-letter compound ("3A", "3B") marks a superset member, the
// number naming the group and the letter the slot within it.
package superset

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cabell132/FitnessTracker/internal/domain"
)

var (
	blockPattern     = regexp.MustCompile(`(?s)<p[^>]*class="name-and-info"[^>]*>(.*?)</p>`)
	lineBreakPattern = regexp.MustCompile(`<br\s*/?>`)
	tagPattern       = regexp.MustCompile(`<[^>]+>`)
)

// Entry is one parsed line of the order block.
type Entry struct {
	Position   int // 1-based line position
	Name       string
	IsSuperset bool
	Group      string // letter slot within the group, "" for standalone
	Order      int    // numeric group, 0 for standalone
	Identifier string
}

// Parse extracts the ordered entries from a workout description. It
// fails with *domain.ParseError when the name-and-info block is absent,
// which is fatal for the calling workout.
func Parse(description string) ([]Entry, error) {
	block := blockPattern.FindStringSubmatch(description)
	if block == nil {
		return nil, &domain.ParseError{Reason: "workout description has no name-and-info block"}
	}

	var entries []Entry
	for _, raw := range lineBreakPattern.Split(block[1], -1) {
		line := strings.TrimSpace(tagPattern.ReplaceAllString(raw, ""))
		if line == "" {
			continue
		}
		identifier, name, ok := strings.Cut(line, ") ")
		if !ok {
			return nil, &domain.ParseError{Reason: fmt.Sprintf("order line %q has no identifier", line)}
		}

		entry := Entry{
			Position:   len(entries) + 1,
			Name:       strings.TrimSpace(name),
			Identifier: strings.TrimSpace(identifier),
		}
		digits, letters := splitIdentifier(entry.Identifier)
		if digits != "" && letters != "" {
			entry.IsSuperset = true
			entry.Group = letters
			entry.Order, _ = strconv.Atoi(digits)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Anchors maps each numeric superset group to the position of its
// highest-numbered member. That position is the anchor the target
// system's superset id is derived from. No groups means an empty map,
// not an error.
func Anchors(entries []Entry) map[int]int {
	anchors := make(map[int]int)
	for _, e := range entries {
		if !e.IsSuperset {
			continue
		}
		if e.Position > anchors[e.Order] {
			anchors[e.Order] = e.Position
		}
	}
	return anchors
}

// Notes renders the order block as plain text, one exercise per line.
// Used verbatim as routine notes on the target system. A missing block
// yields the empty string; notes are cosmetic, not structural.
func Notes(description string) string {
	block := blockPattern.FindStringSubmatch(description)
	if block == nil {
		return ""
	}
	var lines []string
	for _, raw := range lineBreakPattern.Split(block[1], -1) {
		line := strings.TrimSpace(tagPattern.ReplaceAllString(raw, ""))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// splitIdentifier separates the leading digits from the letter suffix.
func splitIdentifier(identifier string) (digits, letters string) {
	i := 0
	for i < len(identifier) && identifier[i] >= '0' && identifier[i] <= '9' {
		i++
	}
	return identifier[:i], identifier[i:]
}
