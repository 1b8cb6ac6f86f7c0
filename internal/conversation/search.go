package conversation

import "strings"

// Search holds the match set and the navigable cursor for a text search
// over a displayed conversation. Indices refer to positions in the grouped
// display sequence, which is the same ordering a view returns.
type Search struct {
	matches []int
	cursor  int
}

// Find runs a case-insensitive substring search over the displayed records
// and returns a search positioned before the first match, so the first
// Next lands on it. An empty query matches nothing.
func Find(records []Record, query string) *Search {
	s := &Search{cursor: -1}
	query = strings.TrimSpace(query)
	if query == "" {
		return s
	}
	needle := strings.ToLower(query)
	for i, rec := range records {
		if strings.Contains(strings.ToLower(rec.Content), needle) {
			s.matches = append(s.matches, i)
		}
	}
	return s
}

// Matches returns the ordered message indices that matched.
func (s *Search) Matches() []int {
	return s.matches
}

// Current returns the message index under the cursor, or -1 when there are
// no matches or navigation has not started.
func (s *Search) Current() int {
	if s.cursor < 0 {
		return -1
	}
	return s.matches[s.cursor]
}

// Next advances the cursor, wrapping past the last match back to the
// first, and returns the new current message index.
func (s *Search) Next() int {
	if len(s.matches) == 0 {
		return -1
	}
	s.cursor = (s.cursor + 1) % len(s.matches)
	return s.matches[s.cursor]
}

// Prev moves the cursor backwards, wrapping past the first match to the
// last, and returns the new current message index.
func (s *Search) Prev() int {
	if len(s.matches) == 0 {
		return -1
	}
	if s.cursor < 0 {
		s.cursor = len(s.matches) - 1
	} else {
		s.cursor = (s.cursor - 1 + len(s.matches)) % len(s.matches)
	}
	return s.matches[s.cursor]
}
