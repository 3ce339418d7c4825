package workflow

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Myangsun/HiyaDrive/pkg/domain"
)

// TopCandidates returns at most n candidates by descending score.
// Ties keep their original order.
func TopCandidates(candidates []domain.Candidate, n int) []domain.Candidate {
	sorted := append([]domain.Candidate(nil), candidates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// SelectCandidate picks among the top n candidates. An index of 0 selects the
// highest score; otherwise the 1-based index must be within the offered options.
func SelectCandidate(candidates []domain.Candidate, index, n int) (domain.Candidate, error) {
	if len(candidates) == 0 {
		return domain.Candidate{}, domain.ErrNoCandidates
	}
	top := TopCandidates(candidates, n)
	if index == 0 {
		return top[0], nil
	}
	if index < 1 || index > len(top) {
		return domain.Candidate{}, fmt.Errorf("%w: %d not in [1, %d]", domain.ErrIndexOutOfRange, index, len(top))
	}
	return top[index-1], nil
}

var ordinals = map[string]int{
	"one": 1, "first": 1, "1st": 1,
	"two": 2, "second": 2, "2nd": 2,
	"three": 3, "third": 3, "3rd": 3,
	"four": 4, "fourth": 4, "4th": 4,
	"five": 5, "fifth": 5, "5th": 5,
}

// ParseChoice extracts an option number from a reply such as "option two" or "the 3rd one".
// It returns 0 when no number is found.
func ParseChoice(text string) int {
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?")
		if n, ok := ordinals[w]; ok {
			return n
		}
		if n, err := strconv.Atoi(w); err == nil {
			return n
		}
	}
	return 0
}

// describeOption renders one offered candidate for speech.
func describeOption(i int, c domain.Candidate) string {
	text := fmt.Sprintf("Option %d: %s.", i, c.Name)
	if c.Score > 0 {
		text += fmt.Sprintf(" Rated %.1f stars.", c.Score)
	}
	if c.Location != "" {
		text += fmt.Sprintf(" Located at %s.", c.Location)
	}
	return text
}
