package runtime

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/aretw0/verdant/pkg/domain"
)

// ParseWateringDays extracts the leading integer of an enrichment answer.
// Answers such as "10", "+10", " 10 days" or "10." yield 10. Anything without a leading
// positive integer yields domain.DefaultWateringPeriod.
func ParseWateringDays(answer string) int {
	s := strings.TrimPrefix(strings.TrimSpace(answer), "+")
	end := 0
	for end < len(s) && unicode.IsDigit(rune(s[end])) {
		end++
	}
	if end == 0 {
		return domain.DefaultWateringPeriod
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n <= 0 {
		return domain.DefaultWateringPeriod
	}
	return n
}
