package fetch

import (
	"regexp"
	"strconv"
)

var (
	issueRefRe = regexp.MustCompile(`#(\d+)`)
	// Full 40-character hashes only. Abbreviated hashes are too easy to
	// confuse with ordinary words and issue numbers.
	commitRefRe = regexp.MustCompile(`\b[0-9a-f]{40}\b`)
)

// issueNumbers extracts referenced issue numbers from free text, in order
// of appearance, deduplicated.
func issueNumbers(text string) []int {
	matches := issueRefRe.FindAllStringSubmatch(text, -1)
	seen := make(map[int]bool, len(matches))
	var numbers []int
	for _, match := range matches {
		number, err := strconv.Atoi(match[1])
		if err != nil || number == 0 || seen[number] {
			continue
		}
		seen[number] = true
		numbers = append(numbers, number)
	}
	return numbers
}

// commitHashes extracts referenced commit hashes from free text, in order
// of appearance, deduplicated.
func commitHashes(text string) []string {
	matches := commitRefRe.FindAllString(text, -1)
	seen := make(map[string]bool, len(matches))
	var hashes []string
	for _, hash := range matches {
		if seen[hash] {
			continue
		}
		seen[hash] = true
		hashes = append(hashes, hash)
	}
	return hashes
}
