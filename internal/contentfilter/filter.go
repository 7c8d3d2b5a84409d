// Package contentfilter rejects user-submitted text containing banned terms.
// Markup is stripped first so words hidden inside tags are still caught.
package contentfilter

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

type Filter struct {
	banned map[string]struct{}
	policy *bluemonday.Policy
}

// New builds a filter from a banned-word list. Words are matched whole,
// case-insensitively.
func New(words []string) *Filter {
	banned := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			banned[w] = struct{}{}
		}
	}
	return &Filter{banned: banned, policy: bluemonday.StrictPolicy()}
}

// NewFromFile loads one banned word per line.
func NewFromFile(path string) (*Filter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		words = append(words, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return New(words), nil
}

// IsClean reports whether the text is free of banned terms.
func (f *Filter) IsClean(text string) bool {
	if len(f.banned) == 0 {
		return true
	}
	stripped := strings.ToLower(f.policy.Sanitize(text))
	for _, word := range wordRe.FindAllString(stripped, -1) {
		if _, ok := f.banned[word]; ok {
			return false
		}
	}
	return true
}
