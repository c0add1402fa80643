package app

import (
	"os"
	"regexp"
	"strings"
)

var urlSeparators = regexp.MustCompile(`[\s,]+`)

// SplitURLsArg splits repeated -urls values on commas and whitespace,
// dropping empties.
func SplitURLsArg(values []string) []string {
	var urls []string
	for _, v := range values {
		for _, part := range urlSeparators.Split(strings.TrimSpace(v), -1) {
			if part != "" {
				urls = append(urls, part)
			}
		}
	}
	return urls
}

// LoadURLsFile reads a line-delimited URL list, filtering blank lines and
// #-prefixed comments.
func LoadURLsFile(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var urls []string
	for _, line := range strings.Split(string(b), "\n") {
		s := strings.TrimSpace(line)
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		urls = append(urls, s)
	}
	return urls, nil
}
