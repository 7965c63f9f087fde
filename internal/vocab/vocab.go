// Package vocab reads vocabulary hints: one term per line, blank lines ignored.
package vocab

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

func Parse(r io.Reader) ([]string, error) {
	var terms []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		term := strings.TrimSpace(scanner.Text())
		if term == "" {
			continue
		}
		terms = append(terms, term)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}

	return terms, nil
}

func ParseText(text string) []string {
	terms, _ := Parse(strings.NewReader(text))
	return terms
}

func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}
