package moderation

import (
	"bufio"
	"bytes"
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
	"wish-wall/errors"
)

//go:embed flagged/*.txt
var flaggedFolder embed.FS

// DefaultDictionaryPath is the embedded folder holding one word list per language.
const DefaultDictionaryPath = "flagged"

// Dictionary carries the loaded words along with the languages they came from.
type Dictionary struct {
	Words     []string
	Languages []string
}

// Loader reads flagged word lists from an embedded filesystem.
type Loader struct {
	fs fs.FS
}

// NewLoader returns a Loader over f, or over the built-in lists when f is nil.
func NewLoader(f fs.FS) *Loader {
	if f == nil {
		f = flaggedFolder
	}
	return &Loader{fs: f}
}

// LoadAll reads every .txt file under dir, one word or phrase per line.
// The file name (minus extension) names the language.
func (l *Loader) LoadAll(dir string) (*Dictionary, error) {
	entries, err := fs.ReadDir(l.fs, dir)
	if err != nil {
		return nil, err
	}

	var languages []string
	uniqueWords := make(map[string]struct{})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		languages = append(languages, strings.TrimSuffix(entry.Name(), ".txt"))

		data, err := fs.ReadFile(l.fs, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		// Scanner copes with both \n and \r\n
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" && !strings.HasPrefix(line, "#") {
				uniqueWords[line] = struct{}{}
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}

	if len(uniqueWords) == 0 {
		return nil, errors.ErrEmptyWords
	}

	words := make([]string, 0, len(uniqueWords))
	for w := range uniqueWords {
		words = append(words, w)
	}
	sort.Strings(words)

	return &Dictionary{Words: words, Languages: languages}, nil
}
