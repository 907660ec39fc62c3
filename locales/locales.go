// Package locales implements locale discovery for translation roots laid
// out as one subdirectory per locale tag: <root>/<tag>/**/*.json.
package locales

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ErrNotFound is returned when the translation root does not exist or is
// not a directory.
var ErrNotFound = errors.New("directory not found")

// tagRe matches the accepted locale tag grammar:
// language[-script][-region], where language is 2-4 letters, script is
// exactly 4 letters, and region is 2 letters or 3 digits.
var tagRe = regexp.MustCompile(`^[a-zA-Z]{2,4}(-[a-zA-Z]{4})?(-([a-zA-Z]{2}|[0-9]{3}))?$`)

// IsTag reports whether a string matches the locale tag grammar.
// Directory names like "node_modules" or "xx-yy-zz" do not qualify.
func IsTag(s string) bool {
	return tagRe.MatchString(s)
}

// Discover lists the immediate subdirectories of rootDir whose names match
// the locale tag grammar, sorted. Read-only.
func Discover(rootDir string) ([]string, error) {
	info, err := os.Stat(rootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", rootDir, ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", rootDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory: %w", rootDir, ErrNotFound)
	}

	entries, err := os.ReadDir(rootDir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rootDir, err)
	}

	var tags []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if IsTag(entry.Name()) {
			tags = append(tags, entry.Name())
		}
	}
	sort.Strings(tags)
	return tags, nil
}

// DisplayName returns the English display name for a locale tag
// ("pt-BR" -> "Brazilian Portuguese"). Falls back to the tag itself when
// it cannot be resolved.
func DisplayName(tag string) string {
	t, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	if name := display.English.Languages().Name(t); name != "" {
		return name
	}
	return tag
}

// Region returns the uppercase region subtag of a locale tag, or "" when
// the tag carries none.
func Region(tag string) string {
	t, err := language.Parse(tag)
	if err != nil {
		return ""
	}
	region, conf := t.Region()
	// Only report regions the tag spells out, not inferred likely regions.
	if conf != language.Exact || !region.IsCountry() {
		return ""
	}
	return region.String()
}
