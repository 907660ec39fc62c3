// Package missing implements missing-key detection between a reference
// locale tree and the other locale trees under a translation root.
//
// A key addresses one leaf in one file: the file path relative to the
// locale directory plus the dotted JSON path inside that file. Keys are
// held as structured pairs and only serialized to the delimited
// "file:::path" form at the translation provider boundary.
package missing

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/locsync/locsync/jsondoc"
	"github.com/locsync/locsync/locales"
)

// Separator joins the relative file path and the JSON path in the
// serialized key form. File paths or JSON keys containing the separator
// make the encoding ambiguous; such keys are not escaped (documented
// limitation of the wire form).
const Separator = ":::"

// Key addresses a single translatable leaf.
type Key struct {
	// File is the slash-separated path relative to the locale directory.
	File string
	// Path is the dotted JSON path inside the file.
	Path string
}

// String returns the serialized wire form "file:::path".
func (k Key) String() string {
	return k.File + Separator + k.Path
}

// ParseKey splits a serialized key back into its structured form.
// Returns ok=false when the separator is absent or either part is empty.
func ParseKey(s string) (Key, bool) {
	idx := strings.Index(s, Separator)
	if idx <= 0 || idx+len(Separator) >= len(s) {
		return Key{}, false
	}
	return Key{File: s[:idx], Path: s[idx+len(Separator):]}, true
}

// Entry pairs a key with the reference-language source text.
type Entry struct {
	Key    Key
	Source string
}

// LocaleResult holds the detection outcome for one locale. Err is set
// when the locale's pipeline failed; other locales are unaffected.
type LocaleResult struct {
	Tag     string
	Entries []Entry
	Err     error
}

// ForLocale enumerates all .json files recursively under referenceDir,
// flattens each against its counterpart under localeDir (a missing
// counterpart counts as an empty document), and returns the entries
// present in the reference but absent in the locale. Entry order follows
// the reference tree walk and each reference file's own key order.
func ForLocale(referenceDir, localeDir string) ([]Entry, error) {
	info, err := os.Stat(referenceDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("reference %s: %w", referenceDir, locales.ErrNotFound)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("reference %s is not a directory: %w", referenceDir, locales.ErrNotFound)
	}

	var entries []Entry
	err = filepath.WalkDir(referenceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}

		rel, err := filepath.Rel(referenceDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		refDoc, err := jsondoc.ParseFile(path)
		if err != nil {
			return err
		}
		refFlat := jsondoc.Flatten(refDoc)

		targetFlat, err := flattenIfExists(filepath.Join(localeDir, filepath.FromSlash(rel)))
		if err != nil {
			return err
		}

		for _, p := range refFlat.Paths() {
			if targetFlat.Has(p) {
				continue
			}
			v, _ := refFlat.Get(p)
			// Empty-object leaves are structure, not translatable text.
			if _, isObj := v.(*jsondoc.Object); isObj {
				continue
			}
			entries = append(entries, Entry{
				Key:    Key{File: rel, Path: p},
				Source: sourceText(v),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// flattenIfExists flattens a locale file, treating a non-existent file as
// an empty document. This is not an error: the file simply has every key
// missing.
func flattenIfExists(path string) (*jsondoc.FlatMap, error) {
	doc, err := jsondoc.ParseFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return jsondoc.NewFlatMap(), nil
		}
		return nil, err
	}
	return jsondoc.Flatten(doc), nil
}

// sourceText renders a leaf value as prompt text: strings verbatim,
// opaque scalars and arrays as their compact JSON.
func sourceText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.RawMessage:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// ReferenceCount returns the total number of flat keys in the reference
// locale's files.
func ReferenceCount(rootDir, referenceTag string) (int, error) {
	referenceDir := filepath.Join(rootDir, referenceTag)
	total := 0
	err := filepath.WalkDir(referenceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		doc, err := jsondoc.ParseFile(path)
		if err != nil {
			return err
		}
		total += jsondoc.Flatten(doc).Len()
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("reference locale %q: %w", referenceTag, locales.ErrNotFound)
		}
		return 0, err
	}
	return total, nil
}

// ForAll discovers the locales under rootDir, skips the reference locale,
// and runs ForLocale for each of the others concurrently. Results come
// back in discovery order; a failed locale carries its error in the
// result instead of aborting the rest.
func ForAll(rootDir, referenceTag string, maxConcurrent int) ([]LocaleResult, error) {
	tags, err := locales.Discover(rootDir)
	if err != nil {
		return nil, err
	}

	referenceDir := filepath.Join(rootDir, referenceTag)
	if info, err := os.Stat(referenceDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("reference locale %q: %w", referenceTag, locales.ErrNotFound)
	}

	var targets []string
	for _, tag := range tags {
		if tag != referenceTag {
			targets = append(targets, tag)
		}
	}

	if maxConcurrent <= 0 {
		maxConcurrent = 3
	}

	results := make([]LocaleResult, len(targets))
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for i, tag := range targets {
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, tag string) {
			defer func() {
				<-sem
				wg.Done()
			}()
			entries, err := ForLocale(referenceDir, filepath.Join(rootDir, tag))
			results[i] = LocaleResult{Tag: tag, Entries: entries, Err: err}
		}(i, tag)
	}
	wg.Wait()

	return results, nil
}
