package missing

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/locsync/locsync/locales"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestKeySerialization(t *testing.T) {
	k := Key{File: "app/common.json", Path: "menu.file.open"}
	if got := k.String(); got != "app/common.json:::menu.file.open" {
		t.Fatalf("String() = %q", got)
	}

	back, ok := ParseKey(k.String())
	if !ok || back != k {
		t.Fatalf("ParseKey() = %#v, %v", back, ok)
	}

	for _, s := range []string{"", "no-separator", ":::path", "file:::", ":::"} {
		if _, ok := ParseKey(s); ok {
			t.Fatalf("ParseKey(%q) should fail", s)
		}
	}

	// Colons in the JSON path survive the round trip.
	k2 := Key{File: "a.json", Path: "weird:key"}
	back2, ok := ParseKey(k2.String())
	if !ok || back2 != k2 {
		t.Fatalf("ParseKey with colon = %#v, %v", back2, ok)
	}
}

func TestForLocaleDetectsMissingKeys(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "en", "common.json"),
		`{"greeting": "Hello", "farewell": "Goodbye", "menu": {"open": "Open", "close": "Close"}}`)
	writeFile(t, filepath.Join(root, "fr", "common.json"),
		`{"greeting": "Bonjour", "menu": {"open": "Ouvrir"}}`)

	entries, err := ForLocale(filepath.Join(root, "en"), filepath.Join(root, "fr"))
	if err != nil {
		t.Fatalf("ForLocale() error: %v", err)
	}

	want := []Entry{
		{Key: Key{File: "common.json", Path: "farewell"}, Source: "Goodbye"},
		{Key: Key{File: "common.json", Path: "menu.close"}, Source: "Close"},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Fatalf("ForLocale() = %#v, want %#v", entries, want)
	}
}

func TestForLocaleMissingFileCountsAllKeys(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "en", "app", "errors.json"),
		`{"notFound": "Not found", "timeout": "Timed out"}`)
	if err := os.MkdirAll(filepath.Join(root, "de"), 0755); err != nil {
		t.Fatal(err)
	}

	entries, err := ForLocale(filepath.Join(root, "en"), filepath.Join(root, "de"))
	if err != nil {
		t.Fatalf("ForLocale() error: %v", err)
	}

	want := []Entry{
		{Key: Key{File: "app/errors.json", Path: "notFound"}, Source: "Not found"},
		{Key: Key{File: "app/errors.json", Path: "timeout"}, Source: "Timed out"},
	}
	if !reflect.DeepEqual(entries, want) {
		t.Fatalf("ForLocale() = %#v, want %#v", entries, want)
	}
}

func TestForLocaleSkipsEmptyObjectLeaves(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "en", "a.json"), `{"stub": {}, "text": "T"}`)
	writeFile(t, filepath.Join(root, "fr", "a.json"), `{}`)

	entries, err := ForLocale(filepath.Join(root, "en"), filepath.Join(root, "fr"))
	if err != nil {
		t.Fatalf("ForLocale() error: %v", err)
	}

	want := []Entry{{Key: Key{File: "a.json", Path: "text"}, Source: "T"}}
	if !reflect.DeepEqual(entries, want) {
		t.Fatalf("ForLocale() = %#v, want only the text leaf", entries)
	}
}

func TestForLocaleIgnoresExtraTargetKeys(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "en", "a.json"), `{"k": "v"}`)
	writeFile(t, filepath.Join(root, "it", "a.json"), `{"k": "valore", "extra": "stale"}`)
	writeFile(t, filepath.Join(root, "it", "only-here.json"), `{"orphan": "x"}`)

	entries, err := ForLocale(filepath.Join(root, "en"), filepath.Join(root, "it"))
	if err != nil {
		t.Fatalf("ForLocale() error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("complete locale should have no missing entries, got %#v", entries)
	}
}

func TestForLocaleMissingReference(t *testing.T) {
	root := t.TempDir()
	_, err := ForLocale(filepath.Join(root, "en"), filepath.Join(root, "fr"))
	if !errors.Is(err, locales.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestForAll(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "en", "common.json"), `{"a": "A", "b": "B"}`)
	writeFile(t, filepath.Join(root, "fr", "common.json"), `{"a": "A"}`)
	writeFile(t, filepath.Join(root, "de", "common.json"), `{"a": "A", "b": "B"}`)
	if err := os.Mkdir(filepath.Join(root, "node_modules"), 0755); err != nil {
		t.Fatal(err)
	}

	results, err := ForAll(root, "en", 2)
	if err != nil {
		t.Fatalf("ForAll() error: %v", err)
	}

	byTag := make(map[string]LocaleResult)
	for _, r := range results {
		byTag[r.Tag] = r
	}

	if len(results) != 2 {
		t.Fatalf("ForAll() returned %d results, want 2 (reference and non-locales skipped)", len(results))
	}
	if r := byTag["fr"]; r.Err != nil || len(r.Entries) != 1 || r.Entries[0].Key.Path != "b" {
		t.Fatalf("fr result = %#v", r)
	}
	if r := byTag["de"]; r.Err != nil || len(r.Entries) != 0 {
		t.Fatalf("de result = %#v", r)
	}
}

func TestForAllIsolatesPerLocaleFailures(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "en", "common.json"), `{"a": "A"}`)
	writeFile(t, filepath.Join(root, "fr", "common.json"), `{broken`)
	writeFile(t, filepath.Join(root, "de", "common.json"), `{}`)

	results, err := ForAll(root, "en", 0)
	if err != nil {
		t.Fatalf("ForAll() error: %v", err)
	}

	byTag := make(map[string]LocaleResult)
	for _, r := range results {
		byTag[r.Tag] = r
	}

	if byTag["fr"].Err == nil {
		t.Fatal("fr should carry a parse error")
	}
	if r := byTag["de"]; r.Err != nil || len(r.Entries) != 1 {
		t.Fatalf("de should be unaffected, got %#v", r)
	}
}

func TestForAllMissingReferenceDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "fr", "common.json"), `{}`)

	_, err := ForAll(root, "en", 0)
	if !errors.Is(err, locales.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestReferenceCount(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "en", "common.json"), `{"a": "A", "n": {"b": "B", "c": "C"}}`)
	writeFile(t, filepath.Join(root, "en", "sub", "more.json"), `{"d": "D"}`)

	total, err := ReferenceCount(root, "en")
	if err != nil {
		t.Fatalf("ReferenceCount() error: %v", err)
	}
	if total != 4 {
		t.Fatalf("ReferenceCount() = %d, want 4", total)
	}

	if _, err := ReferenceCount(root, "xx"); !errors.Is(err, locales.ErrNotFound) {
		t.Fatalf("missing reference error = %v, want ErrNotFound", err)
	}
}
