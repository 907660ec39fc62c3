package translate

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/locsync/locsync/missing"
)

func TestParseResponse(t *testing.T) {
	text := `common.json:::greeting: Bonjour
common.json:::menu.open: Ouvrir
app/errors.json:::timeout: Délai: dépassé`

	results, skipped := ParseResponse(text)
	if skipped != 0 {
		t.Fatalf("skipped = %d, want 0", skipped)
	}
	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	if got := results[missing.Key{File: "common.json", Path: "greeting"}]; got != "Bonjour" {
		t.Fatalf("greeting = %q", got)
	}
	// Colons after the first one belong to the translation.
	if got := results[missing.Key{File: "app/errors.json", Path: "timeout"}]; got != "Délai: dépassé" {
		t.Fatalf("timeout = %q", got)
	}
}

func TestParseResponseSkipsMalformedLines(t *testing.T) {
	text := "```\n" +
		"common.json:::greeting: Bonjour\n" +
		"Here is your translation:\n" +
		"no-separator-line\n" +
		"common.json:::nothing-after-path\n" +
		"common.json:::: empty path\n" +
		"\n" +
		"```"

	results, skipped := ParseResponse(text)
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1: %#v", len(results), results)
	}
	if skipped != 4 {
		t.Fatalf("skipped = %d, want 4", skipped)
	}
}

func TestParseResponseEmpty(t *testing.T) {
	results, skipped := ParseResponse("")
	if len(results) != 0 || skipped != 0 {
		t.Fatalf("ParseResponse(empty) = %#v, %d", results, skipped)
	}
}

func TestBuildUserPrompt(t *testing.T) {
	entries := []missing.Entry{
		{Key: missing.Key{File: "common.json", Path: "a.b"}, Source: "Hello"},
		{Key: missing.Key{File: "x.json", Path: "k"}, Source: "World"},
	}

	got := buildUserPrompt(entries)
	want := "common.json:::a.b: Hello\nx.json:::k: World\n"
	if got != want {
		t.Fatalf("buildUserPrompt() = %q, want %q", got, want)
	}
}

func TestBuildSystemPromptNamesLanguage(t *testing.T) {
	prompt := buildSystemPrompt("fr")
	if !strings.Contains(prompt, "French") || !strings.Contains(prompt, "(fr)") {
		t.Fatalf("system prompt should name the target language: %q", prompt)
	}
}

func TestChunkEntries(t *testing.T) {
	entries := make([]missing.Entry, 7)
	for i := range entries {
		entries[i].Key = missing.Key{File: "f.json", Path: string(rune('a' + i))}
	}

	chunks := chunkEntries(entries, 3)
	if len(chunks) != 3 {
		t.Fatalf("len(chunks) = %d, want 3", len(chunks))
	}
	if len(chunks[0]) != 3 || len(chunks[1]) != 3 || len(chunks[2]) != 1 {
		t.Fatalf("chunk sizes = %d,%d,%d", len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}

	if got := chunkEntries(entries, 0); len(got) != 1 || len(got[0]) != 7 {
		t.Fatalf("chunk size 0 should keep one chunk, got %d chunks", len(got))
	}
}

// stubTranslator returns canned results keyed by target tag and records
// calls; used instead of a live provider. Safe for concurrent pipelines.
type stubTranslator struct {
	mu      sync.Mutex
	results map[string]map[missing.Key]string
	err     error
	calls   int
}

func (s *stubTranslator) Translate(ctx context.Context, entries []missing.Entry, targetTag string) (map[missing.Key]string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.results[targetTag], nil
}

func (s *stubTranslator) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestTranslatorInterfaceEmptyBatch(t *testing.T) {
	tr := New(Options{Provider: Provider{ID: ProviderOllama}})
	got, err := tr.Translate(context.Background(), nil, "fr")
	if err != nil {
		t.Fatalf("Translate(empty) error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Translate(empty) = %#v, want empty map", got)
	}
}
