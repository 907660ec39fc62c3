package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name    string
		percent int
		width   int
		want    string
	}{
		{
			name:    "clamps below zero",
			percent: -10,
			width:   4,
			want:    colorRed + "░░░░" + colorReset + "   0%",
		},
		{
			name:    "mid range uses yellow",
			percent: 50,
			width:   4,
			want:    colorYellow + "██░░" + colorReset + "  50%",
		},
		{
			name:    "clamps above hundred",
			percent: 120,
			width:   4,
			want:    colorGreen + "████" + colorReset + " 100%",
		},
	}

	for _, tc := range tests {
		if got := progressBar(tc.percent, tc.width); got != tc.want {
			t.Fatalf("%s: progressBar() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestFlagFromRegion(t *testing.T) {
	if got := flagFromRegion("us"); got != "🇺🇸" {
		t.Fatalf("flagFromRegion(us) = %q, want %q", got, "🇺🇸")
	}
	if got := flagFromRegion("USA"); got != "" {
		t.Fatalf("flagFromRegion(USA) = %q, want empty", got)
	}
	if got := flagFromRegion("1A"); got != "" {
		t.Fatalf("flagFromRegion(1A) = %q, want empty", got)
	}
}

func TestLangHelpers(t *testing.T) {
	if got := langFlag("pt-BR"); got != "🇧🇷" {
		t.Fatalf("langFlag(pt-BR) = %q, want %q", got, "🇧🇷")
	}
	// No explicit region subtag, no flag.
	if got := langFlag("fr"); got != "" {
		t.Fatalf("langFlag(fr) = %q, want empty", got)
	}
	if got := langFlag("invalid"); got != "" {
		t.Fatalf("langFlag(invalid) = %q, want empty", got)
	}

	cell := langCell("pt-BR", 6)
	if !strings.HasPrefix(cell, "🇧🇷 ") || !strings.Contains(cell, "pt-BR") {
		t.Fatalf("langCell() = %q, want flag and locale tag", cell)
	}
	if got := langCell("fr", 6); got != "fr    " {
		t.Fatalf("langCell(fr) = %q, want padded tag without flag", got)
	}
}

func TestIntersectLanguages(t *testing.T) {
	available := []string{"de", "fr", "ru"}
	filter := []string{"ru", "es", "de"}
	want := []string{"de", "ru"}

	if got := intersectLanguages(available, filter); !reflect.DeepEqual(got, want) {
		t.Fatalf("intersectLanguages() = %#v, want %#v", got, want)
	}
	if got := intersectLanguages(available, nil); !reflect.DeepEqual(got, available) {
		t.Fatalf("empty filter should keep all, got %#v", got)
	}
}

func TestFilterOutLang(t *testing.T) {
	langs := []string{"en", "fr", "de"}
	want := []string{"fr", "de"}

	if got := filterOutLang(langs, "en"); !reflect.DeepEqual(got, want) {
		t.Fatalf("filterOutLang() = %#v, want %#v", got, want)
	}
}

func writeLocaleFile(t *testing.T, root, tag, name, content string) {
	t.Helper()
	dir := filepath.Join(root, tag)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestRunUpdateUsesConfigReference(t *testing.T) {
	root := t.TempDir()
	writeLocaleFile(t, root, "en", "common.json", `{"hello": "Hello"}`)
	writeLocaleFile(t, root, "fr", "common.json", `{"hello": "Bonjour"}`)
	if err := os.WriteFile(filepath.Join(root, ".locsync.yaml"), []byte("reference: en\n"), 0644); err != nil {
		t.Fatal(err)
	}

	// No positional reference: the config file supplies it.
	if err := runUpdate(updateArgs{rootDir: root, dryRun: true}); err != nil {
		t.Fatalf("runUpdate() error: %v", err)
	}

	// Positional argument wins over the config value.
	if err := runUpdate(updateArgs{rootDir: root, reference: "fr", dryRun: true}); err != nil {
		t.Fatalf("runUpdate(explicit reference) error: %v", err)
	}
}

func TestRunUpdateRequiresSomeReference(t *testing.T) {
	root := t.TempDir()
	writeLocaleFile(t, root, "en", "common.json", `{"hello": "Hello"}`)

	err := runUpdate(updateArgs{rootDir: root, dryRun: true})
	if err == nil || !strings.Contains(err.Error(), "reference") {
		t.Fatalf("error = %v, want missing-reference error", err)
	}
}

func TestRunStatusUsesConfigReference(t *testing.T) {
	root := t.TempDir()
	writeLocaleFile(t, root, "en", "common.json", `{"hello": "Hello"}`)
	writeLocaleFile(t, root, "de", "common.json", `{"hello": "Hallo"}`)
	if err := os.WriteFile(filepath.Join(root, ".locsync.yaml"), []byte("reference: en\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := runStatus(root, ""); err != nil {
		t.Fatalf("runStatus() error: %v", err)
	}

	if err := runStatus(t.TempDir(), ""); err == nil {
		t.Fatal("status without any reference should fail")
	}
}

func TestResolveLangFilter(t *testing.T) {
	root := t.TempDir()
	for _, tag := range []string{"en", "fr", "de"} {
		writeLocaleFile(t, root, tag, "common.json", `{}`)
	}

	// No filter: nil means all locales, no directory check.
	langs, err := resolveLangFilter(root, "en", nil)
	if err != nil || langs != nil {
		t.Fatalf("resolveLangFilter(nil) = %v, %v", langs, err)
	}

	// Unknown tags are dropped, known ones survive in discovery order.
	langs, err = resolveLangFilter(root, "en", []string{"de", "es", "fr"})
	if err != nil {
		t.Fatalf("resolveLangFilter() error: %v", err)
	}
	if !reflect.DeepEqual(langs, []string{"de", "fr"}) {
		t.Fatalf("resolveLangFilter() = %#v, want [de fr]", langs)
	}

	// The reference is never a target, even when requested.
	langs, err = resolveLangFilter(root, "en", []string{"en", "fr"})
	if err != nil || !reflect.DeepEqual(langs, []string{"fr"}) {
		t.Fatalf("resolveLangFilter(with reference) = %#v, %v", langs, err)
	}

	// A filter with no matching directories is an error, not "all".
	if _, err := resolveLangFilter(root, "en", []string{"es", "it"}); err == nil {
		t.Fatal("filter with only unknown locales should fail")
	}
}

func TestSplitLangs(t *testing.T) {
	if got := splitLangs(""); got != nil {
		t.Fatalf("splitLangs(empty) = %#v, want nil", got)
	}
	want := []string{"fr", "pt-BR", "de"}
	if got := splitLangs(" fr, pt-BR ,de,"); !reflect.DeepEqual(got, want) {
		t.Fatalf("splitLangs() = %#v, want %#v", got, want)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "present.txt")
	if err := os.WriteFile(filePath, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if !fileExists(filePath) {
		t.Fatalf("fileExists(file) = false, want true")
	}
	if fileExists(dir) {
		t.Fatalf("fileExists(directory) = true, want false")
	}
	if fileExists(filepath.Join(dir, "missing.txt")) {
		t.Fatalf("fileExists(missing) = true, want false")
	}
}

func TestResolveProvider(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	prov := resolveProvider("google", "", "gemini-2.5-flash", "", 0)
	if prov.ID != "google" || prov.Model != "gemini-2.5-flash" {
		t.Fatalf("resolveProvider(google) = %#v", prov)
	}
	if prov.BaseURL == "" {
		t.Fatal("google provider should keep its default base URL")
	}

	// Unknown names become custom OpenAI endpoints.
	prov = resolveProvider("https://my.proxy/v1", "", "gpt-4o", "", 0)
	if prov.ID != "custom-openai" || prov.BaseURL != "https://my.proxy/v1" {
		t.Fatalf("custom provider = %#v", prov)
	}

	// Explicit base URL wins.
	prov = resolveProvider("groq", "https://override.example/v1", "m", "", 0)
	if prov.BaseURL != "https://override.example/v1" {
		t.Fatalf("base URL override ignored: %#v", prov)
	}
}

func TestResolveAPIKeyPriority(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("LOCSYNC_API_KEY", "env-key")

	if got := resolveAPIKey("google", "flag-key"); got != "flag-key" {
		t.Fatalf("flag should win, got %q", got)
	}
	if got := resolveAPIKey("google", ""); got != "env-key" {
		t.Fatalf("env should win over store, got %q", got)
	}

	t.Setenv("LOCSYNC_API_KEY", "")
	if got := resolveAPIKey("google", ""); got != "" {
		t.Fatalf("empty store should yield empty key, got %q", got)
	}
}

func TestValidateProvider(t *testing.T) {
	if err := validateProvider(resolveProvider("google", "", "", "", 0)); err == nil {
		t.Fatal("missing model should fail validation")
	}

	prov := resolveProvider("google", "", "gemini-2.5-flash", "", 0)
	if err := validateProvider(prov); err == nil {
		t.Fatal("google without API key should fail validation")
	}
	prov.APIKey = "key"
	if err := validateProvider(prov); err != nil {
		t.Fatalf("validateProvider() error: %v", err)
	}

	// Ollama needs no key.
	if err := validateProvider(resolveProvider("ollama", "", "llama3.2", "", 0)); err != nil {
		t.Fatalf("ollama validation error: %v", err)
	}
}
