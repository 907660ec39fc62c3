// locsync — batch translation updater for JSON locale trees with AI support.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/locsync/locsync/config"
	"github.com/locsync/locsync/i18n"
	"github.com/locsync/locsync/locales"
	"github.com/locsync/locsync/missing"
	"github.com/locsync/locsync/settings"
	"github.com/locsync/locsync/translate"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
	colorGray   = "\033[0;90m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

func logNoop(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGray+"[--]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "locsync",
		Short: "Keep JSON locale trees in sync with a reference locale using AI",
		Long: `locsync — batch translation updater for JSON locale trees.

Scans a translation folder laid out as one subdirectory per locale tag
(folder/<localeTag>/**/*.json), compares every locale against a reference
locale, and fills in the missing keys using an AI translation provider.
Nested JSON objects are addressed by dotted paths; key order and
untouched values are preserved on write.

Commands:
  update      Translate missing keys in all locales (or --dry-run preview)
  status      Show per-locale completeness statistics
  auth        Manage provider authentication
  version     Show version information

AI Providers:
  google         Google AI (Gemini) — API key
  groq           Groq — API key required
  ollama         Ollama local server
  custom-openai  Custom OpenAI-compatible endpoint`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newUpdateCmd(),
		newStatusCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	// Optional .env in the working directory for LOCSYNC_API_KEY etc.
	if fileExists(".env") {
		_ = godotenv.Load()
	}
	i18n.Init("")

	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("locsync version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// update (the main pipeline)
// ---------------------------------------------------------------------------

func newUpdateCmd() *cobra.Command {
	var (
		// Provider selection
		provider string
		apiKey   string
		model    string
		baseURL  string

		// Target selection
		langs string

		// Behavior
		chunkSize int
		verbose   bool
		dryRun    bool

		// Parallelization
		maxConcurrent int
		requestDelay  time.Duration

		// Network
		timeout    time.Duration
		proxy      string
		maxRetries int
	)

	cmd := &cobra.Command{
		Use:   "update <folder> [referenceLocale]",
		Short: "Translate missing keys in all locales",
		Long: `Compare every locale under <folder> against the reference locale and
translate the missing keys using an AI provider.

Each locale is a subdirectory named by its tag (en, fr, pt-BR, ...)
containing JSON files; the reference locale is the source of truth.
It can be given as the second argument or as "reference" in
.locsync.yaml. Existing translations are never overwritten.

Examples:
  # Fill in missing keys using Google AI
  locsync update ./translations en --provider google --model gemini-2.5-flash

  # Only specific locales, with a local Ollama model
  locsync update ./translations en --provider ollama --model llama3.2 --lang fr,de

  # Preview what would be translated without calling any API
  locsync update ./translations en --dry-run`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reference := ""
			if len(args) > 1 {
				reference = args[1]
			}
			return runUpdate(updateArgs{
				rootDir: args[0], reference: reference,
				provider: provider, apiKey: apiKey, model: model,
				baseURL: baseURL, langs: langs,
				chunkSize: chunkSize, verbose: verbose, dryRun: dryRun,
				maxConcurrent: maxConcurrent, requestDelay: requestDelay,
				timeout: timeout, proxy: proxy, maxRetries: maxRetries,
			})
		},
	}

	// Provider selection
	cmd.Flags().StringVar(&provider, "provider", "", "AI provider: google, groq, ollama, custom-openai")
	cmd.Flags().StringVar(&model, "model", "", "Model name (required unless --dry-run)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (or LOCSYNC_API_KEY env var)")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Custom API base URL")

	// Target selection
	cmd.Flags().StringVar(&langs, "lang", "", "Locales to update (comma-separated, default: all)")

	// Behavior
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 0, "Entries per API request (0 = default)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Enable detailed logging")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be translated without calling AI or writing files")

	// Parallelization
	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 0, "Maximum concurrent locale pipelines (default 3)")
	cmd.Flags().DurationVar(&requestDelay, "request-delay", 0, "Delay between chunk requests")

	// Network
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Request timeout (0 = provider default)")
	cmd.Flags().StringVar(&proxy, "proxy", "", "HTTP/HTTPS proxy URL")
	cmd.Flags().IntVar(&maxRetries, "max-retries", 3, "Maximum retries on rate limit (429)")

	// Provider completion
	_ = cmd.RegisterFlagCompletionFunc("provider", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{
			"google\tGoogle AI (Gemini) — API key required",
			"groq\tGroq — API key required",
			"ollama\tOllama local server",
			"custom-openai\tCustom OpenAI-compatible endpoint",
		}, cobra.ShellCompDirectiveNoFileComp
	})

	// Model completion (provider-aware)
	_ = cmd.RegisterFlagCompletionFunc("model", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		p, _ := cmd.Flags().GetString("provider")
		switch p {
		case "google":
			return []string{"gemini-2.5-flash", "gemini-2.0-flash-exp", "gemini-1.5-pro"}, cobra.ShellCompDirectiveNoFileComp
		case "groq":
			return []string{"llama-3.3-70b-versatile", "mixtral-8x7b-32768"}, cobra.ShellCompDirectiveNoFileComp
		case "ollama":
			return []string{"llama3.2", "qwen2.5", "mistral", "phi3"}, cobra.ShellCompDirectiveNoFileComp
		default:
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
	})

	return cmd
}

type updateArgs struct {
	rootDir, reference               string
	provider, apiKey, model, baseURL string
	langs                            string
	chunkSize                        int
	verbose, dryRun                  bool
	maxConcurrent                    int
	requestDelay, timeout            time.Duration
	proxy                            string
	maxRetries                       int
}

func runUpdate(a updateArgs) error {
	// Config file fills in unset flags; flags win.
	cfg, err := config.Discover(a.rootDir)
	if err != nil {
		return err
	}
	if cfg != nil {
		if a.reference == "" {
			a.reference = cfg.Reference
		}
		if a.provider == "" {
			a.provider = cfg.Provider.Name
		}
		if a.model == "" {
			a.model = cfg.Provider.Model
		}
		if a.baseURL == "" {
			a.baseURL = cfg.Provider.BaseURL
		}
		if a.chunkSize == 0 {
			a.chunkSize = cfg.Provider.ChunkSize
		}
		if a.maxConcurrent == 0 {
			a.maxConcurrent = cfg.Provider.MaxConcurrent
		}
		if a.langs == "" && len(cfg.Languages) > 0 {
			a.langs = strings.Join(cfg.Languages, ",")
		}
	}

	if a.reference == "" {
		return fmt.Errorf("no reference locale: pass it as the second argument or set \"reference\" in %s", config.FileName)
	}
	if !locales.IsTag(a.reference) {
		return fmt.Errorf("reference %q is not a locale tag", a.reference)
	}

	langs, err := resolveLangFilter(a.rootDir, a.reference, splitLangs(a.langs))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logInfo(i18n.T("Scanning %s (reference: %s)"), a.rootDir, a.reference)

	opts := translate.UpdateOptions{
		RootDir:       a.rootDir,
		ReferenceTag:  a.reference,
		Langs:         langs,
		DryRun:        a.dryRun,
		MaxConcurrent: a.maxConcurrent,
		OnLog:         func(msg string) { logInfo("%s", msg) },
		OnWarning:     func(msg string) { logWarning("%s", msg) },
	}

	if !a.dryRun {
		prov := resolveProvider(a.provider, a.baseURL, a.model, a.proxy, a.timeout)
		prov.APIKey = resolveAPIKey(prov.ID, a.apiKey)
		if err := validateProvider(prov); err != nil {
			return err
		}
		opts.Translator = translate.New(translate.Options{
			Provider:     prov,
			ChunkSize:    a.chunkSize,
			MaxRetries:   a.maxRetries,
			RequestDelay: a.requestDelay,
			Verbose:      a.verbose,
			OnWarning:    func(msg string) { logWarning("%s", msg) },
		})
	}

	report, err := translate.Update(ctx, opts)
	if err != nil {
		if errors.Is(err, locales.ErrNotFound) {
			return fmt.Errorf("%w (check the folder and reference locale)", err)
		}
		return err
	}

	printUpdateReport(report)

	if report.Failed() {
		return fmt.Errorf("some locales failed to update")
	}
	return nil
}

// printUpdateReport renders the per-locale outcome lines.
func printUpdateReport(report *translate.UpdateReport) {
	for _, lr := range report.Locales {
		name := langCell(lr.Tag, 8)

		switch {
		case lr.Err != nil:
			logError("%s failed: %v", name, lr.Err)

		case report.DryRun && lr.Missing == 0:
			logNoop(i18n.T("%s is up to date"), name)

		case report.DryRun:
			logWarning("%s: %s", name, sprintN("Found %d missing entry", "Found %d missing entries", lr.Missing))
			fmt.Println(dryRunPreview(lr.Entries))

		case lr.UpToDate():
			logNoop(i18n.T("%s is up to date"), name)

		case lr.Untranslated > 0:
			logWarning("%s: wrote %d of %d entries (%d untranslated)", name, lr.Written, lr.Missing, lr.Untranslated)

		default:
			logSuccess("%s: wrote %d entries", name, lr.Written)
		}
	}

	if report.DryRun {
		logWarning(i18n.T("Dry run: no files were modified"))
	}
}

// dryRunPreview renders the missing entries of one locale as indented
// JSON keyed by the serialized entry key.
func dryRunPreview(entries []missing.Entry) string {
	preview := make(map[string]string, len(entries))
	for _, e := range entries {
		preview[e.Key.String()] = e.Source
	}
	data, err := json.MarshalIndent(preview, "", "    ")
	if err != nil {
		return ""
	}
	return string(data)
}

// i18n.N takes a printf-style pair; the count is applied afterwards.
func sprintN(singular, plural string, n int) string {
	return fmt.Sprintf(i18n.N(singular, plural, n), n)
}

// ---------------------------------------------------------------------------
// status (read-only completeness table)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <folder> [referenceLocale]",
		Short: "Show per-locale completeness statistics",
		Long: `Show how complete each locale is relative to the reference locale.

The reference can be given as the second argument or as "reference" in
.locsync.yaml. Counts the reference keys present in each locale and
renders a progress table. Does not modify any files and calls no
provider.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reference := ""
			if len(args) > 1 {
				reference = args[1]
			}
			return runStatus(args[0], reference)
		},
	}

	return cmd
}

func runStatus(rootDir, reference string) error {
	if reference == "" {
		cfg, err := config.Discover(rootDir)
		if err != nil {
			return err
		}
		if cfg != nil {
			reference = cfg.Reference
		}
	}
	if reference == "" {
		return fmt.Errorf("no reference locale: pass it as the second argument or set \"reference\" in %s", config.FileName)
	}
	if !locales.IsTag(reference) {
		return fmt.Errorf("reference %q is not a locale tag", reference)
	}

	logInfo(i18n.T("Scanning %s (reference: %s)"), rootDir, reference)

	results, err := missing.ForAll(rootDir, reference, 0)
	if err != nil {
		return err
	}

	total, err := missing.ReferenceCount(rootDir, reference)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Reference: %s (%d keys)\n\n", langCell(reference, 8), total)

	failed := false
	for _, res := range results {
		if res.Err != nil {
			logError("%s: %v", res.Tag, res.Err)
			failed = true
			continue
		}
		done := total - len(res.Entries)
		percent := 100
		if total > 0 {
			percent = done * 100 / total
		}
		fmt.Printf("  %s %s %4d/%d\n", langCell(res.Tag, 8), progressBar(percent, 20), done, total)
	}
	fmt.Println()

	if failed {
		return fmt.Errorf("some locales could not be read")
	}
	return nil
}

// ---------------------------------------------------------------------------
// auth (API key management)
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage provider authentication",
		Long: `Manage API keys for the AI translation providers.

API key providers (paste your key):
  google        Google AI Studio (Gemini API key)
  groq          Groq Cloud (free tier available)
  custom-openai Custom OpenAI-compatible endpoint

No auth required:
  ollama        Local Ollama server

Examples:
  locsync auth login --provider google     Store Google AI API key
  locsync auth logout --provider google    Remove Google API key
  locsync auth logout                      Remove all credentials
  locsync auth list                        Show all stored credentials`,
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthListCmd(),
	)

	return cmd
}

// allProviders is the ordered list of providers for auth commands.
var allProviders = []struct {
	id   string
	name string
	desc string
	auth string // "api-key" or "none"
}{
	{"google", "Google AI Studio", "Gemini API key, free tier available", "api-key"},
	{"groq", "Groq Cloud", "fast inference, free tier available", "api-key"},
	{"custom-openai", "Custom OpenAI", "any OpenAI-compatible endpoint", "api-key"},
	{"ollama", "Ollama", "local server, no auth needed", "none"},
}

func newAuthLoginCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API key for a provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			if provider == "" {
				return fmt.Errorf("--provider is required (google, groq, custom-openai)")
			}
			switch provider {
			case translate.ProviderCustomOpenAI:
				return authLoginCustomOpenAI()
			case translate.ProviderOllama:
				logInfo("Ollama needs no authentication")
				return nil
			default:
				return authLoginAPIKey(provider)
			}
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider to authenticate")

	return cmd
}

func authLoginAPIKey(providerID string) error {
	providerInfo := map[string]struct {
		name    string
		helpURL string
		example string
	}{
		"google": {
			name:    "Google AI Studio",
			helpURL: "https://aistudio.google.com/apikey",
			example: "locsync update ./translations en --provider google --model gemini-2.5-flash",
		},
		"groq": {
			name:    "Groq Cloud",
			helpURL: "https://console.groq.com/keys",
			example: "locsync update ./translations en --provider groq --model llama-3.3-70b-versatile",
		},
	}

	info, ok := providerInfo[providerID]
	if !ok {
		return fmt.Errorf("unknown provider %q", providerID)
	}

	fmt.Fprintf(os.Stderr, "\n%s%s — API Key Setup%s\n", colorBlue, info.name, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintln(os.Stderr)

	if info.helpURL != "" {
		fmt.Fprintf(os.Stderr, "  Get your API key from: %s%s%s\n\n", colorGreen, info.helpURL, colorReset)
	}

	// Check if already configured
	existing := settings.GetAPIKey(providerID)
	if existing != "" {
		fmt.Fprintf(os.Stderr, "  Current key: %s%s%s\n", colorYellow, settings.MaskKey(existing), colorReset)
		fmt.Fprintf(os.Stderr, "  Enter new key to replace, or press Enter to keep: ")
	} else {
		fmt.Fprintf(os.Stderr, "  Enter API key: ")
	}

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return fmt.Errorf("no input received")
	}
	key := strings.TrimSpace(scanner.Text())

	if key == "" {
		if existing != "" {
			logInfo("Keeping existing key")
			return nil
		}
		return fmt.Errorf("no API key provided")
	}

	if err := settings.SetAPIKey(providerID, key); err != nil {
		return fmt.Errorf("saving API key: %w", err)
	}

	logSuccess(i18n.T("API key saved for %s"), info.name)
	fmt.Fprintf(os.Stderr, "\n  You can now use: %s\n\n", info.example)
	return nil
}

func authLoginCustomOpenAI() error {
	fmt.Fprintf(os.Stderr, "\n%sCustom OpenAI-Compatible Endpoint%s\n", colorBlue, colorReset)
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
	fmt.Fprintln(os.Stderr)

	scanner := bufio.NewScanner(os.Stdin)

	fmt.Fprintf(os.Stderr, "  Base URL (e.g. https://api.example.com/v1): ")
	if !scanner.Scan() {
		return fmt.Errorf("no input received")
	}
	baseURL := strings.TrimSpace(scanner.Text())
	if baseURL == "" {
		return fmt.Errorf("no base URL provided")
	}

	fmt.Fprintf(os.Stderr, "  API key (leave empty if none): ")
	if !scanner.Scan() {
		return fmt.Errorf("no input received")
	}
	key := strings.TrimSpace(scanner.Text())

	if err := settings.SetAPIKeyWithBaseURL(translate.ProviderCustomOpenAI, key, baseURL); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}

	logSuccess(i18n.T("API key saved for %s"), "custom endpoint")
	return nil
}

func newAuthLogoutCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if provider == "" {
				if err := settings.RemoveAll(); err != nil {
					return err
				}
				logSuccess("All credentials removed")
				return nil
			}
			if err := settings.Remove(provider); err != nil {
				return err
			}
			logSuccess("Credentials removed for %s", provider)
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider to log out (default: all)")

	return cmd
}

func newAuthListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show stored credentials",
		Run: func(cmd *cobra.Command, args []string) {
			store := settings.Load()
			if len(store) == 0 {
				logInfo(i18n.T("No credentials stored"))
				return
			}

			fmt.Fprintf(os.Stderr, "\n  Stored in %s\n\n", settings.FilePath())
			ids := make([]string, 0, len(store))
			for id := range store {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				info := store[id]
				line := fmt.Sprintf("  %-15s %s", id, settings.MaskKey(info.Key))
				if info.BaseURL != "" {
					line += "  (" + info.BaseURL + ")"
				}
				fmt.Fprintln(os.Stderr, line)
			}
			fmt.Fprintln(os.Stderr)
		},
	}

	return cmd
}

// ---------------------------------------------------------------------------
// Provider resolution
// ---------------------------------------------------------------------------

func resolveProvider(name, baseURL, model, proxy string, timeout time.Duration) translate.Provider {
	defaults := translate.DefaultProviders()

	var prov translate.Provider

	if p, ok := defaults[strings.ToLower(name)]; ok {
		prov = p
	} else {
		prov = translate.Provider{
			ID:      translate.ProviderCustomOpenAI,
			Name:    name,
			BaseURL: name,
			Timeout: 60 * time.Second,
		}
	}

	if baseURL != "" {
		prov.BaseURL = baseURL
	} else if prov.ID == translate.ProviderCustomOpenAI && prov.BaseURL == "" {
		// Check credentials store for base URL
		if storedURL := settings.GetBaseURL(prov.ID); storedURL != "" {
			prov.BaseURL = storedURL
		}
	}
	if model != "" {
		prov.Model = model
	}
	if proxy != "" {
		prov.Proxy = proxy
	}
	if timeout > 0 {
		prov.Timeout = timeout
	}

	return prov
}

// resolveAPIKey applies the lookup order: flag, environment, store.
func resolveAPIKey(providerID, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(settings.EnvAPIKey); env != "" {
		return env
	}
	return settings.GetAPIKey(providerID)
}

func validateProvider(prov translate.Provider) error {
	if prov.ID == "" || (prov.ID == translate.ProviderCustomOpenAI && prov.Name == "") {
		return fmt.Errorf("--provider is required (google, groq, ollama, custom-openai)")
	}

	if prov.Model == "" {
		modelExamples := map[string]string{
			translate.ProviderGoogle:       "gemini-2.5-flash, gemini-2.0-flash-exp, gemini-1.5-pro",
			translate.ProviderGroq:         "llama-3.3-70b-versatile, mixtral-8x7b-32768",
			translate.ProviderOllama:       "llama3.2, qwen2.5, mistral",
			translate.ProviderCustomOpenAI: "gpt-4o, gpt-4o-mini (depends on your endpoint)",
		}

		examples := modelExamples[prov.ID]
		if examples == "" {
			examples = "check provider documentation"
		}

		return fmt.Errorf("--model is required for provider '%s'\n\n"+
			"Example models for %s:\n  %s\n\n"+
			"Usage: --provider %s --model MODEL_NAME",
			prov.ID, prov.Name, examples, prov.ID)
	}

	switch prov.ID {
	case translate.ProviderGoogle, translate.ProviderGroq:
		if prov.APIKey == "" {
			return fmt.Errorf("provider '%s' requires an API key\n\n"+
				"Set one with: locsync auth login --provider %s\n"+
				"Or pass:      --api-key KEY\n"+
				"Or export:    %s=KEY",
				prov.ID, prov.ID, settings.EnvAPIKey)
		}
	case translate.ProviderCustomOpenAI:
		if prov.BaseURL == "" {
			return fmt.Errorf("provider 'custom-openai' requires --base-url (or: locsync auth login --provider custom-openai)")
		}
	}

	return nil
}

// ---------------------------------------------------------------------------
// Display helpers
// ---------------------------------------------------------------------------

// progressBar renders a colored bar: red below 34%, yellow below 100%,
// green at 100%. Percent is clamped to [0, 100].
func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := percent * width / 100
	color := colorYellow
	switch {
	case percent >= 100:
		color = colorGreen
	case percent < 34:
		color = colorRed
	}

	return color + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + colorReset +
		fmt.Sprintf(" %3d%%", percent)
}

// flagFromRegion converts a 2-letter region code to its emoji flag.
// Returns "" for anything that is not exactly two ASCII letters.
func flagFromRegion(region string) string {
	if len(region) != 2 {
		return ""
	}
	region = strings.ToUpper(region)
	r1, r2 := rune(region[0]), rune(region[1])
	if r1 < 'A' || r1 > 'Z' || r2 < 'A' || r2 > 'Z' {
		return ""
	}
	// Regional indicator symbols start at U+1F1E6 for 'A'.
	return string(rune(0x1F1E6+r1-'A')) + string(rune(0x1F1E6+r2-'A'))
}

// langFlag returns the emoji flag for a locale tag with an explicit
// region subtag, or "" when the tag has none.
func langFlag(tag string) string {
	return flagFromRegion(locales.Region(tag))
}

// langCell renders a locale tag padded to the given width, with its flag
// prefix when one exists.
func langCell(tag string, width int) string {
	cell := fmt.Sprintf("%-*s", width, tag)
	if flag := langFlag(tag); flag != "" {
		return flag + " " + cell
	}
	return cell
}

// intersectLanguages returns the members of filter present in available,
// preserving available's order.
func intersectLanguages(available, filter []string) []string {
	if len(filter) == 0 {
		return available
	}
	wanted := make(map[string]bool, len(filter))
	for _, lang := range filter {
		wanted[lang] = true
	}
	var out []string
	for _, lang := range available {
		if wanted[lang] {
			out = append(out, lang)
		}
	}
	return out
}

// filterOutLang returns langs without the given language.
func filterOutLang(langs []string, lang string) []string {
	var out []string
	for _, l := range langs {
		if l != lang {
			out = append(out, l)
		}
	}
	return out
}

// resolveLangFilter checks a --lang (or config) filter against the
// locales actually present under rootDir. The reference locale is never
// a target; tags with no directory are reported instead of silently
// ignored. An empty filter means all locales and needs no check.
func resolveLangFilter(rootDir, reference string, filter []string) ([]string, error) {
	filter = filterOutLang(filter, reference)
	if len(filter) == 0 {
		return nil, nil
	}

	available, err := locales.Discover(rootDir)
	if err != nil {
		return nil, err
	}

	known := intersectLanguages(available, filter)
	for _, lang := range filter {
		if !contains(known, lang) {
			logWarning(i18n.T("Locale %s not found in %s, skipping"), lang, rootDir)
		}
	}
	if len(known) == 0 {
		return nil, fmt.Errorf("none of the requested locales exist under %s", rootDir)
	}
	return known, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// splitLangs splits a comma-separated --lang value into tags.
func splitLangs(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// fileExists reports whether path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
