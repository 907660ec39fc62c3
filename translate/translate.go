// Package translate sends missing translation entries to an AI provider
// and parses the line-oriented results back into per-key texts.
package translate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/locsync/locsync/locales"
	"github.com/locsync/locsync/missing"
)

// Translator produces target-language texts for a batch of entries.
// Implementations may return a partial mapping: keys absent from the
// result stay untranslated and are reported, not failed.
type Translator interface {
	Translate(ctx context.Context, entries []missing.Entry, targetTag string) (map[missing.Key]string, error)
}

// Options configures an AI-backed Translator.
type Options struct {
	// Provider is the service configuration.
	Provider Provider
	// ChunkSize is the number of entries per request (default 50).
	ChunkSize int
	// MaxRetries is the retry count per request (default 3).
	MaxRetries int
	// RequestDelay is an optional pause between chunk requests.
	RequestDelay time.Duration
	// Verbose enables debug logging of requests.
	Verbose bool

	// OnProgress is called after each chunk with done and total counts.
	OnProgress func(done, total int)
	// OnWarning receives non-fatal notices (skipped response lines).
	OnWarning func(msg string)
}

func (o *Options) effectiveChunkSize() int {
	if o.ChunkSize > 0 {
		return o.ChunkSize
	}
	return 50
}

func (o *Options) effectiveMaxRetries() int {
	if o.MaxRetries > 0 {
		return o.MaxRetries
	}
	return 3
}

func (o *Options) warn(msg string) {
	if o.OnWarning != nil {
		o.OnWarning(msg)
	}
}

func (o *Options) progress(done, total int) {
	if o.OnProgress != nil {
		o.OnProgress(done, total)
	}
}

// aiTranslator is the HTTP-provider-backed Translator.
type aiTranslator struct {
	opts Options
	rl   *rateLimitState
}

// New returns a Translator backed by the configured AI provider.
func New(opts Options) Translator {
	return &aiTranslator{opts: opts, rl: &rateLimitState{}}
}

// Translate sends the entries in chunks and merges the parsed results.
// A chunk whose response parses to nothing is an error; individual
// unparseable lines within an otherwise usable response are skipped and
// reported through OnWarning.
func (t *aiTranslator) Translate(ctx context.Context, entries []missing.Entry, targetTag string) (map[missing.Key]string, error) {
	if len(entries) == 0 {
		return map[missing.Key]string{}, nil
	}

	chunks := chunkEntries(entries, t.opts.effectiveChunkSize())
	results := make(map[missing.Key]string)

	for i, chunk := range chunks {
		if i > 0 && t.opts.RequestDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(t.opts.RequestDelay):
			}
		}

		system := buildSystemPrompt(targetTag)
		user := buildUserPrompt(chunk)

		text, err := callProvider(ctx, t.opts.Provider, system, user, t.rl, t.opts.effectiveMaxRetries(), t.opts.Verbose)
		if err != nil {
			return nil, fmt.Errorf("translating chunk %d/%d for %s: %w", i+1, len(chunks), targetTag, err)
		}

		parsed, skipped := ParseResponse(text)
		if skipped > 0 {
			t.opts.warn(fmt.Sprintf("%s: skipped %d malformed response line(s) in chunk %d/%d", targetTag, skipped, i+1, len(chunks)))
		}
		if len(parsed) == 0 {
			return nil, fmt.Errorf("chunk %d/%d for %s: no usable lines in response", i+1, len(chunks), targetTag)
		}

		// Only accept keys we actually asked for; models sometimes echo
		// extra or rewritten keys.
		requested := make(map[missing.Key]bool, len(chunk))
		for _, e := range chunk {
			requested[e.Key] = true
		}
		for k, v := range parsed {
			if requested[k] {
				results[k] = v
			}
		}

		t.opts.progress(len(results), len(entries))
	}

	return results, nil
}

// buildSystemPrompt describes the task and the exact output format.
func buildSystemPrompt(targetTag string) string {
	name := locales.DisplayName(targetTag)
	return fmt.Sprintf(`You are a professional software localization translator.
Translate user interface strings into %s (%s).

Rules:
- Output one line per input line, in the form "key: translation".
- Keep the key before the colon exactly as given, including the ::: part.
- Preserve placeholders like {{name}}, %%s, %%d, {0} unchanged.
- Do not add explanations, numbering, or code fences.`, name, targetTag)
}

// buildUserPrompt renders one "file:::path: source" line per entry.
func buildUserPrompt(entries []missing.Entry) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.Key.String())
		b.WriteString(": ")
		b.WriteString(e.Source)
		b.WriteByte('\n')
	}
	return b.String()
}

// ParseResponse parses line-oriented "file:::path: translation" output.
// Lines without the key separator or a value are counted as skipped
// rather than failing the batch. Code fences and blank lines are ignored
// silently.
func ParseResponse(text string) (map[missing.Key]string, int) {
	results := make(map[missing.Key]string)
	skipped := 0

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "```") {
			continue
		}

		sep := strings.Index(trimmed, missing.Separator)
		if sep <= 0 {
			skipped++
			continue
		}
		file := trimmed[:sep]
		rest := trimmed[sep+len(missing.Separator):]

		// The JSON path runs up to the first colon after the separator.
		colon := strings.Index(rest, ":")
		if colon <= 0 {
			skipped++
			continue
		}
		path := strings.TrimSpace(rest[:colon])
		value := strings.TrimSpace(rest[colon+1:])
		if path == "" || value == "" {
			skipped++
			continue
		}

		results[missing.Key{File: file, Path: path}] = value
	}

	return results, skipped
}

// chunkEntries splits entries into slices of at most size elements.
func chunkEntries(entries []missing.Entry, size int) [][]missing.Entry {
	if size <= 0 || len(entries) <= size {
		return [][]missing.Entry{entries}
	}
	var chunks [][]missing.Entry
	for start := 0; start < len(entries); start += size {
		end := start + size
		if end > len(entries) {
			end = len(entries)
		}
		chunks = append(chunks, entries[start:end])
	}
	return chunks
}
