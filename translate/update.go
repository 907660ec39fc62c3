package translate

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"

	"github.com/locsync/locsync/jsondoc"
	"github.com/locsync/locsync/missing"
)

// UpdateOptions configures an update run over a translation root.
type UpdateOptions struct {
	// RootDir is the translation root (one subdirectory per locale).
	RootDir string
	// ReferenceTag is the source-of-truth locale.
	ReferenceTag string
	// Langs restricts the run to the listed target locales (empty = all).
	Langs []string
	// DryRun collects and reports missing entries without translating or
	// writing anything.
	DryRun bool
	// MaxConcurrent caps the number of locale pipelines running at once
	// (default 3).
	MaxConcurrent int
	// Translator performs the actual translation. Required unless DryRun.
	Translator Translator

	// OnLog receives informational messages.
	OnLog func(msg string)
	// OnWarning receives non-fatal notices.
	OnWarning func(msg string)
}

func (o *UpdateOptions) effectiveMaxConcurrent() int {
	if o.MaxConcurrent > 0 {
		return o.MaxConcurrent
	}
	return 3
}

func (o *UpdateOptions) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(fmt.Sprintf(format, args...))
	}
}

func (o *UpdateOptions) warn(format string, args ...any) {
	if o.OnWarning != nil {
		o.OnWarning(fmt.Sprintf(format, args...))
	}
}

// LocaleReport is the outcome of one locale's pipeline.
type LocaleReport struct {
	// Tag is the target locale.
	Tag string
	// Missing is the number of entries absent from the locale.
	Missing int
	// Written is the number of entries translated and merged to disk.
	Written int
	// Untranslated is the number of entries the provider did not return.
	Untranslated int
	// Entries holds the detected missing entries (populated on dry runs
	// for preview rendering).
	Entries []missing.Entry
	// Err is set when the pipeline failed. Detection or write failures
	// in one locale never abort the others.
	Err error
}

// UpToDate reports whether the locale needed no work.
func (r LocaleReport) UpToDate() bool {
	return r.Err == nil && r.Missing == 0
}

// UpdateReport aggregates the per-locale outcomes of a run.
type UpdateReport struct {
	ReferenceTag string
	DryRun       bool
	Locales      []LocaleReport
}

// Failed reports whether any locale pipeline ended in error.
func (r *UpdateReport) Failed() bool {
	for _, l := range r.Locales {
		if l.Err != nil {
			return true
		}
	}
	return false
}

// Update runs the full pipeline: discover locales, detect missing keys
// against the reference, translate them, and merge the results back into
// the locale files. On a dry run it stops after detection and reports
// what would be translated, touching nothing.
func Update(ctx context.Context, opts UpdateOptions) (*UpdateReport, error) {
	if !opts.DryRun && opts.Translator == nil {
		return nil, fmt.Errorf("no translator configured")
	}

	detected, err := missing.ForAll(opts.RootDir, opts.ReferenceTag, opts.effectiveMaxConcurrent())
	if err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(opts.Langs))
	for _, tag := range opts.Langs {
		wanted[tag] = true
	}

	report := &UpdateReport{ReferenceTag: opts.ReferenceTag, DryRun: opts.DryRun}
	var selected []missing.LocaleResult
	for _, res := range detected {
		if len(wanted) > 0 && !wanted[res.Tag] {
			continue
		}
		if res.Err != nil {
			report.Locales = append(report.Locales, LocaleReport{Tag: res.Tag, Err: res.Err})
			continue
		}
		selected = append(selected, res)
	}

	if opts.DryRun {
		for _, res := range selected {
			report.Locales = append(report.Locales, LocaleReport{
				Tag:     res.Tag,
				Missing: len(res.Entries),
				Entries: res.Entries,
			})
		}
		sortReport(report)
		return report, nil
	}

	// Each locale writes only into its own directory, so pipelines never
	// contend for the same file.
	sem := make(chan struct{}, opts.effectiveMaxConcurrent())
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, res := range selected {
		if len(res.Entries) == 0 {
			// Earlier iterations may already have goroutines appending.
			mu.Lock()
			report.Locales = append(report.Locales, LocaleReport{Tag: res.Tag})
			mu.Unlock()
			continue
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(res missing.LocaleResult) {
			defer func() {
				<-sem
				wg.Done()
			}()
			lr := updateLocale(ctx, opts, res)
			mu.Lock()
			report.Locales = append(report.Locales, lr)
			mu.Unlock()
		}(res)
	}
	wg.Wait()

	sortReport(report)
	return report, nil
}

// updateLocale translates one locale's missing entries and merges them
// into its files.
func updateLocale(ctx context.Context, opts UpdateOptions, res missing.LocaleResult) LocaleReport {
	lr := LocaleReport{Tag: res.Tag, Missing: len(res.Entries)}

	opts.log("%s: translating %d missing entries", res.Tag, len(res.Entries))

	translated, err := opts.Translator.Translate(ctx, res.Entries, res.Tag)
	if err != nil {
		lr.Err = err
		return lr
	}

	// Group the translated entries per target file so each file is read,
	// modified, and written exactly once.
	byFile := make(map[string][]missing.Entry)
	for _, e := range res.Entries {
		if _, ok := translated[e.Key]; !ok {
			lr.Untranslated++
			continue
		}
		byFile[e.Key.File] = append(byFile[e.Key.File], e)
	}

	localeDir := filepath.Join(opts.RootDir, res.Tag)
	for file, entries := range byFile {
		path := filepath.Join(localeDir, filepath.FromSlash(file))
		if err := mergeFile(path, entries, translated); err != nil {
			lr.Err = fmt.Errorf("merging %s: %w", file, err)
			return lr
		}
		lr.Written += len(entries)
	}

	if lr.Untranslated > 0 {
		opts.warn("%s: %d entries left untranslated by the provider", res.Tag, lr.Untranslated)
	}
	return lr
}

// mergeFile folds translated values into one locale file. The file is
// parsed (or started empty when absent), the new leaves are appended in
// flat order, and the rebuilt document is written back.
func mergeFile(path string, entries []missing.Entry, translated map[missing.Key]string) error {
	flat, err := flattenExisting(path)
	if err != nil {
		return err
	}
	for _, e := range entries {
		flat.Set(e.Key.Path, translated[e.Key])
	}
	return jsondoc.Unflatten(flat).WriteFile(path)
}

func flattenExisting(path string) (*jsondoc.FlatMap, error) {
	doc, err := jsondoc.ParseFile(path)
	if err != nil {
		if isNotExist(err) {
			return jsondoc.NewFlatMap(), nil
		}
		return nil, err
	}
	return jsondoc.Flatten(doc), nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func sortReport(report *UpdateReport) {
	sort.Slice(report.Locales, func(i, j int) bool {
		return report.Locales[i].Tag < report.Locales[j].Tag
	})
}
