// Package config — .locsync.yaml configuration file support.
//
// When a .locsync.yaml file exists in the translation root (or the
// current directory), its values fill in defaults for flags the user did
// not pass on the command line. Flags always win over the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/locsync/locsync/locales"
)

// FileName is the default config file name.
const FileName = ".locsync.yaml"

// File is the top-level .locsync.yaml structure.
type File struct {
	// Reference is the default reference locale tag.
	Reference string `yaml:"reference,omitempty"`
	// Languages restricts updates to the listed target locales.
	Languages []string `yaml:"languages,omitempty"`
	// Provider holds default AI provider settings.
	Provider ProviderConfig `yaml:"provider,omitempty"`
}

// ProviderConfig holds the provider defaults from the config file.
type ProviderConfig struct {
	// Name is the provider identifier (google, groq, ollama, custom-openai).
	Name string `yaml:"name,omitempty"`
	// Model is the model identifier.
	Model string `yaml:"model,omitempty"`
	// BaseURL overrides the provider's API base URL.
	BaseURL string `yaml:"base_url,omitempty"`
	// ChunkSize is the number of entries per request.
	ChunkSize int `yaml:"chunk_size,omitempty"`
	// MaxConcurrent caps the concurrent locale pipelines.
	MaxConcurrent int `yaml:"max_concurrent,omitempty"`
}

// Load reads and validates .locsync.yaml from the given directory.
// Returns nil if no config file exists.
func Load(dir string) (*File, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if f.Reference != "" && !locales.IsTag(f.Reference) {
		return nil, fmt.Errorf("%s: reference %q is not a locale tag", path, f.Reference)
	}
	for _, lang := range f.Languages {
		if !locales.IsTag(lang) {
			return nil, fmt.Errorf("%s: language %q is not a locale tag", path, lang)
		}
	}
	if f.Provider.ChunkSize < 0 {
		return nil, fmt.Errorf("%s: chunk_size must be positive", path)
	}
	if f.Provider.MaxConcurrent < 0 {
		return nil, fmt.Errorf("%s: max_concurrent must be positive", path)
	}

	return &f, nil
}

// Discover looks for .locsync.yaml first in the translation root, then in
// the current directory. Returns nil when neither has one.
func Discover(rootDir string) (*File, error) {
	if f, err := Load(rootDir); err != nil || f != nil {
		return f, err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, nil
	}
	return Load(cwd)
}
