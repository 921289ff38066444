package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
)

// Source says where a config value came from.
type Source struct {
	Kind   SourceKind
	Name   string // for default
	File   string
	Line   int
	Column int
}

type LoadResult struct {
	Config  *Config
	Sources map[string]Source // YAML path -> file that set it last
	Files   []string          // main file first, then drop-ins
}

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "WINSTACK_CONFIG"

// DropInDirName is the directory next to the main file whose *.yaml
// fragments are applied after it, in lexical order.
const DropInDirName = "config.d"

// DefaultConfigPath returns $WINSTACK_CONFIG, or ~/.config/winstack/config.yaml.
func DefaultConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "winstack", "config.yaml"), nil
}

// DropInDir returns the drop-in directory that belongs to path.
func DropInDir(path string) string {
	return filepath.Join(filepath.Dir(path), DropInDirName)
}

// Load reads the configuration from the standard location.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithSources is Load plus per-key sources for `config explain`.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath layers path and then its drop-ins over the defaults. Missing
// files are skipped, so an absent config yields the defaults.
func LoadFromPath(path string) (*LoadResult, error) {
	files, err := configFiles(path)
	if err != nil {
		return nil, err
	}

	raw := RawConfig{}
	sources := map[string]Source{}
	for _, file := range files {
		layer, layerSources, err := readLayer(file)
		if err != nil {
			return nil, err
		}
		raw = raw.merge(layer)
		for key, src := range layerSources {
			sources[key] = src
		}
	}

	cfg, err := BuildEffectiveConfig(raw)
	if err != nil {
		return nil, attachSourceContext(err, sources)
	}
	if err := cfg.Validate(); err != nil {
		return nil, attachSourceContext(err, sources)
	}
	return &LoadResult{Config: cfg, Sources: sources, Files: files}, nil
}

// configFiles lists the files that make up the config at path, in the order
// they are applied.
func configFiles(path string) ([]string, error) {
	var files []string
	if _, err := os.Stat(path); err == nil {
		files = append(files, path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	entries, err := os.ReadDir(DropInDir(path))
	if errors.Is(err, fs.ErrNotExist) {
		return files, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read drop-ins: %w", err)
	}
	var dropIns []string
	for _, ent := range entries {
		if ent.IsDir() || !isYAMLName(ent.Name()) {
			continue
		}
		dropIns = append(dropIns, filepath.Join(DropInDir(path), ent.Name()))
	}
	slices.Sort(dropIns)
	return append(files, dropIns...), nil
}

func isYAMLName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return !strings.HasPrefix(name, ".")
	}
	return false
}

// readLayer decodes one file strictly and records the position of every key
// it sets.
func readLayer(file string) (RawConfig, map[string]Source, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return RawConfig{}, nil, fmt.Errorf("%s: failed to read: %w", file, err)
	}

	var raw RawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return RawConfig{}, nil, fmt.Errorf("%s: %w", file, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return RawConfig{}, nil, fmt.Errorf("%s: failed to parse yaml: %w", file, err)
	}
	sources := map[string]Source{}
	if len(doc.Content) > 0 {
		recordPositions(doc.Content[0], file, "", sources)
	}
	return raw, sources, nil
}

func recordPositions(node *yaml.Node, file, prefix string, out map[string]Source) {
	if node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i].Value, node.Content[i+1]
		if prefix != "" {
			key = prefix + "." + key
		}
		out[key] = Source{Kind: SourceFile, File: file, Line: val.Line, Column: val.Column}
		recordPositions(val, file, key, out)
	}
}

func attachSourceContext(err error, sources map[string]Source) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	if src, ok := sources[verr.Path]; ok {
		verr.Source = src
	}
	return verr
}
