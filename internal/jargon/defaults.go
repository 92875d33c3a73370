package jargon

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/runq/internal/store"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type defaultsFile struct {
	Templates []struct {
		Keys     []string `yaml:"keys"`
		Guard    string   `yaml:"guard"`
		Template string   `yaml:"template"`
	} `yaml:"templates"`
}

// DefaultAliases maps common short names to the identifiers most execution
// services report. Installed on first run; users can delete or extend them.
var DefaultAliases = map[string]string{
	"c":           "c-clang",
	"c#":          "cs-csc",
	"c++":         "cpp-clang",
	"cpp":         "cpp-clang",
	"cs":          "cs-csc",
	"f#":          "fs-core",
	"fs":          "fs-core",
	"java":        "java-openjdk",
	"javascript":  "javascript-node",
	"js":          "javascript-node",
	"objective-c": "objective-c-clang",
	"py":          "python3",
	"python":      "python3",
	"swift":       "swift4",
}

// Defaults returns the built-in jargon templates, one entry per key.
func Defaults() ([]store.JargonEntry, error) {
	var file defaultsFile
	if err := yaml.Unmarshal(defaultsYAML, &file); err != nil {
		return nil, fmt.Errorf("failed to parse default jargon: %w", err)
	}

	var entries []store.JargonEntry
	for _, tpl := range file.Templates {
		for _, key := range tpl.Keys {
			entries = append(entries, store.JargonEntry{
				Key:      key,
				Template: tpl.Template,
				Guard:    tpl.Guard,
			})
		}
	}
	return entries, nil
}
