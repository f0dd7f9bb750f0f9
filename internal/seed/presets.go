package seed

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed presets/*.yml
var presetFiles embed.FS

// Account is a fixed, known login created by a preset.
type Account struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// Preset describes how much demo data to generate.
type Preset struct {
	Name            string    `yaml:"name"`
	Users           int       `yaml:"users"`
	PostsPerUser    int       `yaml:"posts_per_user"`
	CommentsPerPost int       `yaml:"comments_per_post"`
	LikeRatio       float64   `yaml:"like_ratio"`
	Accounts        []Account `yaml:"accounts"`
}

// ParsePreset decodes and validates a YAML preset.
func ParsePreset(raw []byte) (*Preset, error) {
	var p Preset
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode preset: %w", err)
	}
	if p.Users < 0 || p.PostsPerUser < 0 || p.CommentsPerPost < 0 {
		return nil, fmt.Errorf("preset %q: counts must not be negative", p.Name)
	}
	if p.LikeRatio < 0 || p.LikeRatio > 1 {
		return nil, fmt.Errorf("preset %q: like_ratio must be between 0 and 1", p.Name)
	}
	for i, a := range p.Accounts {
		if !validUsername(a.Username) {
			return nil, fmt.Errorf("preset %q: account %d has invalid username %q", p.Name, i, a.Username)
		}
	}
	return &p, nil
}

// LoadPreset reads an embedded preset by name.
func LoadPreset(name string) (*Preset, error) {
	raw, err := presetFiles.ReadFile(path.Join("presets", name+".yml"))
	if err != nil {
		return nil, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return ParsePreset(raw)
}

// PresetNames lists the embedded presets.
func PresetNames() []string {
	entries, err := fs.ReadDir(presetFiles, "presets")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yml"))
	}
	sort.Strings(names)
	return names
}
