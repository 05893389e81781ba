package persist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultCommitMessage is used for commits made by GitHub saves.
const DefaultCommitMessage = "chore: Update training plan via web app"

// Settings names the GitHub file the plan is saved to. The access token is
// never part of Settings; it comes from the environment.
type Settings struct {
	Owner         string `yaml:"owner"`
	Repo          string `yaml:"repo"`
	Branch        string `yaml:"branch"`
	Path          string `yaml:"path"`
	CommitMessage string `yaml:"commit_message,omitempty"`
}

// LoadSettings reads settings from a YAML file. A missing file yields empty
// settings.
func LoadSettings(path string) (Settings, error) {
	var s Settings
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

// SaveSettings writes s to path as YAML.
func SaveSettings(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Merge returns s with every non-empty field of override applied.
func (s Settings) Merge(override Settings) Settings {
	if override.Owner != "" {
		s.Owner = override.Owner
	}
	if override.Repo != "" {
		s.Repo = override.Repo
	}
	if override.Branch != "" {
		s.Branch = override.Branch
	}
	if override.Path != "" {
		s.Path = override.Path
	}
	if override.CommitMessage != "" {
		s.CommitMessage = override.CommitMessage
	}
	return s
}

// WithDefaults fills the branch, path and commit message when unset.
func (s Settings) WithDefaults() Settings {
	if s.Branch == "" {
		s.Branch = "main"
	}
	if s.Path == "" {
		s.Path = "public/plan.csv"
	}
	if s.CommitMessage == "" {
		s.CommitMessage = DefaultCommitMessage
	}
	return s
}

// Validate reports missing repository coordinates.
func (s Settings) Validate() error {
	var missing []string
	if s.Owner == "" {
		missing = append(missing, "owner")
	}
	if s.Repo == "" {
		missing = append(missing, "repo")
	}
	if s.Path == "" {
		missing = append(missing, "path")
	}
	if len(missing) > 0 {
		return fmt.Errorf("github settings: missing %s", strings.Join(missing, ", "))
	}
	return nil
}
