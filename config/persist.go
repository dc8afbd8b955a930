package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/data4good/donorscope/errors"
)

// createBackup creates rotating backups (.back1, .back2, .back3) before modifying config
func createBackup(configPath string) error {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil // No file to backup
	}

	// Rotate backups: .back3 -> delete, .back2 -> .back3, .back1 -> .back2, current -> .back1
	back3 := configPath + ".back3"
	back2 := configPath + ".back2"
	back1 := configPath + ".back1"

	if err := os.Remove(back3); err != nil && !os.IsNotExist(err) {
		fmt.Printf("failed to delete old backup %s: %v\n", back3, err)
	}

	if _, err := os.Stat(back2); err == nil {
		if err := os.Rename(back2, back3); err != nil {
			return errors.Wrap(err, "failed to rotate .back2 to .back3")
		}
	}

	if _, err := os.Stat(back1); err == nil {
		if err := os.Rename(back1, back2); err != nil {
			return errors.Wrap(err, "failed to rotate .back1 to .back2")
		}
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config for backup")
	}

	if err := os.WriteFile(back1, content, 0644); err != nil {
		return errors.Wrap(err, "failed to create .back1")
	}

	return nil
}

// Save writes the configuration to the given path as TOML, rotating backups
// of any existing file first.
func Save(cfg *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	if err := createBackup(configPath); err != nil {
		return errors.Wrap(err, "failed to back up existing config")
	}

	// go-toml/v2 serializes via struct field names; mapstructure tags are
	// viper's concern on the read side, so marshal a tagged mirror instead.
	out := tomlConfig{
		Input: tomlInput{
			Dir:     cfg.Input.Dir,
			Sources: map[string]tomlSource{},
		},
		Output: tomlOutput{Dir: cfg.Output.Dir, PDFReport: cfg.Output.PDFReport},
		Pipeline: tomlPipeline{
			Source:     cfg.Pipeline.Source,
			PersonaKey: cfg.Pipeline.PersonaKey,
		},
		Persona: tomlPersona{
			AmountThreshold:  cfg.Persona.AmountThreshold,
			DormancyMaxYears: cfg.Persona.DormancyMaxYears,
			ReferenceYear:    cfg.Persona.ReferenceYear,
		},
		Database: tomlDatabase{Path: cfg.Database.Path},
	}
	for name, src := range cfg.Input.Sources {
		out.Input.Sources[name] = tomlSource{
			File:     src.File,
			Required: src.Required,
			Renames:  src.Renames,
		}
	}
	for _, hop := range cfg.Pipeline.Hops {
		out.Pipeline.Hops = append(out.Pipeline.Hops, tomlHop{
			Left:     hop.Left,
			LeftKey:  hop.LeftKey,
			Right:    hop.Right,
			RightKey: hop.RightKey,
			FoldCase: hop.FoldCase,
		})
	}

	data, err := toml.Marshal(out)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write config to %s", configPath)
	}

	return nil
}

type tomlConfig struct {
	Input    tomlInput    `toml:"input"`
	Output   tomlOutput   `toml:"output"`
	Pipeline tomlPipeline `toml:"pipeline"`
	Persona  tomlPersona  `toml:"persona"`
	Database tomlDatabase `toml:"database"`
}

type tomlInput struct {
	Dir     string                `toml:"dir"`
	Sources map[string]tomlSource `toml:"sources"`
}

type tomlSource struct {
	File     string            `toml:"file"`
	Required []string          `toml:"required"`
	Renames  map[string]string `toml:"renames"`
}

type tomlOutput struct {
	Dir       string `toml:"dir"`
	PDFReport bool   `toml:"pdf_report"`
}

type tomlPipeline struct {
	Source     string    `toml:"source"`
	Hops       []tomlHop `toml:"hops"`
	PersonaKey string    `toml:"persona_key"`
}

type tomlHop struct {
	Left     string `toml:"left"`
	LeftKey  string `toml:"left_key"`
	Right    string `toml:"right"`
	RightKey string `toml:"right_key"`
	FoldCase bool   `toml:"fold_case"`
}

type tomlPersona struct {
	AmountThreshold  float64 `toml:"amount_threshold"`
	DormancyMaxYears int     `toml:"dormancy_max_years"`
	ReferenceYear    int     `toml:"reference_year"`
}

type tomlDatabase struct {
	Path string `toml:"path"`
}
