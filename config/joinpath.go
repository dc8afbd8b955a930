package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/data4good/donorscope/errors"
)

// joinPathFile is the shape of a standalone join-path override file.
//
//	source: tracking
//	persona_key: Id
//	hops:
//	  - left: tracking
//	    left_key: CONTACT
//	    right: contacts
//	    right_key: ID
type joinPathFile struct {
	Source     string      `yaml:"source"`
	PersonaKey string      `yaml:"persona_key"`
	Hops       []HopConfig `yaml:"hops"`
}

// LoadJoinPath reads a YAML join-path file and overlays it onto cfg.
// This is the escape hatch for trying a new bridge hypothesis between
// identifier namespaces without touching the main config.
func LoadJoinPath(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read join path file %s", path)
	}

	var jp joinPathFile
	if err := yaml.Unmarshal(data, &jp); err != nil {
		return errors.Wrapf(err, "failed to parse join path file %s", path)
	}

	if len(jp.Hops) == 0 {
		return errors.Newf("join path file %s declares no hops", path)
	}

	cfg.Pipeline.Hops = jp.Hops
	if jp.Source != "" {
		cfg.Pipeline.Source = jp.Source
	}
	if jp.PersonaKey != "" {
		cfg.Pipeline.PersonaKey = jp.PersonaKey
	}

	return cfg.Validate()
}
