package config

import (
	"github.com/data4good/donorscope/errors"
)

// Validate checks the configuration for structural problems that would make
// a run meaningless: hops referencing undeclared sources, a broken hop chain,
// or a missing persona key. File existence is the loader's concern.
func (c *Config) Validate() error {
	if c.Output.Dir == "" {
		return errors.New("output.dir must not be empty")
	}
	if c.Pipeline.Source == "" {
		return errors.New("pipeline.source must name a declared source")
	}
	if _, ok := c.Input.Sources[c.Pipeline.Source]; !ok {
		return errors.Newf("pipeline.source %q is not a declared input source", c.Pipeline.Source)
	}
	if len(c.Pipeline.Hops) == 0 {
		return errors.WithHint(
			errors.New("pipeline.hops is empty"),
			"declare at least one hop so campaign rows can reach the persona table",
		)
	}

	for i, hop := range c.Pipeline.Hops {
		if _, ok := c.Input.Sources[hop.Left]; !ok {
			return errors.Newf("hop %d references undeclared left relation %q", i, hop.Left)
		}
		if _, ok := c.Input.Sources[hop.Right]; !ok {
			return errors.Newf("hop %d references undeclared right relation %q", i, hop.Right)
		}
		if hop.LeftKey == "" || hop.RightKey == "" {
			return errors.Newf("hop %d must declare both key columns", i)
		}
	}

	// The right relation of hop i must be the left relation of hop i+1
	// (or the same relation when a hop re-keys within it).
	if c.Pipeline.Hops[0].Left != c.Pipeline.Source {
		return errors.Newf("hop 0 left relation %q must be the pipeline source %q",
			c.Pipeline.Hops[0].Left, c.Pipeline.Source)
	}
	for i := 1; i < len(c.Pipeline.Hops); i++ {
		prev, cur := c.Pipeline.Hops[i-1], c.Pipeline.Hops[i]
		if cur.Left != prev.Right {
			return errors.Newf("hop %d left relation %q does not chain from hop %d right relation %q",
				i, cur.Left, i-1, prev.Right)
		}
	}

	if c.Pipeline.PersonaKey == "" {
		return errors.New("pipeline.persona_key must name the joined column the persona table is keyed by")
	}

	return nil
}
