package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/kilianp07/transship/core/factory"
	"github.com/kilianp07/transship/core/heuristics"
)

// PolicyConfig selects the policy evaluated by the evaluate command.
type PolicyConfig struct {
	Type string         `json:"type"`
	Conf map[string]any `json:"conf"`
	// Table is the recorded policy file read by the "replay" policy.
	Table string `json:"table"`
}

// Module returns the factory configuration of the policy.
func (c PolicyConfig) Module() factory.ModuleConfig {
	return factory.ModuleConfig{Type: c.Type, Conf: c.Conf}
}

// Validate checks that the policy type is known. An empty type is allowed
// since only evaluation runs need a policy.
func (c PolicyConfig) Validate() error {
	if c.Type == "" {
		return nil
	}
	if !slices.Contains(heuristics.Registry.Names(), c.Type) {
		return fmt.Errorf("%w %q", heuristics.ErrUnknownPolicy, c.Type)
	}
	if c.Type == "replay" && c.Table == "" {
		return errors.New("replay policy requires a table path")
	}
	return nil
}
