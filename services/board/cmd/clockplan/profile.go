package main

import (
	"bringup-go/services/board"
	"bringup-go/types"

	"gopkg.in/yaml.v2"
)

// loadProfile decodes a YAML board profile over the compiled-in board, so a
// profile only needs the fields it changes. Unknown keys are rejected.
func loadProfile(raw []byte) (types.BoardConfig, error) {
	cfg := board.Default
	if err := yaml.UnmarshalStrict(raw, &cfg); err != nil {
		return types.BoardConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return types.BoardConfig{}, err
	}
	return cfg, nil
}
