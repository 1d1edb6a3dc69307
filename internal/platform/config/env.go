// Package config loads HOTELIO_* settings from the environment.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv fills target from its env struct tags. Nested and embedded
// structs are walked, so shared blocks such as broker settings can be
// embedded in each command config.
func ParseEnv(target any) error {
	if target == nil {
		return errors.New("parse env: target is required")
	}
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
