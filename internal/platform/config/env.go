package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv fills target from GRIDLINK_-prefixed environment variables via
// its env tags. Commands parse flags afterwards so flags win over env.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env config: %w", err)
	}
	return nil
}
