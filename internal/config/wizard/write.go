package wizard

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/larsan/pgha/internal/config"
)

// WriteYAML persists the configuration. The file round-trips through
// config.LoadFile, which applies the remaining defaults.
func WriteYAML(cfg *config.Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := "# pgha deployment configuration. Unset fields use built-in defaults.\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
