package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/larsan/pgha/internal/config/wizard"
)

// Factory function variables for init - replaced in tests.
var (
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}
	runWizard   = wizard.Run
	writeConfig = wizard.WriteYAML
)

// Init runs the configuration wizard and writes the result.
func Init(ctx context.Context, outputPath string) error {
	if fileExists(outputPath) {
		fmt.Printf("Warning: %s already exists and will be overwritten.\n\n", outputPath)
	}

	result, err := runWizard(ctx)
	if err != nil {
		return fmt.Errorf("wizard canceled: %w", err)
	}

	if err := writeConfig(result.ToConfig(), outputPath); err != nil {
		return err
	}

	fmt.Printf("\nConfiguration saved to %s.\n\n", outputPath)
	fmt.Println("Next steps:")
	fmt.Println("  1. export HCLOUD_TOKEN=<your-token>")
	fmt.Println("  2. export PGHA_S3_ACCESS_KEY=<key> PGHA_S3_SECRET_KEY=<secret>")
	fmt.Printf("  3. pgha provision -c %s\n", outputPath)
	return nil
}
