// Package wizard builds a deployment configuration interactively. It
// asks only for the choices that differ between deployments; everything
// else is left to the defaults applied at load time.
package wizard

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/larsan/pgha/internal/config"
)

// Result holds the user's choices.
type Result struct {
	ClusterName     string
	Location        string
	ServerType      string
	PostgresVersion string
	Database        string
	DataVolumeGB    int
	SecretsEndpoint string
	SecretsBucket   string
}

var clusterNameRegex = regexp.MustCompile(`^[a-z][a-z0-9-]{1,31}$`)

func validateClusterName(name string) error {
	if !clusterNameRegex.MatchString(name) {
		return fmt.Errorf("use 2-32 lowercase letters, digits or dashes, starting with a letter")
	}
	return nil
}

func validateDatabase(name string) error {
	if name == "" {
		return nil
	}
	if strings.ContainsAny(name, " '\"") {
		return fmt.Errorf("database name must not contain spaces or quotes")
	}
	return nil
}

func validateEndpoint(endpoint string) error {
	if !strings.HasPrefix(endpoint, "https://") {
		return fmt.Errorf("endpoint must be an https:// URL")
	}
	return nil
}

// Run asks the questions and returns the answers. The context cancels
// the form, so Ctrl+C aborts cleanly.
func Run(ctx context.Context) (*Result, error) {
	result := &Result{
		Location:        config.DefaultLocation,
		ServerType:      config.DefaultServerType,
		PostgresVersion: config.DefaultPostgresVersion,
		DataVolumeGB:    config.DefaultDataVolumeGB,
		SecretsEndpoint: "https://fsn1.your-objectstorage.com",
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Cluster name").
				Description("Prefix for every cloud resource (DNS-safe, lowercase)").
				Placeholder("pg").
				Value(&result.ClusterName).
				Validate(validateClusterName),
		),

		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Location").
				Description("Hetzner Cloud datacenter location").
				Options(
					huh.NewOption("Falkenstein, Germany (fsn1)", "fsn1"),
					huh.NewOption("Nuremberg, Germany (nbg1)", "nbg1"),
					huh.NewOption("Helsinki, Finland (hel1)", "hel1"),
				).
				Value(&result.Location),
		),

		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Server type").
				Description("Both nodes use the same type").
				Options(
					huh.NewOption("CX22 - 2 vCPU, 4GB RAM", "cx22"),
					huh.NewOption("CX32 - 4 vCPU, 8GB RAM", "cx32"),
					huh.NewOption("CX42 - 8 vCPU, 16GB RAM", "cx42"),
					huh.NewOption("CX52 - 16 vCPU, 32GB RAM", "cx52"),
				).
				Value(&result.ServerType),

			huh.NewSelect[int]().
				Title("Data volume size").
				Description("Attached volume holding the database files").
				Options(
					huh.NewOption("50 GB", 50),
					huh.NewOption("100 GB", 100),
					huh.NewOption("250 GB", 250),
					huh.NewOption("500 GB", 500),
				).
				Value(&result.DataVolumeGB),
		),

		huh.NewGroup(
			huh.NewSelect[string]().
				Title("PostgreSQL version").
				Options(
					huh.NewOption("PostgreSQL 16", "16"),
					huh.NewOption("PostgreSQL 15", "15"),
				).
				Value(&result.PostgresVersion),

			huh.NewInput().
				Title("Application database").
				Description("Created on the primary, empty for the default").
				Placeholder(config.DefaultDatabase).
				Value(&result.Database).
				Validate(validateDatabase),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("Secret store endpoint").
				Description("S3-compatible object storage holding generated credentials").
				Value(&result.SecretsEndpoint).
				Validate(validateEndpoint),

			huh.NewInput().
				Title("Secret bucket").
				Description("Empty derives <cluster>-secrets").
				Value(&result.SecretsBucket),
		),
	).WithTheme(huh.ThemeBase())

	if err := form.RunWithContext(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// ToConfig converts the answers into a Config. Defaults and validation
// happen at load time, not here.
func (r *Result) ToConfig() *config.Config {
	return &config.Config{
		ClusterName: r.ClusterName,
		Location:    r.Location,
		Nodes: config.NodeConfig{
			ServerType: r.ServerType,
			Volumes:    config.VolumeSizes{Data: r.DataVolumeGB},
		},
		Postgres: config.PostgresConfig{
			Version:  r.PostgresVersion,
			Database: r.Database,
		},
		Secrets: config.SecretsConfig{
			Endpoint: r.SecretsEndpoint,
			Bucket:   r.SecretsBucket,
		},
	}
}
