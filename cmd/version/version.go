package version

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/cryptoscan/internal/config"
	"github.com/scan-io-git/cryptoscan/pkg/catalog"
)

var (
	AppConfig     *config.Config
	CoreVersion   = "unknown"
	GolangVersion = "unknown"
	BuildTime     = "unknown"

	asJSON bool
)

// Versions holds version information for the binary and its built-in catalog.
type Versions struct {
	Version        string `json:"version"`
	GolangVersion  string `json:"golang_version"`
	BuildTime      string `json:"build_time"`
	CatalogVersion string `json:"catalog_version"`
	CatalogDigest  string `json:"catalog_digest"`
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// NewVersionCmd creates a new cobra.Command for the version command.
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                   "version [--json]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Print the version of the application and its built-in catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printVersionInfo(cmd.OutOrStdout(), collectVersions(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version information as JSON.")
	return cmd
}

// collectVersions gathers build metadata. Catalog fields fall back to "unknown".
func collectVersions() Versions {
	v := Versions{
		Version:        CoreVersion,
		GolangVersion:  GolangVersion,
		BuildTime:      BuildTime,
		CatalogVersion: "unknown",
		CatalogDigest:  "unknown",
	}
	cat, err := catalog.Default()
	if err != nil {
		return v
	}
	v.CatalogVersion = cat.Version()
	if digest, err := cat.Digest(); err == nil {
		v.CatalogDigest = digest
	}
	return v
}

// printVersionInfo prints the version information as text or JSON.
func printVersionInfo(w io.Writer, v Versions, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	fmt.Fprintf(w, "Core Version: v%s\n", v.Version)
	fmt.Fprintf(w, "Catalog Version: %s (sha3-256 %s)\n", v.CatalogVersion, v.CatalogDigest)
	fmt.Fprintf(w, "Go Version: %s\n", v.GolangVersion)
	fmt.Fprintf(w, "Build Time: %s\n", v.BuildTime)
	return nil
}
