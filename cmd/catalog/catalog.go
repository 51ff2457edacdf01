package catalogcmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/cryptoscan/internal/config"
	"github.com/scan-io-git/cryptoscan/internal/logger"
	"github.com/scan-io-git/cryptoscan/pkg/catalog"
	"github.com/scan-io-git/cryptoscan/pkg/shared/errors"
	"github.com/scan-io-git/cryptoscan/pkg/shared/files"
)

// RunOptionsCatalog holds the arguments for the catalog subcommands.
type RunOptionsCatalog struct {
	CatalogPath string
	OutputPath  string
}

var (
	AppConfig           *config.Config
	catalogOptions      RunOptionsCatalog
	exampleCatalogUsage = `  # Printing the built-in catalog
  cryptoscan catalog export

  # Saving the built-in catalog as a starting point for a custom one
  cryptoscan catalog export --output /path/to/catalog.yaml

  # Normalizing a custom catalog
  cryptoscan catalog export --catalog /path/to/catalog.yaml

  # Checking a custom catalog before using it
  cryptoscan catalog validate /path/to/catalog.yaml`

	// CatalogCmd groups the catalog subcommands.
	CatalogCmd = &cobra.Command{
		Use:                   "catalog [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Example:               exampleCatalogUsage,
		Short:                 "Inspects and validates algorithm catalogs",
	}

	exportCmd = &cobra.Command{
		Use:                   "export [--catalog PATH] [--output/-o PATH]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Writes the effective catalog as YAML",
		Args:                  cobra.NoArgs,
		RunE:                  runExportCommand,
	}

	validateCmd = &cobra.Command{
		Use:                   "validate PATH",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Loads a catalog file and reports the first error",
		Args:                  cobra.ExactArgs(1),
		RunE:                  runValidateCommand,
	}
)

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

func runExportCommand(cmd *cobra.Command, args []string) error {
	logger := logger.NewLogger(AppConfig, "core-catalog")

	path := catalogOptions.CatalogPath
	if path == "" && AppConfig != nil {
		path = AppConfig.Engine.CatalogPath
	}

	cat, err := load(path)
	if err != nil {
		logger.Error("failed to load catalog", "error", err)
		return errors.NewCommandError(err, errors.ExitFailure)
	}

	data, err := cat.Marshal()
	if err != nil {
		logger.Error("failed to export catalog", "error", err)
		return errors.NewCommandError(err, errors.ExitFailure)
	}

	if catalogOptions.OutputPath == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	fullPath, _, err := files.DetermineFileFullPath(catalogOptions.OutputPath, "catalog.yaml")
	if err != nil {
		logger.Error("failed to resolve output path", "error", err)
		return errors.NewCommandError(err, errors.ExitFailure)
	}
	if err := files.WriteFile(fullPath, data); err != nil {
		logger.Error("failed to write catalog", "error", err)
		return errors.NewCommandError(err, errors.ExitFailure)
	}
	logger.Info("catalog exported", "path", fullPath, "version", cat.Version(), "signatures", cat.Len())
	return nil
}

func runValidateCommand(cmd *cobra.Command, args []string) error {
	logger := logger.NewLogger(AppConfig, "core-catalog")

	cat, err := load(args[0])
	if err != nil {
		logger.Error("catalog is invalid", "path", args[0], "error", err)
		return errors.NewCommandError(err, errors.ExitFailure)
	}
	digest, err := cat.Digest()
	if err != nil {
		return errors.NewCommandError(err, errors.ExitFailure)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "catalog %s is valid: version %q, %d signature(s), sha3-256 %s\n", args[0], cat.Version(), cat.Len(), digest)
	fmt.Fprintf(cmd.OutOrStdout(), "families: %s\n", strings.Join(cat.Families(), ", "))
	return nil
}

// load returns the built-in catalog for an empty path.
func load(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	expanded, err := files.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	if err := files.ValidatePath(expanded); err != nil {
		return nil, err
	}
	return catalog.LoadFile(expanded)
}

func init() {
	exportCmd.Flags().StringVar(&catalogOptions.CatalogPath, "catalog", "", "Path to a YAML catalog. The built-in catalog is exported when empty.")
	exportCmd.Flags().StringVarP(&catalogOptions.OutputPath, "output", "o", "", "Path to the output file or directory. The catalog goes to stdout when empty.")

	CatalogCmd.AddCommand(exportCmd, validateCmd)
}
