package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	catalogcmd "github.com/scan-io-git/cryptoscan/cmd/catalog"
	"github.com/scan-io-git/cryptoscan/cmd/classify"
	"github.com/scan-io-git/cryptoscan/cmd/version"
	"github.com/scan-io-git/cryptoscan/internal/config"
	"github.com/scan-io-git/cryptoscan/pkg/shared/errors"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "cryptoscan [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "Cryptoscan classifies cryptographic algorithm usage by quantum and classical risk.",
		Long: `Cryptoscan classifies normalized cryptographic call sites against a versioned algorithm catalog.
	Each call site is tagged as quantum-vulnerable, classically weak, deprecated, indeterminate or acceptable,
	and the results are aggregated into a JSON or SARIF report.
	`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml)")
	rootCmd.AddCommand(classify.ClassifyCmd)
	rootCmd.AddCommand(catalogcmd.CatalogCmd)
	rootCmd.AddCommand(version.NewVersionCmd())
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		return errors.ExitCode(err)
	}
	return errors.ExitOK
}

func initConfig() {
	var err error

	if cfgFile == "" {
		cfgFile = "config.yml"
	}
	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing config file function is crashed - %v \n", err)
		os.Exit(errors.ExitFailure)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(errors.ExitFailure)
	}

	classify.Init(AppConfig)
	catalogcmd.Init(AppConfig)
	version.Init(AppConfig)
}
