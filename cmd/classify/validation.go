package classify

import (
	"fmt"

	"github.com/scan-io-git/cryptoscan/internal/config"
	"github.com/scan-io-git/cryptoscan/pkg/classification"
	"github.com/scan-io-git/cryptoscan/pkg/shared/files"
)

// validateClassifyArgs validates the arguments provided to the classify command.
func validateClassifyArgs(options *RunOptionsClassify, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("only one target path can be specified, got %d", len(args))
	}

	if len(args) == 1 {
		if options.InputFile != "" {
			return fmt.Errorf("you cannot use an 'input-file' flag and a target path at the same time")
		}
		if err := validateExistingFile("target path", args[0]); err != nil {
			return err
		}
	} else {
		if options.InputFile == "" {
			return fmt.Errorf("either 'input-file' flag or a target path must be specified")
		}
		if err := validateExistingFile("input-file", options.InputFile); err != nil {
			return err
		}
	}

	if options.CatalogPath != "" {
		if err := validateExistingFile("catalog", options.CatalogPath); err != nil {
			return err
		}
	}
	if options.BaselinePath != "" {
		if err := validateExistingFile("baseline", options.BaselinePath); err != nil {
			return err
		}
	}

	if err := config.ValidateFormat(options.Format); err != nil {
		return fmt.Errorf("the 'format' flag is invalid: %w", err)
	}
	if err := config.ValidateThreads(options.Threads); err != nil {
		return fmt.Errorf("the 'threads' flag is invalid: %w", err)
	}
	if options.FailOn != "" {
		if _, err := classification.ParseSeverity(options.FailOn); err != nil {
			return fmt.Errorf("the 'fail-on' flag is invalid: %w", err)
		}
	}
	return nil
}

func validateExistingFile(name, path string) error {
	expanded, err := files.ExpandPath(path)
	if err != nil {
		return fmt.Errorf("failed to expand %s %q: %w", name, path, err)
	}
	if err := files.ValidatePath(expanded); err != nil {
		return fmt.Errorf("the %s is not readable: %w", name, err)
	}
	return nil
}
