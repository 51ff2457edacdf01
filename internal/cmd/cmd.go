package cmd

// Mode constants
const (
	ModeSinglePath = "single-path"
	ModeInputFile  = "input-file"
)

// DetermineMode picks the input mode: a positional path wins over the input-file flag.
func DetermineMode(args []string) string {
	if len(args) > 0 {
		return ModeSinglePath
	}
	return ModeInputFile
}
