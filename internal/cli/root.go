// root.go defines the scangrep root command and process entry point.
//
// Separated from flags.go and run.go: PersistentPreRunE does lazy,
// command-wide setup (config load, logging) while RunE holds the actual
// search logic.
package cli

import (
	"fmt"
	"os"

	ct "github.com/daviddengcn/go-colortext"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/scangrep/scangrep/internal/config"
	"github.com/scangrep/scangrep/internal/logx"
	"github.com/scangrep/scangrep/internal/option"
)

var loadedConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "scangrep [flags] PATTERN [FILE...]",
	Short: "A grep-compatible, parallel, interactive regular-expression search tool",
	Long: `scangrep searches input files for lines matching a pattern, using a
SIMD-accelerated regular-expression engine, concurrent directory
traversal, transparent archive decompression, and an interactive query
mode (-Q).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		loadedConfig = cfg

		level := logLevel
		if level == "" {
			level = cfg.LogLevel
		}
		logx.Init(level)
		return nil
	},
	RunE: runRoot,
}

// exitCode carries the 0/1/>1 status RunE determined back out to Execute,
// since cobra's own Execute only reports success/failure of the command
// line itself, not the grep-style "did anything match" result.
var exitCode int

// Execute runs the root command and returns the process exit code.
func Execute() int {
	exitCode = 2
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		if exitCode <= 1 {
			exitCode = 2
		}
		return exitCode
	}
	return exitCode
}

// printError writes a fatal error to stderr, coloring the "scangrep:"
// prefix red when stderr is a terminal. Unlike the match highlighting in
// internal/format (which bakes SGR escapes into buffered bytes that may
// be redirected to a file), this writes straight to the terminal, which
// is exactly the direct-paint model go-colortext provides.
func printError(err error) {
	if term.IsTerminal(int(os.Stderr.Fd())) {
		ct.ChangeColor(ct.Red, true, ct.None, false)
		fmt.Fprint(os.Stderr, "scangrep:")
		ct.ResetColor()
		fmt.Fprintln(os.Stderr, " "+err.Error())
		return
	}
	fmt.Fprintln(os.Stderr, "scangrep:", err)
}

// applyConfigDefaults fills in flags the user left untouched from the
// loaded config file, the same "config supplies what the flag didn't"
// precedence jpl-au-llmd's own config layer uses.
func applyConfigDefaults(opts *option.Options) {
	if loadedConfig == nil {
		return
	}
	if !flagChanged("color") && loadedConfig.Color != "" {
		switch loadedConfig.Color {
		case "always":
			opts.Color = option.ColorAlways
		case "never":
			opts.Color = option.ColorNever
		default:
			opts.Color = option.ColorAuto
		}
	}
	if !flagChanged("jobs") && loadedConfig.Jobs != nil {
		opts.Jobs = *loadedConfig.Jobs
	}
	if !flagChanged("hidden") && loadedConfig.Hidden != nil {
		opts.Hidden = *loadedConfig.Hidden
	}
	if len(ignoreFiles) == 0 && len(loadedConfig.IgnoreFiles) > 0 {
		opts.IgnoreFiles = loadedConfig.IgnoreFiles
	}
}

func flagChanged(name string) bool {
	f := rootCmd.Flags().Lookup(name)
	return f != nil && f.Changed
}
