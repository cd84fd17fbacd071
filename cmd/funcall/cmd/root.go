package cmd

import (
	"fmt"
	"os"

	"github.com/funvibe/funcall/internal/manifest"
	"github.com/funvibe/funcall/internal/overload"
	"github.com/funvibe/funcall/internal/pytypes"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	manifestPath string
	verbose      bool
	mf           *manifest.Manifest
	host         *pytypes.Host
)

var rootCmd = &cobra.Command{
	Use:   "funcall",
	Short: "funcall - inspect and exercise call signatures",
	Long: `funcall loads function signatures from a funcall.yaml manifest and
lets you inspect them, examine their keyword hash tables, and dry-run
overload resolution against literal arguments.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			logger, err := zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("creating logger: %w", err)
			}
			overload.SetLogger(logger)
		}

		path := manifestPath
		if path == "" {
			var err error
			path, err = manifest.Find(".")
			if err != nil {
				return fmt.Errorf("locating manifest: %w", err)
			}
			if path == "" {
				wd, _ := os.Getwd()
				return fmt.Errorf("no funcall.yaml found in %s or any parent directory (use --manifest)", wd)
			}
		}
		var err error
		mf, err = manifest.Load(path)
		if err != nil {
			return fmt.Errorf("loading manifest: %w", err)
		}
		host = pytypes.NewHost()
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&manifestPath, "manifest", "", "manifest file (default is ./funcall.yaml, searched upward)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log overload trie activity")
}

// useColor reports whether stdout is a terminal that can take ANSI color.
func useColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func bold(s string) string {
	if useColor() {
		return "\x1b[1m" + s + "\x1b[0m"
	}
	return s
}

func dim(s string) string {
	if useColor() {
		return "\x1b[2m" + s + "\x1b[0m"
	}
	return s
}
