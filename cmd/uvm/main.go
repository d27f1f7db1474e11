package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ImSingee/go-ex/ee"
	"github.com/ImSingee/go-ex/pp"
	"github.com/spf13/cobra"

	"github.com/ImSingee/uvm/internal/cli"
	"github.com/ImSingee/uvm/internal/lib/xlog"
	"github.com/ImSingee/uvm/internal/version"
)

const help = `Usage:
  uvm list
  uvm detect [project]
  uvm locate <version>
  uvm components <version>
  uvm plan [version|project] [component...]
  uvm install [version|project] [component...]
`

func main() {
	a := &cli.App{}

	app := &cobra.Command{
		Use:           "uvm",
		Long:          help,
		Version:       version.GetVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	app.AddCommand(cli.Commands(a)...)

	// for global flags
	app.PersistentFlags().SortFlags = false
	app.PersistentFlags().StringP("root", "R", "", "change command working directory")
	app.PersistentFlags().StringVar(&a.ConfigFile, "config", "", "config file (default: lookup from the working directory)")
	app.PersistentFlags().BoolVar(&a.Debug, "debug", false, "print additional debug information")
	app.PersistentFlags().BoolVarP(&a.Quiet, "quiet", "q", false, "quiet mode (hide any output)")
	app.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if a.Quiet {
			pp.Stdout.ChangeWriter(io.Discard)
			pp.Stderr.ChangeWriter(io.Discard)

			slog.SetDefault(xlog.DisabledLogger)
		} else {
			level := slog.LevelWarn
			if a.Debug {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		}

		if root, _ := app.PersistentFlags().GetString("root"); root != "" {
			slog.Debug("Change working directory", "root", root)
			err := os.Chdir(root)
			if err != nil {
				return ee.Wrapf(err, "cannot change working directory to %s", root)
			}
		}

		return nil
	}

	// run!
	err := app.Execute()
	if closeErr := a.Close(); closeErr != nil {
		l("Cannot write metrics: %v", closeErr)
	}
	if err != nil {
		if !ee.Is(err, ee.Phantom) && !a.Quiet {
			l("Error: %v", err)
		}

		os.Exit(1)
	}
}

func l(msg string, args ...any) {
	s := msg
	if len(args) != 0 {
		s = fmt.Sprintf(msg, args...)
	}

	_, _ = os.Stderr.Write([]byte("uvm - " + strings.TrimSpace(s) + "\n"))
}
