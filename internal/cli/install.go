package cli

import (
	"context"
	"os"
	"strings"

	"github.com/ImSingee/go-ex/mr"
	"github.com/ImSingee/go-ex/pp"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/ImSingee/uvm/internal/installer"
	"github.com/ImSingee/uvm/internal/lib/progress"
	"github.com/ImSingee/uvm/internal/resolver"
	"github.com/ImSingee/uvm/internal/unity"
	"github.com/ImSingee/uvm/internal/uvm"
)

func installCommand(a *App) *cobra.Command {
	var (
		flags resolveFlags
		tui   bool
	)

	cmd := &cobra.Command{
		Use:   "install [version|project] [component...]",
		Short: "Install an editor and components",
		Long: `Install an editor and components.

Nothing is fetched when a matching installation already has every requested
component. Without a version the project in the working directory is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.Manager()
			if err != nil {
				return err
			}

			v, components, err := versionAndComponents(m, args)
			if err != nil {
				return err
			}

			plan, err := m.Resolve(cmd.Context(), v, components, flags.options(a))
			if err != nil {
				return err
			}
			for _, w := range plan.Warnings {
				pp.Println(pp.YellowString("warning: %s: %s", w.Component, w.Reason).GetForStdout())
			}

			if plan.Kind == resolver.AlreadySatisfied {
				pp.Printf("%s is already installed at %s\n", plan.Version, pp.BlueString(plan.Destination).GetForStdout())
				printIncomplete(plan)
				return nil
			}

			if !cmd.Flags().Changed("tui") {
				tui = !a.Quiet && !a.Debug && isatty.IsTerminal(os.Stdout.Fd())
			}

			var inst *unity.Installation
			if tui {
				inst, err = installWithProgress(cmd.Context(), m, plan)
			} else {
				inst, err = m.InstallWithObserver(cmd.Context(), plan, installer.ObserverFunc(printTransition))
			}
			if err != nil {
				return err
			}

			pp.Printf("%s installed at %s\n", inst.Version, pp.BlueString(inst.Location).GetForStdout())
			printIncomplete(plan)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&tui, "tui", false, "show live progress (default when stdout is a terminal)")
	return cmd
}

// printIncomplete points at children of installed components that an
// interrupted run left behind.
func printIncomplete(plan *resolver.InstallPlan) {
	if len(plan.Incomplete) == 0 {
		return
	}

	names := mr.Map(plan.Incomplete, func(c unity.Component, _index int) string {
		return c.String()
	})
	pp.Println(pp.YellowString("note: %s missing, run install again naming them to add", strings.Join(names, " ")).GetForStdout())
}

func printTransition(e installer.Event) {
	switch e.State {
	case installer.StateFetching:
		pp.Printf("fetching %s\n", e.Component)
	case installer.StateRegistered:
		pp.Println(pp.GreenString("✓ %s", e.Component).GetForStdout())
	case installer.StateFailed:
		pp.Println(pp.RedString("✗ %s: %v", e.Component, e.Err).GetForStdout())
	}
}

func installWithProgress(ctx context.Context, m *uvm.Manager, plan *resolver.InstallPlan) (*unity.Installation, error) {
	ids := mr.Map(plan.Fetch, func(c unity.Component, _index int) string {
		return c.String()
	})
	runner := progress.New("Installing "+plan.Version.String(), ids)

	var inst *unity.Installation
	err := runner.Run(ctx, func(ctx context.Context, send func(progress.Update)) error {
		var err error
		inst, err = m.InstallWithObserver(ctx, plan, installer.ObserverFunc(func(e installer.Event) {
			send(progressUpdate(e))
		}))
		return err
	})
	return inst, err
}

func progressUpdate(e installer.Event) progress.Update {
	u := progress.Update{ID: e.Component.String(), Detail: e.State.String()}

	switch e.State {
	case installer.StatePlanned:
		u.Status = progress.StatusPending
	case installer.StateRegistered:
		u.Status = progress.StatusSuccess
		u.Detail = ""
	case installer.StateFailed:
		u.Status = progress.StatusFailed
		u.Err = e.Err
	default:
		u.Status = progress.StatusRunning
	}
	return u
}
