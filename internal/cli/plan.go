package cli

import (
	"github.com/ImSingee/go-ex/pp"
	"github.com/spf13/cobra"

	"github.com/ImSingee/uvm/internal/uvm"
)

type resolveFlags struct {
	destination    string
	noChildren     bool
	strictRevision bool
}

func (f *resolveFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.destination, "destination", "d", "", "where to install a missing editor")
	cmd.Flags().BoolVar(&f.noChildren, "no-child-components", false, "do not add the components implied by the requested ones")
	cmd.Flags().BoolVar(&f.strictRevision, "strict-revision", false, "never reuse an installation of the same version with unknown revision")
}

// options uses the configured destination as the parent of fresh installs.
func (f *resolveFlags) options(a *App) uvm.ResolveOptions {
	opts := uvm.ResolveOptions{
		Destination:         f.destination,
		SkipChildComponents: f.noChildren,
		StrictRevision:      f.strictRevision,
	}
	if a.config != nil {
		opts.DestinationRoot = a.config.Destination
	}
	return opts
}

func planCommand(a *App) *cobra.Command {
	var (
		flags  resolveFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "plan [version|project] [component...]",
		Short: "Show what install would do",
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

			if asJSON {
				return printJSON(plan)
			}
			pp.Println(plan.String())
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as json")
	return cmd
}
