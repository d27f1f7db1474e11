package cli

import (
	"github.com/ImSingee/go-ex/ee"
	"github.com/ImSingee/go-ex/mr"
	"github.com/ImSingee/go-ex/pp"
	"github.com/spf13/cobra"

	"github.com/ImSingee/uvm/internal/index"
	"github.com/ImSingee/uvm/internal/unity"
)

func Commands(a *App) []*cobra.Command {
	return []*cobra.Command{
		listCommand(a),
		detectCommand(a),
		locateCommand(a),
		componentsCommand(a),
		planCommand(a),
		installCommand(a),
		versionOfCommand(a),
	}
}

func listCommand(a *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "list [editor-root...]",
		Aliases: []string{"ls"},
		Short:   "List installed editors",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.Manager()
			if err != nil {
				return err
			}

			installations, err := m.ListInstalled(cmd.Context(), args)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(installations)
			}
			if len(installations) == 0 {
				pp.Println("No installed editors found")
				return nil
			}
			for _, inst := range installations {
				pp.Printf("%s\t%s\t%s\n", inst.Version, pp.BlueString(inst.Location).GetForStdout(), inst.Components)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as json")
	return cmd
}

func detectCommand(a *App) *cobra.Command {
	var withRevision bool

	cmd := &cobra.Command{
		Use:   "detect [project]",
		Short: "Print the editor version of a project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.Manager()
			if err != nil {
				return err
			}

			p := "."
			if len(args) == 1 {
				p = args[0]
			}

			v, err := m.DetectProjectVersion(p, withRevision)
			if err != nil {
				return err
			}
			pp.Println(v.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&withRevision, "revision", false, "include the revision hash")
	return cmd
}

func locateCommand(a *App) *cobra.Command {
	var (
		asJSON   bool
		pathOnly bool
	)

	cmd := &cobra.Command{
		Use:   "locate <version>",
		Short: "Print the installation of an editor version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.Manager()
			if err != nil {
				return err
			}

			v, err := m.ParseVersion(args[0])
			if err != nil {
				return err
			}

			inst, kind, err := m.Locate(cmd.Context(), v)
			if err != nil {
				if ee.Is(err, index.ErrNotFound) {
					return ee.Errorf("editor %s is not installed", v)
				}
				return err
			}

			switch {
			case asJSON:
				return printJSON(map[string]any{
					"installation": inst,
					"matchKind":    kind,
				})
			case pathOnly:
				pp.Println(inst.Location)
			default:
				pp.Printf("%s\t%s\t(%s)\n", inst.Version, inst.Location, kind)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as json")
	cmd.Flags().BoolVar(&pathOnly, "path", false, "only print the installation location")
	return cmd
}

func componentsCommand(a *App) *cobra.Command {
	var platform string

	cmd := &cobra.Command{
		Use:   "components <version>",
		Short: "List the components available for an editor version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.Manager()
			if err != nil {
				return err
			}

			v, err := m.ParseVersion(args[0])
			if err != nil {
				return err
			}

			p := m.Platform()
			if platform != "" {
				p, err = unity.ParsePlatform(platform)
				if err != nil {
					return err
				}
			}

			names := mr.Map(m.ListAvailableComponents(v, p), func(c unity.Component, _index int) string {
				return c.String()
			})
			for _, name := range names {
				pp.Println(name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&platform, "platform", "", "target platform (linux, darwin, windows)")
	return cmd
}

func versionOfCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version-of <path>",
		Short: "Print the editor version of an installation or executable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.Manager()
			if err != nil {
				return err
			}

			v, err := m.ReadVersion(args[0])
			if err != nil {
				return err
			}
			pp.Println(v.String())
			return nil
		},
	}
}
