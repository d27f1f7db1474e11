package cli

import (
	"encoding/json"
	"os"

	"github.com/ImSingee/go-ex/ee"
	"github.com/ImSingee/go-ex/pp"

	"github.com/ImSingee/uvm/internal/project"
	"github.com/ImSingee/uvm/internal/unity"
	"github.com/ImSingee/uvm/internal/uvm"
)

// versionAndComponents splits `[version|project] [component...]`.
//
// Without a version the project in the working directory decides.
func versionAndComponents(m *uvm.Manager, args []string) (unity.Version, unity.ComponentSet, error) {
	var (
		v   unity.Version
		err error
	)

	rest := args
	switch {
	case len(args) != 0 && isProject(args[0]):
		v, err = m.DetectProjectVersion(args[0], true)
		rest = args[1:]
	case len(args) != 0 && looksLikeVersion(args[0]):
		v, err = m.ParseVersion(args[0])
		rest = args[1:]
	default:
		v, err = m.DetectProjectVersion(".", true)
		if ee.Is(err, project.ErrNoDescriptor) {
			return unity.Version{}, nil, ee.New("no version given and the working directory is not a project")
		}
	}
	if err != nil {
		return unity.Version{}, nil, err
	}

	components, err := parseComponents(rest)
	if err != nil {
		return unity.Version{}, nil, err
	}
	return v, components, nil
}

func looksLikeVersion(s string) bool {
	_, err := unity.Parse(s)
	return err == nil
}

func isProject(path string) bool {
	info, err := os.Stat(project.DescriptorPath(path))
	return err == nil && !info.IsDir()
}

func parseComponents(names []string) (unity.ComponentSet, error) {
	set := unity.NewComponentSet()
	for _, name := range names {
		c, err := unity.ParseComponent(name)
		if err != nil {
			return nil, err
		}
		set.Add(c)
	}
	return set, nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ee.Wrap(err, "cannot encode output")
	}
	pp.Println(string(data))
	return nil
}
