package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"

	"github.com/ImSingee/go-ex/ee"

	"github.com/ImSingee/uvm/internal/installer"
	"github.com/ImSingee/uvm/internal/lib/shells"
)

// CommandFetcher installs a component by running an external command.
//
// Template is a command line such as
//
//	unity-installer --version {{.Version}} --module {{.Component}} --path {{.Destination}}
//
// Each rendered argument is passed as is; no shell is involved. The
// request is also exported as UVM_* environment variables.
type CommandFetcher struct {
	Template string
	Dir      string
	Env      []string
	Stdout   io.Writer
	Stderr   io.Writer
}

func (f *CommandFetcher) Fetch(ctx context.Context, req installer.FetchRequest) error {
	args, err := f.Command(req)
	if err != nil {
		return &TransportError{Op: "render", Component: req.Component, Err: err}
	}

	extra := append(append([]string{}, f.Env...), env(req)...)
	slog.Info("run fetch command", "run", req.RunID, "component", req.Component.String(), "command", shells.Line(extra, args))

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = f.Dir
	cmd.Env = append(os.Environ(), extra...)
	cmd.Stdout = f.Stdout
	cmd.Stderr = f.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return &TransportError{Op: "fetch", Component: req.Component, Err: ee.Wrapf(err, "command %s failed", shells.Join(args))}
	}
	return nil
}

// Command returns the rendered and split command line for req.
func (f *CommandFetcher) Command(req installer.FetchRequest) ([]string, error) {
	line, err := Render(f.Template, req)
	if err != nil {
		return nil, err
	}

	args, err := shells.Split(line)
	if err != nil {
		return nil, ee.Wrapf(err, "cannot split command %q", line)
	}
	if len(args) == 0 {
		return nil, ee.New("empty fetch command")
	}
	return args, nil
}

func env(req installer.FetchRequest) []string {
	d := NewTemplateData(req)
	return []string{
		"UVM_VERSION=" + d.Version,
		"UVM_VERSION_BASE=" + d.Base,
		"UVM_VERSION_REVISION=" + d.Revision,
		"UVM_COMPONENT=" + d.Component,
		fmt.Sprintf("UVM_COMPONENT_ID=%d", d.ComponentID),
		"UVM_DESTINATION=" + d.Destination,
		"UVM_PLATFORM=" + d.Platform,
	}
}
