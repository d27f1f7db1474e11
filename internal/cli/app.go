// Package cli implements the uvm commands.
package cli

import (
	"log/slog"
	"os"

	"github.com/ImSingee/go-ex/ee"

	"github.com/ImSingee/uvm/internal/config"
	"github.com/ImSingee/uvm/internal/index"
	"github.com/ImSingee/uvm/internal/installer"
	"github.com/ImSingee/uvm/internal/lib/glob"
	"github.com/ImSingee/uvm/internal/metrics"
	"github.com/ImSingee/uvm/internal/transport"
	"github.com/ImSingee/uvm/internal/unity"
	"github.com/ImSingee/uvm/internal/unity/hashes"
	"github.com/ImSingee/uvm/internal/uvm"
)

// App holds what the commands share: global flags, configuration and the
// lazily created manager.
type App struct {
	ConfigFile string
	Debug      bool
	Quiet      bool

	config  *config.Config
	probe   *index.FSProbe
	manager *uvm.Manager
	metrics *metrics.Metrics
}

func (a *App) Config() (*config.Config, error) {
	if a.config != nil {
		return a.config, nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, ee.Wrap(err, "cannot get working directory")
	}

	c, err := config.Load(wd, a.ConfigFile)
	if err != nil {
		return nil, err
	}
	if c.File != "" {
		slog.Debug("config loaded", "file", c.File)
	}

	a.config = c
	return c, nil
}

// Manager builds the manager from the configuration on first use.
func (a *App) Manager() (*uvm.Manager, error) {
	if a.manager != nil {
		return a.manager, nil
	}

	c, err := a.Config()
	if err != nil {
		return nil, err
	}

	patterns, err := glob.Compile(c.EditorDirPatterns...)
	if err != nil {
		return nil, ee.Wrap(err, "invalid editorDirPatterns")
	}

	platform := unity.CurrentPlatform()
	a.probe = index.NewFSProbe(platform, c.Roots, patterns)

	opts := uvm.Options{
		Probe:         a.probe,
		Recorder:      a.probe,
		Fetcher:       fetcherFor(c),
		Hashes:        hashes.Default().Merge(c.KnownHashes),
		Platform:      platform,
		Roots:         c.Roots,
		AllowBaseOnly: c.AllowBaseOnly,
	}

	if c.MetricsFile != "" {
		a.metrics = metrics.New()
		opts.Observer = a.metrics
		opts.OnScan = func(idx *index.Index) {
			a.metrics.ObserveScan(idx.Len())
		}
	}

	a.manager, err = uvm.New(opts)
	if err != nil {
		return nil, err
	}
	return a.manager, nil
}

func fetcherFor(c *config.Config) installer.Fetcher {
	switch {
	case c.FetchCommand != "":
		return &transport.CommandFetcher{Template: c.FetchCommand, Stdout: os.Stderr}
	case c.DownloadURL != "":
		return &transport.ArchiveFetcher{URLTemplate: c.DownloadURL}
	}
	return nil
}

// Close flushes what the commands collected.
func (a *App) Close() error {
	if a.metrics == nil || a.config == nil || a.config.MetricsFile == "" {
		return nil
	}
	return a.metrics.WriteToTextfile(a.config.MetricsFile)
}
