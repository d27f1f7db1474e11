package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/ImSingee/go-ex/ee"

	"github.com/ImSingee/uvm/internal/installer"
	"github.com/ImSingee/uvm/internal/version"
)

// ArchiveFetcher downloads an archive per component and unpacks it into
// the installation root. The format follows the URL suffix: .tar, .tar.gz,
// .tgz, .tar.xz and .txz are tar archives, anything else is a zip.
//
// URLTemplate is rendered like a command template, e.g.
//
//	https://mirror.example.com/{{.Base}}/{{.Revision}}/{{.Component}}-{{.Platform}}.zip
type ArchiveFetcher struct {
	URLTemplate string
	Client      *http.Client

	mu        sync.Mutex
	downloads map[downloadKey]string
}

type downloadKey struct {
	run       string
	component int
}

var (
	_ installer.Fetcher  = (*ArchiveFetcher)(nil)
	_ installer.Unpacker = (*ArchiveFetcher)(nil)
)

func (f *ArchiveFetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

func keyOf(req installer.FetchRequest) downloadKey {
	return downloadKey{run: req.RunID, component: req.Component.ID()}
}

// Fetch downloads the archive to a temp file. Unpack consumes it.
func (f *ArchiveFetcher) Fetch(ctx context.Context, req installer.FetchRequest) error {
	url, err := Render(f.URLTemplate, req)
	if err != nil {
		return &TransportError{Op: "render", Component: req.Component, Err: err}
	}

	filename, err := f.downloadToTemp(ctx, url, "uvm-"+req.Component.String()+"-*."+string(FormatOf(url)))
	if err != nil {
		return &TransportError{Op: "download", Component: req.Component, Err: err}
	}

	f.mu.Lock()
	if f.downloads == nil {
		f.downloads = make(map[downloadKey]string)
	}
	f.downloads[keyOf(req)] = filename
	f.mu.Unlock()

	return nil
}

func (f *ArchiveFetcher) Unpack(ctx context.Context, req installer.FetchRequest) error {
	f.mu.Lock()
	filename, ok := f.downloads[keyOf(req)]
	delete(f.downloads, keyOf(req))
	f.mu.Unlock()

	if !ok {
		return &TransportError{Op: "unpack", Component: req.Component, Err: ee.New("nothing was downloaded")}
	}
	defer os.Remove(filename)

	if err := ctx.Err(); err != nil {
		return &TransportError{Op: "unpack", Component: req.Component, Err: err}
	}

	slog.Debug("unpack archive", "run", req.RunID, "component", req.Component.String(), "from", filename, "to", req.Destination)
	if err := Extract(FormatOf(filename), filename, req.Destination); err != nil {
		return &TransportError{Op: "unpack", Component: req.Component, Err: err}
	}
	return nil
}

func (f *ArchiveFetcher) downloadToTemp(ctx context.Context, url, pattern string) (string, error) {
	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", ee.Wrap(err, "cannot create temp file")
	}
	defer tmp.Close()

	slog.Debug("download", "url", url, "to", tmp.Name())
	if err := f.download(ctx, url, tmp); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", ee.Wrapf(err, "cannot download file to %s", tmp.Name())
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", ee.Wrapf(err, "cannot save and close file %s", tmp.Name())
	}

	return tmp.Name(), nil
}

func (f *ArchiveFetcher) download(ctx context.Context, url string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ee.Wrapf(err, "invalid url %s", url)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := f.client().Do(req)
	if err != nil {
		return ee.Wrapf(err, "cannot download file from %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cannot download file from %s: status code = %d", url, resp.StatusCode)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return ee.Wrap(err, "cannot write data")
	}
	return nil
}
