package transport

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ImSingee/go-ex/ee"
	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

// Format is the archive format of a component payload.
type Format string

const (
	FormatZip   Format = "zip"
	FormatTar   Format = "tar"
	FormatTarGz Format = "tar.gz"
	FormatTarXz Format = "tar.xz"
)

// FormatOf picks the archive format from a file name or URL path.
// Anything unrecognized is treated as zip.
func FormatOf(name string) Format {
	name = strings.ToLower(name)
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}

	switch {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return FormatTarGz
	case strings.HasSuffix(name, ".tar.xz"), strings.HasSuffix(name, ".txz"):
		return FormatTarXz
	case strings.HasSuffix(name, ".tar"):
		return FormatTar
	}
	return FormatZip
}

// Extract unpacks src, an archive of the given format, into dest.
func Extract(format Format, src, dest string) error {
	if format == FormatZip {
		return Unzip(src, dest)
	}
	return Untar(format, src, dest)
}

// Untar extracts a plain, gzip or xz compressed tar archive into dest.
// Entries and symlinks pointing outside dest are rejected.
func Untar(format Format, src, dest string) error {
	file, err := os.Open(src)
	if err != nil {
		return ee.Wrapf(err, "cannot open archive %s", src)
	}
	defer file.Close()

	var r io.Reader = file
	switch format {
	case FormatTarGz:
		gz, err := gzip.NewReader(file)
		if err != nil {
			return ee.Wrapf(err, "invalid gzip archive %s", src)
		}
		defer gz.Close()
		r = gz
	case FormatTarXz:
		xr, err := xz.NewReader(file)
		if err != nil {
			return ee.Wrapf(err, "invalid xz archive %s", src)
		}
		r = xr
	}

	dest = filepath.Clean(dest)
	if err := os.MkdirAll(dest, 0755); err != nil {
		return ee.Wrapf(err, "cannot create directory %s", dest)
	}

	tr := tar.NewReader(r)
	for {
		h, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return ee.Wrapf(err, "cannot read archive %s", src)
		}

		if err := untarEntry(tr, h, dest); err != nil {
			return ee.Wrapf(err, "cannot extract %s", h.Name)
		}
	}
}

func untarEntry(tr *tar.Reader, h *tar.Header, dest string) error {
	path, err := safeJoin(dest, h.Name)
	if err != nil {
		return err
	}

	switch h.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(path, 0755)
	case tar.TypeSymlink:
		if filepath.IsAbs(h.Linkname) {
			return ErrUnsafePath
		}
		target := filepath.Join(filepath.Dir(path), filepath.FromSlash(h.Linkname))
		if target != dest && !strings.HasPrefix(target, dest+string(filepath.Separator)) {
			return ErrUnsafePath
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		_ = os.Remove(path)
		return os.Symlink(h.Linkname, path)
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}

		mode := os.FileMode(h.Mode).Perm()
		if mode == 0 {
			mode = 0644
		}
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
		if err != nil {
			return err
		}
		defer file.Close()

		if _, err := io.Copy(file, tr); err != nil {
			return err
		}
		return file.Close()
	}

	// hard links, devices and the like never appear in editor payloads
	return nil
}
