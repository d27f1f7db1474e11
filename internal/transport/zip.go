package transport

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ImSingee/go-ex/ee"
)

var ErrUnsafePath = ee.New("archive entry escapes the destination")

// Unzip extracts src into dest. Entries pointing outside dest are rejected.
func Unzip(src, dest string) error {
	// entries with non local names are still returned; they are checked below
	r, err := zip.OpenReader(src)
	if err != nil && !ee.Is(err, zip.ErrInsecurePath) {
		return ee.Wrapf(err, "cannot open archive %s", src)
	}
	defer r.Close()

	dest = filepath.Clean(dest)
	if err := os.MkdirAll(dest, 0755); err != nil {
		return ee.Wrapf(err, "cannot create directory %s", dest)
	}

	for _, f := range r.File {
		if err := unzipFile(f, dest); err != nil {
			return ee.Wrapf(err, "cannot extract %s", f.Name)
		}
	}

	return nil
}

func safeJoin(dest, name string) (string, error) {
	p := filepath.Join(dest, filepath.FromSlash(name))
	if p != dest && !strings.HasPrefix(p, dest+string(filepath.Separator)) {
		return "", ErrUnsafePath
	}
	return p, nil
}

func unzipFile(f *zip.File, dest string) error {
	path, err := safeJoin(dest, f.Name)
	if err != nil {
		return err
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(path, 0755)
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := io.Copy(file, rc); err != nil {
		return err
	}
	return file.Close()
}
