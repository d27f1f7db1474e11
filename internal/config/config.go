// Package config loads the uvm configuration file (.uvmrc) and applies
// environment overrides.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ImSingee/go-ex/ee"
	"github.com/ImSingee/go-ex/exjson"
	"github.com/ysmood/gson"
)

var ConfigFileNames = []string{
	".uvmrc",
	".uvmrc.json",
	"uvm.config.json",
}

// HomeConfigFileName is looked up in the home directory when the working
// directory has no config file.
const HomeConfigFileName = ".uvmrc.json"

const (
	EnvEditorRoots  = "UVM_EDITOR_ROOTS"
	EnvFetchCommand = "UVM_FETCH_COMMAND"
	EnvDownloadURL  = "UVM_DOWNLOAD_URL"
	EnvDestination  = "UVM_DESTINATION"
)

// ErrNotExist is returned (wrapped) when no config file can be found or the
// explicitly given one is missing.
var ErrNotExist = os.ErrNotExist

func IsNotExist(err error) bool {
	return ee.Is(err, ErrNotExist)
}

type Config struct {
	// File is the file the config was read from, empty for defaults.
	File string

	Roots             []string
	EditorDirPatterns []string
	// Destination is the parent directory of fresh installs.
	Destination       string
	FetchCommand      string
	DownloadURL       string
	AllowBaseOnly     bool
	KnownHashes       map[string]string
	MetricsFile       string
}

func Default() *Config {
	return &Config{
		AllowBaseOnly: true,
		KnownHashes:   map[string]string{},
	}
}

// FindConfigFile returns the first config file in dir, then the one in the
// home directory. It returns ErrNotExist when there is none.
func FindConfigFile(dir string) (string, error) {
	candidates := make([]string, 0, len(ConfigFileNames)+1)
	for _, name := range ConfigFileNames {
		candidates = append(candidates, filepath.Join(dir, name))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, HomeConfigFileName))
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", ee.Wrapf(ErrNotExist, "no config file in %s", dir)
}

func ReadConfigFile(filename string) (map[string]gson.JSON, error) {
	// only parse json now

	var obj map[string]any
	err := exjson.Read(filename, &obj)
	if err != nil {
		return nil, err
	}

	return gson.New(obj).Map(), nil
}

// Load reads filename, or the config file found from dir when filename is
// empty, and applies the environment. A missing config file found by
// lookup is not an error; a missing explicit file is.
func Load(dir, filename string) (*Config, error) {
	if filename == "" {
		found, err := FindConfigFile(dir)
		if err != nil && !IsNotExist(err) {
			return nil, err
		}
		filename = found
	} else if _, err := os.Stat(filename); err != nil {
		return nil, ee.Wrapf(err, "cannot load config %s", filename)
	}

	c := Default()
	if filename != "" {
		values, err := ReadConfigFile(filename)
		if err != nil {
			return nil, ee.Wrapf(err, "cannot load config %s", filename)
		}
		c, err = Parse(values)
		if err != nil {
			return nil, ee.Wrapf(err, "invalid config %s", filename)
		}
		c.File = filename
	}

	c.ApplyEnv(os.Getenv)
	return c, nil
}

// Parse converts raw config values. Unknown keys are ignored.
func Parse(values map[string]gson.JSON) (*Config, error) {
	c := Default()
	var err error

	if c.Roots, err = stringList(values, "roots"); err != nil {
		return nil, err
	}
	if c.EditorDirPatterns, err = stringList(values, "editorDirPatterns"); err != nil {
		return nil, err
	}
	if c.Destination, err = str(values, "destination"); err != nil {
		return nil, err
	}
	if c.FetchCommand, err = str(values, "fetchCommand"); err != nil {
		return nil, err
	}
	if c.DownloadURL, err = str(values, "downloadUrl"); err != nil {
		return nil, err
	}
	if c.MetricsFile, err = str(values, "metricsFile"); err != nil {
		return nil, err
	}

	if v := values["allowBaseOnly"].Val(); v != nil {
		b, ok := v.(bool)
		if !ok {
			return nil, ee.New("invalid allowBaseOnly value (type is not bool)")
		}
		c.AllowBaseOnly = b
	}

	if v := values["knownHashes"].Val(); v != nil {
		if _, ok := v.(map[string]any); !ok {
			return nil, ee.New("invalid knownHashes value (type is not object)")
		}
		for base, hash := range values["knownHashes"].Map() {
			h, ok := hash.Val().(string)
			if !ok {
				return nil, ee.Errorf("invalid knownHashes.%s value (type is not string)", base)
			}
			c.KnownHashes[base] = h
		}
	}

	return c, nil
}

func str(values map[string]gson.JSON, key string) (string, error) {
	v := values[key].Val()
	if v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", ee.Errorf("invalid %s value (type is not string)", key)
	}
	return s, nil
}

// stringList accepts a string or an array of strings.
func stringList(values map[string]gson.JSON, key string) ([]string, error) {
	v := values[key].Val()
	switch v := v.(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range values[key].Arr() {
			s, ok := item.Val().(string)
			if !ok {
				return nil, ee.Errorf("invalid %s[%d] value (type is not string)", key, i)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, ee.Errorf("invalid %s value (type is not string or array)", key)
}

// ApplyEnv overrides values from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvEditorRoots); v != "" {
		var roots []string
		for _, r := range filepath.SplitList(v) {
			if r = strings.TrimSpace(r); r != "" {
				roots = append(roots, r)
			}
		}
		c.Roots = roots
	}
	if v := getenv(EnvFetchCommand); v != "" {
		c.FetchCommand = v
	}
	if v := getenv(EnvDownloadURL); v != "" {
		c.DownloadURL = v
	}
	if v := getenv(EnvDestination); v != "" {
		c.Destination = v
	}
}
