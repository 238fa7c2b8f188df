package driver

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/quill-lang/quill/pkg/modules"
)

// CheckMode says what type errors do to a compilation.
type CheckMode string

const (
	CheckOff   CheckMode = "off"   // skip reporting
	CheckWarn  CheckMode = "warn"  // report, still emit JavaScript
	CheckError CheckMode = "error" // report and fail
)

// Config holds the compile settings shared by the library entry points and
// the command line. Zero values mean the defaults of DefaultConfig.
type Config struct {
	Target        string    `toml:"target" yaml:"target"`
	JSX           bool      `toml:"jsx" yaml:"jsx"`
	SourceMap     bool      `toml:"sourcemap" yaml:"sourcemap"`
	Check         CheckMode `toml:"check" yaml:"check"`
	LenientIndent bool      `toml:"lenient_indent" yaml:"lenient_indent"`
	OutDir        string    `toml:"outdir" yaml:"outdir"`
	Workers       int       `toml:"workers" yaml:"workers"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{Target: "es6", Check: CheckWarn}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := modules.FormatForTarget(c.Target); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Check {
	case "", CheckOff, CheckWarn, CheckError:
	default:
		return fmt.Errorf("config: unknown check mode %q (want off, warn or error)", c.Check)
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must not be negative, got %d", c.Workers)
	}
	return nil
}

func (c Config) checkMode() CheckMode {
	if c.Check == "" {
		return CheckWarn
	}
	return c.Check
}

// decoder is the common shape of the toml and yaml decoders.
type decoder interface {
	Decode(v any) error
}

type decoderFunc func(r io.Reader) decoder

var configDecoders = map[string]decoderFunc{
	".toml": func(r io.Reader) decoder {
		return toml.NewDecoder(r).DisallowUnknownFields()
	},
	".yaml": func(r io.Reader) decoder {
		d := yaml.NewDecoder(r)
		d.KnownFields(true)
		return d
	},
}

// ConfigNames are the files FindConfig looks for, in order.
var ConfigNames = []string{"quill.toml", "quill.yaml", "quill.yml"}

// LoadConfig reads a quill.toml or quill.yaml file over DefaultConfig and
// validates the result.
func LoadConfig(path string) (Config, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yml" {
		ext = ".yaml"
	}
	newDecoder, ok := configDecoders[ext]
	if !ok {
		return Config{}, fmt.Errorf("config %s: unsupported format %q", path, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	cfg := DefaultConfig()
	if err := newDecoder(bufio.NewReader(f)).Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// FindConfig returns the first of ConfigNames present in dir, or "".
func FindConfig(dir string) string {
	for _, name := range ConfigNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}
