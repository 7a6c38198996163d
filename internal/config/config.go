// Package config parses the CLI front end's arguments: a required query
// string, an optional directory, and a handful of flags, plus an optional
// YAML palette file for terminal colorization. Grounded on the teacher
// pack's go-flags-based CLI drivers (sqldef's mysqldef/psqldef entry
// points), which flag-parse into a private options struct and then shape
// the result into a caller-facing Config.
package config

import (
	"io/ioutil"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v2"
)

// Config is the parsed, ready-to-use result of a CLI invocation.
type Config struct {
	Query     string
	Directory string
	Verbose   bool
	NoColor   bool
	Cache     bool
	Palette   Palette
}

// Palette is a persisted LSCOLORS-equivalent set of ANSI color codes, one
// per tag internal/render knows how to colorize. A zero Palette means "use
// the built-in default" -- internal/render fills in defaults for any tag
// absent here.
type Palette map[string]string

// options is the go-flags target struct. Two positional arguments are
// accepted: the query (required) and the directory (optional, default
// ".").
type options struct {
	Verbose bool   `short:"v" long:"verbose" description:"enable debug-level logging"`
	NoColor bool   `long:"no-color" description:"disable ANSI colorization of the result table"`
	Cache   bool   `long:"cache" description:"enable the on-disk stat cache"`
	Config  string `long:"config" description:"YAML file with a persisted color palette" value-name:"path"`

	Positional struct {
		Query     string `positional-arg-name:"query" required:"true"`
		Directory string `positional-arg-name:"directory"`
	} `positional-args:"yes"`
}

// Parse parses args (typically os.Args[1:]) into a Config. It returns
// flags.ErrHelp (via the underlying library) when -h/--help was given;
// callers should treat that as a clean exit, not a failure.
func Parse(args []string) (*Config, error) {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[options] query [directory]"
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	dir := opts.Positional.Directory
	if dir == "" {
		dir = "."
	}

	cfg := &Config{
		Query:     opts.Positional.Query,
		Directory: dir,
		Verbose:   opts.Verbose,
		NoColor:   opts.NoColor,
		Cache:     opts.Cache,
	}

	if opts.Config != "" {
		palette, err := loadPalette(opts.Config)
		if err != nil {
			return nil, err
		}
		cfg.Palette = palette
	}

	return cfg, nil
}

// loadPalette reads and parses a YAML color-palette file of the form
// `tag: ansi-code` (e.g. `dir: "34"`, `exec: "32"`).
func loadPalette(path string) (Palette, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var palette Palette
	if err := yaml.Unmarshal(data, &palette); err != nil {
		return nil, err
	}
	return palette, nil
}
