// Command lsql executes a SQL-flavored query over a directory tree and
// prints the result table. See SPEC_FULL.md §6.6 for the driver contract
// this wires together: config -> lexer/parser -> rewrite -> evaluator ->
// render.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alexandershov/lsql/internal/builtin"
	"github.com/alexandershov/lsql/internal/config"
	"github.com/alexandershov/lsql/internal/ctx"
	"github.com/alexandershov/lsql/internal/errs"
	"github.com/alexandershov/lsql/internal/eval"
	"github.com/alexandershov/lsql/internal/fsrow"
	"github.com/alexandershov/lsql/internal/log"
	"github.com/alexandershov/lsql/internal/render"
	"github.com/alexandershov/lsql/internal/rewrite"
	"github.com/alexandershov/lsql/internal/statcache"
	"github.com/alexandershov/lsql/internal/value"
	"github.com/alexandershov/lsql/parser"
	"github.com/jessevdk/go-flags"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log.SetVerbose(cfg.Verbose)

	denied, err := run(cfg)
	for _, d := range denied {
		fmt.Fprintf(os.Stderr, "warning: permission denied: %s\n", d)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, errs.Render(err))
		os.Exit(1)
	}
}

// run executes one query end to end, returning the set of permission-
// denied directories encountered during the walk (reported by main as a
// trailing warning list, never as a failure) alongside any fatal error.
func run(cfg *config.Config) ([]string, error) {
	if cfg.Cache {
		cacheDir, err := os.UserCacheDir()
		if err == nil {
			if err := os.MkdirAll(filepath.Join(cacheDir, "lsql"), 0o755); err == nil {
				cache, err := statcache.Open(filepath.Join(cacheDir, "lsql", "stat.db"))
				if err == nil {
					fsrow.UseCache(cache)
					defer cache.Close()
				}
			}
		}
	}

	absDir, err := filepath.Abs(cfg.Directory)
	if err != nil {
		return nil, err
	}

	query, err := parser.Parse(cfg.Query)
	if err != nil {
		return nil, err
	}
	built, err := rewrite.Build(query)
	if err != nil {
		return nil, err
	}

	outer := ctx.Merged{
		ctx.NewMap(map[string]interface{}{"cwd": value.NewStr(absDir)}),
		builtin.Namespace(time.Now()),
	}

	table, err := eval.Run(built, outer)
	if err != nil {
		return nil, err
	}

	w := render.New(os.Stdout, cfg.NoColor, cfg.Palette)
	if err := w.Render(table); err != nil {
		return table.Denied, err
	}
	return table.Denied, nil
}
