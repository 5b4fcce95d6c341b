package cli

import (
	"context"
	"errors"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/dexcache/pkg/dexcache"
)

var errFileRequired = errors.New("input file is required")

// PathCmd returns the path command.
func PathCmd(d *deps) *Command {
	flags := flag.NewFlagSet("path", flag.ContinueOnError)
	member := flags.StringP("member", "m", "", "Archive member the cache entry is for")
	jar := flags.Bool("jar", false, "Treat inputs as archives (member defaults to classes.dex)")
	flat := flags.Bool("flat", false, "Print only the flattened name, without root selection")

	return &Command{
		Flags: flags,
		Usage: "path <file>... [flags]",
		Short: "Print the cache-file path for each input",
		Long: "Compute the canonical cache-file path for each input file.\n" +
			"Bare .dex files need no member name; pass --jar (or --member)\n" +
			"for archives so the cached entry is part of the key.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return errFileRequired
			}

			m := *member
			if m == "" && *jar {
				m = dexcache.DefaultMemberName
			}

			for _, input := range args {
				p, err := d.name(input, m, *flat)
				if err != nil {
					return err
				}

				o.Println(p)
			}

			return nil
		},
	}
}

// name runs the naming pipeline for one input, stopping after
// flattening when flatOnly is set.
func (d *deps) name(input, member string, flatOnly bool) (string, error) {
	if flatOnly {
		return d.namer.Canonicalize(input, member)
	}

	return d.namer.CacheFileName(input, member)
}
