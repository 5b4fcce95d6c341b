package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/dexcache/internal/fs"
	"github.com/calvinalkan/dexcache/pkg/dexcache"
)

var errCacheFileExists = errors.New("cache file already exists (use --force to restake)")

// StubCmd returns the stub command.
func StubCmd(d *deps) *Command {
	flags := flag.NewFlagSet("stub", flag.ContinueOnError)
	member := flags.StringP("member", "m", "", "Archive member the cache entry is for")
	jar := flags.Bool("jar", false, "Treat the input as an archive (member defaults to classes.dex)")
	mkdirs := flags.Bool("mkdirs", false, "Create the cache directory if missing")
	force := flags.Bool("force", false, "Replace an existing cache file")

	return &Command{
		Flags: flags,
		Usage: "stub <file> [flags]",
		Short: "Create the cache file and write its placeholder header",
		Long: "Compute the cache-file path for <file>, create the cache file\n" +
			"exclusively, and write the placeholder header that reserves space\n" +
			"for the optimizer's payload. Prints the cache-file path.\n" +
			"The file is flock'd while the header is written, matching the\n" +
			"writer protocol the optimizer uses.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) != 1 {
				return errFileRequired
			}

			m := *member
			if m == "" && *jar {
				m = dexcache.DefaultMemberName
			}

			cachePath, err := d.namer.CacheFileName(args[0], m)
			if err != nil {
				return err
			}

			if err := d.stake(cachePath, *mkdirs, *force); err != nil {
				return err
			}

			o.Println(cachePath)

			return nil
		},
	}
}

// stake creates the cache file and writes the header stub under an
// flock. The exclusive create is the cross-process race arbiter: only
// the process that wins it proceeds to write the stub.
func (d *deps) stake(cachePath string, mkdirs, force bool) error {
	if mkdirs {
		if err := d.fs.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
			return fmt.Errorf("create cache directory: %w", err)
		}
	}

	if force {
		if err := d.fs.Remove(cachePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove stale cache file: %w", err)
		}
	}

	f, err := d.fs.CreateExclusive(cachePath, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: %s", errCacheFileExists, cachePath)
		}

		return fmt.Errorf("create cache file: %w", err)
	}
	defer f.Close()

	lock, err := fs.TakeFlock(f)
	if err != nil {
		return fmt.Errorf("lock cache file: %w", err)
	}
	defer lock.Close()

	if err := dexcache.WriteEmptyHeader(f); err != nil {
		return err
	}

	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync cache file: %w", err)
	}

	return nil
}
