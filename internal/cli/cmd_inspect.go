package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/dexcache/pkg/dexcache"
)

var (
	errNotACacheFile = errors.New("file smaller than a cache header")
	errStubHeader    = errors.New("header is an unfinalized stub")
)

// InspectCmd returns the inspect command.
func InspectCmd(d *deps) *Command {
	flags := flag.NewFlagSet("inspect", flag.ContinueOnError)
	quiet := flags.BoolP("quiet", "q", false, "No output; exit 0 only if the file is a finalized cache file")

	return &Command{
		Flags: flags,
		Usage: "inspect <cachefile> [flags]",
		Short: "Show header state of a cache file",
		Long: "Read the header of a cache file and report where the payload\n" +
			"begins and whether the header is still the unfinalized stub.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) != 1 {
				return errFileRequired
			}

			f, err := d.fs.Open(args[0])
			if err != nil {
				return fmt.Errorf("open cache file: %w", err)
			}
			defer f.Close()

			header := make([]byte, dexcache.OptHeaderSize)
			if _, err := io.ReadFull(f, header); err != nil {
				return fmt.Errorf("%w: %s", errNotACacheFile, args[0])
			}

			offset, err := dexcache.PayloadOffset(f)
			if err != nil {
				return err
			}

			stub := dexcache.IsStub(header)

			if *quiet {
				if stub {
					return errStubHeader
				}

				return nil
			}

			o.Printf("payload_offset=%d\n", offset)
			o.Printf("stub=%t\n", stub)

			return nil
		},
	}
}
