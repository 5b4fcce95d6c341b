package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/dexcache/pkg/dexcache"
)

var errConfigExists = errors.New("config file already exists")

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(d *deps) *Command {
	flags := flag.NewFlagSet("print-config", flag.ContinueOnError)
	initCfg := flags.Bool("init", false, "Write a starter .dexcache.json in the working directory")

	return &Command{
		Flags: flags,
		Usage: "print-config [flags]",
		Short: "Show resolved roots and policy flags",
		Long: "Display the effective cache policy after merging defaults,\n" +
			"environment, and config files, and which files were loaded.",
		Exec: func(_ context.Context, o *IO, _ []string) error {
			if *initCfg {
				return execInitConfig(o, d)
			}

			return execPrintConfig(o, d)
		},
	}
}

func execPrintConfig(o *IO, d *deps) error {
	policy := dexcache.PolicyFromLookup(d.namer.Lookup)

	root := func(v, def string) string {
		if v == "" {
			return def
		}

		return v
	}

	o.Println("effective_cwd=" + d.cfg.EffectiveCwd)
	o.Println("system_root=" + root(policy.SystemRoot, dexcache.DefaultSystemRoot))
	o.Println("data_root=" + root(policy.DataRoot, dexcache.DefaultDataRoot))
	o.Println("cache_root=" + root(policy.CacheRoot, dexcache.DefaultCacheRoot))
	o.Printf("dexopt_data_only=%t\n", policy.DataOnly)
	o.Printf("dexopt_cache_only=%t\n", policy.CacheOnly)

	o.Println("")
	o.Println("# sources")

	if d.cfg.Sources.Global == "" && d.cfg.Sources.Project == "" {
		o.Println("(defaults and environment only)")
	} else {
		if d.cfg.Sources.Global != "" {
			o.Println("global_config=" + d.cfg.Sources.Global)
		}

		if d.cfg.Sources.Project != "" {
			o.Println("project_config=" + d.cfg.Sources.Project)
		}
	}

	return nil
}

func execInitConfig(o *IO, d *deps) error {
	path := filepath.Join(d.cfg.EffectiveCwd, ConfigFileName)

	exists, err := d.fs.Exists(path)
	if err != nil {
		return err
	}

	if exists {
		return fmt.Errorf("%w: %s", errConfigExists, path)
	}

	if err := d.fs.WriteFileAtomic(path, []byte(starterConfig), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	o.Println(path)

	return nil
}
