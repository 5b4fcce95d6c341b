package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/calvinalkan/dexcache/internal/fs"
	"github.com/calvinalkan/dexcache/pkg/dexcache"
)

const helpFlag = "--help"

var (
	errFlagRequiresArg = errors.New("flag requires an argument")
	errUnknownFlag     = errors.New("unknown flag")
	errUnknownCommand  = errors.New("unknown command")
)

// deps carries the resolved configuration and injected collaborators to
// the commands.
type deps struct {
	cfg   Config
	env   map[string]string
	fs    fs.FS
	namer *dexcache.Namer
}

// globalFlags holds flags that may appear before the command name.
type globalFlags struct {
	workDir    string
	configPath string
	remaining  []string
}

// parseGlobalFlags extracts -C/--cwd and -c/--config from the front of
// args, leaving the command and its arguments in remaining.
func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-C", "--cwd":
			if i+1 >= len(args) {
				return globalFlags{}, fmt.Errorf("%w: %s", errFlagRequiresArg, arg)
			}

			flags.workDir = args[i+1]
			i += 2
		case "-c", "--config":
			if i+1 >= len(args) {
				return globalFlags{}, fmt.Errorf("%w: %s", errFlagRequiresArg, arg)
			}

			flags.configPath = args[i+1]
			i += 2
		default:
			if len(arg) > 1 && arg[0] == '-' && arg != "-h" && arg != helpFlag {
				return globalFlags{}, fmt.Errorf("%w: %s", errUnknownFlag, arg)
			}

			flags.remaining = args[i:]

			return flags, nil
		}
	}

	return flags, nil
}

// Run is the main entry point. Returns exit code.
func Run(_ io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string) int {
	o := NewIO(out, errOut)

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	cfg, err := LoadConfig(LoadConfigInput{
		WorkDirOverride: flags.workDir,
		ConfigPath:      flags.configPath,
		Env:             env,
	})
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	d := &deps{
		cfg: cfg,
		env: env,
		fs:  fs.NewReal(),
		namer: &dexcache.Namer{
			Lookup: cfg.Lookup(env),
			Getwd:  func() (string, error) { return cfg.EffectiveCwd, nil },
		},
	}

	commands := []*Command{
		PathCmd(d),
		StubCmd(d),
		InspectCmd(d),
		PrintConfigCmd(d),
	}

	if len(flags.remaining) == 0 {
		printUsage(o, commands)

		return 0
	}

	name := flags.remaining[0]
	if name == "-h" || name == helpFlag {
		printUsage(o, commands)

		return 0
	}

	for _, cmd := range commands {
		if cmd.Name() == name {
			return cmd.Run(context.Background(), o, flags.remaining[1:])
		}
	}

	o.ErrPrintln("error:", fmt.Errorf("%w: %s", errUnknownCommand, name))
	printUsage(o, commands)

	return 1
}

func printUsage(o *IO, commands []*Command) {
	o.Println("Usage: dexcache [-C <dir>] [-c <config>] <command> [args]")
	o.Println()
	o.Println("Locate and stake out optimized-DEX cache files.")
	o.Println()
	o.Println("Commands:")

	for _, cmd := range commands {
		o.Println(cmd.HelpLine())
	}

	o.Println()
	o.Println("Global flags:")
	o.Println("  -C, --cwd <dir>        Run as if started in <dir>")
	o.Println("  -c, --config <path>    Explicit config file")
}
