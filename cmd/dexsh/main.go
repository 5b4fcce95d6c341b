// Package main provides dexsh, an interactive shell for poking at
// dexcache naming and cache-file headers.
//
// It answers "where would this file's cache entry live, and why" without
// touching the filesystem, and lets you flip policy keys on the fly:
//
//	dexsh> set dalvik.vm.dexopt-cache-only 1
//	dexsh> path /data/app/foo.apk classes.dex
//	/cache/dalvik-cache/data@app@foo.apk@classes.dex
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/calvinalkan/dexcache/pkg/dexcache"
)

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	repl := &REPL{
		overrides: map[string]string{},
	}

	// Overrides shadow the real environment; "unset" masks a key
	// entirely so defaults become observable.
	repl.namer = &dexcache.Namer{
		Lookup: repl.lookup,
		Getwd:  os.Getwd,
	}

	return repl.Run()
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".dexsh_history")
}

var replCommands = []string{
	"path", "flat", "root", "policy", "inspect", "set", "unset", "help", "quit",
}

// REPL holds the interactive session state.
type REPL struct {
	namer     *dexcache.Namer
	overrides map[string]string
	masked    map[string]bool
	liner     *liner.State
}

// lookup resolves keys from session overrides first, then the process
// environment.
func (r *REPL) lookup(key string) (string, bool) {
	if r.masked[key] {
		return "", false
	}

	if v, ok := r.overrides[key]; ok {
		return v, true
	}

	return os.LookupEnv(key)
}

func (r *REPL) Run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(func(line string) []string {
		var out []string

		for _, c := range replCommands {
			if strings.HasPrefix(c, strings.ToLower(line)) {
				out = append(out, c)
			}
		}

		return out
	})

	if f, err := os.Open(historyFile()); err == nil {
		_, _ = r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Println("dexsh - dexcache naming and header inspector")
	fmt.Println("Type 'help' for available commands.")
	fmt.Println()

	for {
		line, err := r.liner.Prompt("dexsh> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println("\nBye!")

				break
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			fmt.Println("Bye!")

			r.saveHistory()

			return nil

		case "help", "?":
			r.printHelp()

		case "path":
			r.cmdPath(args)

		case "flat":
			r.cmdFlat(args)

		case "root":
			r.cmdRoot(args)

		case "policy", "env":
			r.cmdPolicy()

		case "inspect":
			r.cmdInspect(args)

		case "set":
			r.cmdSet(args)

		case "unset":
			r.cmdUnset(args)

		default:
			fmt.Printf("unknown command %q (try 'help')\n", cmd)
		}
	}

	r.saveHistory()

	return nil
}

func (r *REPL) saveHistory() {
	path := historyFile()
	if path == "" {
		return
	}

	if f, err := os.Create(path); err == nil {
		_, _ = r.liner.WriteHistory(f)
		f.Close()
	}
}

func (r *REPL) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  path <file> [member]     Cache-file path for an input (member e.g. classes.dex)")
	fmt.Println("  flat <file> [member]     Flattened name only, no root selection")
	fmt.Println("  root <file> [member]     Which root the input selects, and why")
	fmt.Println("  policy                   Show the resolved policy")
	fmt.Println("  inspect <cachefile>      Read a cache file's header stub state")
	fmt.Println("  set <key> <value>        Override a lookup key for this session")
	fmt.Println("  unset <key>              Mask a key so the default applies")
	fmt.Println("  help                     Show this help")
	fmt.Println("  quit                     Exit")
}

// splitInput returns the file and optional member from REPL args.
func splitInput(args []string) (string, string, bool) {
	if len(args) == 0 || len(args) > 2 {
		return "", "", false
	}

	member := ""
	if len(args) == 2 {
		member = args[1]
	}

	return args[0], member, true
}

func (r *REPL) cmdPath(args []string) {
	file, member, ok := splitInput(args)
	if !ok {
		fmt.Println("usage: path <file> [member]")

		return
	}

	p, err := r.namer.CacheFileName(file, member)
	if err != nil {
		fmt.Println("error:", err)

		return
	}

	fmt.Println(p)
}

func (r *REPL) cmdFlat(args []string) {
	file, member, ok := splitInput(args)
	if !ok {
		fmt.Println("usage: flat <file> [member]")

		return
	}

	flat, err := r.namer.Canonicalize(file, member)
	if err != nil {
		fmt.Println("error:", err)

		return
	}

	fmt.Println(flat)
}

func (r *REPL) cmdRoot(args []string) {
	file, member, ok := splitInput(args)
	if !ok {
		fmt.Println("usage: root <file> [member]")

		return
	}

	flat, err := r.namer.Canonicalize(file, member)
	if err != nil {
		fmt.Println("error:", err)

		return
	}

	policy := dexcache.PolicyFromLookup(r.namer.Lookup)
	root := dexcache.SelectRoot(flat, policy)

	fmt.Printf("root=%s\n", root)

	switch {
	case policy.CacheOnly:
		fmt.Println("reason: dexopt-cache-only is asserted")
	case strings.HasPrefix(flat, policySystemRoot(policy)) && !policy.DataOnly:
		fmt.Println("reason: input is under the system root")
	case strings.HasPrefix(flat, policySystemRoot(policy)):
		fmt.Println("reason: system input pinned to data root by dexopt-data-only")
	default:
		fmt.Println("reason: default data-root placement")
	}
}

func policySystemRoot(p dexcache.Policy) string {
	if p.SystemRoot != "" {
		return p.SystemRoot
	}

	return dexcache.DefaultSystemRoot
}

func (r *REPL) cmdPolicy() {
	policy := dexcache.PolicyFromLookup(r.namer.Lookup)

	show := func(name, v, def string) {
		if v == "" {
			fmt.Printf("%s=%s (default)\n", name, def)
		} else {
			fmt.Printf("%s=%s\n", name, v)
		}
	}

	show("system_root", policy.SystemRoot, dexcache.DefaultSystemRoot)
	show("data_root", policy.DataRoot, dexcache.DefaultDataRoot)
	show("cache_root", policy.CacheRoot, dexcache.DefaultCacheRoot)
	fmt.Printf("dexopt_data_only=%t\n", policy.DataOnly)
	fmt.Printf("dexopt_cache_only=%t\n", policy.CacheOnly)
}

func (r *REPL) cmdInspect(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: inspect <cachefile>")

		return
	}

	f, err := os.Open(args[0])
	if err != nil {
		fmt.Println("error:", err)

		return
	}
	defer f.Close()

	header := make([]byte, dexcache.OptHeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		fmt.Println("error: file smaller than a cache header")

		return
	}

	offset, err := dexcache.PayloadOffset(f)
	if err != nil {
		fmt.Println("error:", err)

		return
	}

	fmt.Printf("payload_offset=%d\n", offset)
	fmt.Printf("stub=%t\n", dexcache.IsStub(header))
}

func (r *REPL) cmdSet(args []string) {
	if len(args) != 2 {
		fmt.Println("usage: set <key> <value>")

		return
	}

	delete(r.masked, args[0])
	r.overrides[args[0]] = args[1]
}

func (r *REPL) cmdUnset(args []string) {
	if len(args) != 1 {
		fmt.Println("usage: unset <key>")

		return
	}

	delete(r.overrides, args[0])

	if r.masked == nil {
		r.masked = map[string]bool{}
	}

	r.masked[args[0]] = true
}
