package cli_test

import (
	"strings"
	"testing"

	"github.com/calvinalkan/dexcache/internal/cli"
)

func TestRunNoArgsPrintsUsage(t *testing.T) {
	t.Parallel()

	r := cli.NewCLI(t)

	out, _, code := r.Run()
	if code != 0 {
		t.Fatalf("bare invocation exited %d", code)
	}

	for _, cmd := range []string{"path", "stub", "inspect", "print-config"} {
		if !strings.Contains(out, cmd) {
			t.Errorf("usage output missing %q:\n%s", cmd, out)
		}
	}
}

func TestRunUnknownCommand(t *testing.T) {
	t.Parallel()

	r := cli.NewCLI(t)

	_, stderr, code := r.Run("frobnicate")
	if code == 0 {
		t.Fatal("unknown command succeeded")
	}

	if !strings.Contains(stderr, "unknown command") {
		t.Errorf("stderr = %q, want unknown-command error", stderr)
	}
}

func TestRunGlobalFlagMissingArg(t *testing.T) {
	t.Parallel()

	var out, errOut strings.Builder

	code := cli.Run(nil, &out, &errOut, []string{"dexcache", "--config"}, map[string]string{})
	if code == 0 {
		t.Fatal("--config without value succeeded")
	}

	if !strings.Contains(errOut.String(), "flag requires an argument") {
		t.Errorf("stderr = %q", errOut.String())
	}
}

func TestRunCommandHelp(t *testing.T) {
	t.Parallel()

	r := cli.NewCLI(t)

	out, _, code := r.Run("stub", "--help")
	if code != 0 {
		t.Fatalf("stub --help exited %d", code)
	}

	if !strings.Contains(out, "Usage: dexcache stub") {
		t.Errorf("help output missing usage line:\n%s", out)
	}

	if !strings.Contains(out, "--mkdirs") {
		t.Errorf("help output missing flags:\n%s", out)
	}
}
