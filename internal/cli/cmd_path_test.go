package cli_test

import (
	"strings"
	"testing"

	"github.com/calvinalkan/dexcache/internal/cli"
)

func TestPathCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		env  map[string]string
		want string
	}{
		{
			name: "bare dex file under data",
			args: []string{"path", "/data/app/foo.dex"},
			want: "/data/dalvik-cache/data@app@foo.dex",
		},
		{
			name: "jar flag appends default member",
			args: []string{"path", "--jar", "/data/app/foo.apk"},
			want: "/data/dalvik-cache/data@app@foo.apk@classes.dex",
		},
		{
			name: "explicit member",
			args: []string{"path", "-m", "classes2.dex", "/data/app/foo.apk"},
			want: "/data/dalvik-cache/data@app@foo.apk@classes2.dex",
		},
		{
			name: "system apk redirects to cache root",
			args: []string{"path", "--jar", "/system/app/bar.apk"},
			want: "/cache/dalvik-cache/system@app@bar.apk@classes.dex",
		},
		{
			name: "data-only property keeps system apk under data",
			args: []string{"path", "/system/app/bar.apk"},
			env:  map[string]string{"dalvik.vm.dexopt-data-only": "1"},
			want: "/data/dalvik-cache/system@app@bar.apk",
		},
		{
			name: "cache-only wins over data-only",
			args: []string{"path", "/data/app/foo.dex"},
			env: map[string]string{
				"dalvik.vm.dexopt-data-only":  "1",
				"dalvik.vm.dexopt-cache-only": "1",
			},
			want: "/cache/dalvik-cache/data@app@foo.dex",
		},
		{
			name: "env root overrides",
			args: []string{"path", "/data/app/foo.dex"},
			env:  map[string]string{"ANDROID_DATA": "/mnt/data"},
			want: "/mnt/data/dalvik-cache/data@app@foo.dex",
		},
		{
			name: "flat prints only the flattened name",
			args: []string{"path", "--flat", "--jar", "/data/app/foo.apk"},
			want: "/data@app@foo.apk@classes.dex",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := cli.NewCLI(t)
			for k, v := range tt.env {
				r.Env[k] = v
			}

			got := r.MustRun(tt.args...)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPathCommandRelativeInput(t *testing.T) {
	t.Parallel()

	r := cli.NewCLI(t)

	got := r.MustRun("path", "foo.dex")

	flat := strings.ReplaceAll(r.Dir[1:], "/", "@")
	want := "/data/dalvik-cache/" + flat + "@foo.dex"

	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPathCommandMultipleInputs(t *testing.T) {
	t.Parallel()

	r := cli.NewCLI(t)

	out := r.MustRun("path", "/data/a.dex", "/data/b.dex")

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), out)
	}

	if lines[0] != "/data/dalvik-cache/data@a.dex" || lines[1] != "/data/dalvik-cache/data@b.dex" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestPathCommandRequiresInput(t *testing.T) {
	t.Parallel()

	r := cli.NewCLI(t)

	_, stderr, code := r.Run("path")
	if code == 0 {
		t.Fatal("path without arguments succeeded")
	}

	if !strings.Contains(stderr, "input file is required") {
		t.Errorf("stderr = %q, want input-file error", stderr)
	}
}
