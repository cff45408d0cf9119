package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b , c ", []string{"a", "b", "c"}},
		{"a,,c", []string{"a", "c"}},
		{"", nil},
	}
	for _, c := range cases {
		got := splitCSV(c.in)
		if len(got) != len(c.want) {
			t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("%q -> %v, want %v", c.in, got, c.want)
			}
		}
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := buildRootCmd("testbuild")
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != "mlserved [ commit testbuild ]" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestBatchCommandFromStdin(t *testing.T) {
	repos := t.TempDir()
	script := `{"cmd":"service_create","service":"s","mllib":"linreg","model":{"repository":"s","create_repository":true},"parameters":{"input":{"label":"y"}}}
{"cmd":"train","service":"s","data":["x,y\n1,2\n2,4\n"]}
{"cmd":"service_list"}
`
	out, errOut, err := execute(t, script, "batch", "--repos-dir", repos, "--log-level", "error")
	if err != nil {
		t.Fatalf("batch: %v (stderr %s)", err, errOut)
	}
	if n := strings.Count(out, "\n"); n != 3 {
		t.Fatalf("expected 3 result lines, got %d: %s", n, out)
	}
	if strings.Contains(out, "commit") {
		t.Fatalf("banner written to stdout: %s", out)
	}
	if !strings.Contains(errOut, "mlserved [ commit testbuild ]") {
		t.Fatalf("banner missing from stderr: %s", errOut)
	}
	if _, err := os.Stat(filepath.Join(repos, "s", "model.json")); err != nil {
		t.Fatalf("trained model not saved: %v", err)
	}
}

func TestBatchCommandMissingFile(t *testing.T) {
	if _, _, err := execute(t, "", "batch", filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatalf("expected error for missing script")
	}
}

func TestRunCommand(t *testing.T) {
	repos := t.TempDir()
	out, errOut, err := execute(t, "", "run",
		"--repos-dir", repos,
		"--service", "cli",
		"--repository", "cli",
		"--create-repository",
		"--parameters", `{"input":{"label":"y"},"mllib":{"iterations":10}}`,
		"--data", "x,y\n1,2\n2,4\n",
		"--predict-data", "x\n3\n",
		"--train", "--predict",
	)
	if err != nil {
		t.Fatalf("run: %v (stderr %s)", err, errOut)
	}
	if n := strings.Count(out, "\n"); n != 4 {
		t.Fatalf("expected 4 result lines, got %d: %s", n, out)
	}
	if !strings.Contains(out, `"predictions"`) {
		t.Fatalf("missing predictions: %s", out)
	}
}

func TestConfigFlagErrors(t *testing.T) {
	if _, _, err := execute(t, "", "version", "--config", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config")
	}
	if _, _, err := execute(t, "", "version", "--log-format", "xml"); err == nil {
		t.Fatalf("expected error for bad log format")
	}
}
