package main

// Notes:
// - fakeRunner simulates latex and dvipng so runMain can be driven end to end
//   without TeX installed. latex writes <doc>.dvi in its working directory,
//   dvipng writes a PNG signature to its -o argument.
// - newTestEnv captures stdout/stderr; LookPath and ToolVersion fail unless a
//   test replaces them.

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tex2png "github.com/alnah/go-tex2png"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

type fakeRunner struct {
	mu    sync.Mutex
	calls []tex2png.Command
	errs  map[string]error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{errs: map[string]error{}}
}

func (f *fakeRunner) Run(_ context.Context, c tex2png.Command) error {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()

	tool := filepath.Base(c.Name)
	if err := f.errs[tool]; err != nil {
		return err
	}

	switch tool {
	case "latex":
		doc := c.Args[len(c.Args)-1]
		dvi := strings.TrimSuffix(doc, filepath.Ext(doc)) + ".dvi"
		return os.WriteFile(filepath.Join(c.Dir, dvi), []byte("dvi"), 0o644)
	case "dvipng":
		for i, a := range c.Args {
			if a == "-o" && i+1 < len(c.Args) {
				return os.WriteFile(c.Args[i+1], pngMagic, 0o644)
			}
		}
		return errors.New("fake dvipng: no -o argument")
	}
	return nil
}

func (f *fakeRunner) toolNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, c := range f.calls {
		names = append(names, filepath.Base(c.Name))
	}
	return names
}

type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	runner *fakeRunner
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	runner := newFakeRunner()
	return &testEnv{
		Environment: &Environment{
			Stdout: stdout,
			Stderr: stderr,
			Runner: runner,
			LookPath: func(file string) (string, error) {
				return "", errors.New("not found: " + file)
			},
			ToolVersion: func(context.Context, string) (string, error) {
				return "", errors.New("no version")
			},
		},
		stdout: stdout,
		stderr: stderr,
		runner: runner,
	}
}

// run invokes runMain with the program name prepended.
func (e *testEnv) run(args ...string) int {
	return runMain(context.Background(), append([]string{"tex2png"}, args...), e.Environment)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}
