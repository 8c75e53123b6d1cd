package tex2png

// Notes:
// - fakeRunner stands in for latex and dvipng. By default it creates the files
//   the real tools would (formula.dvi next to the document, the -o PNG), so
//   the full pipeline can be exercised without TeX installed.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// pngMagic is the 8-byte PNG signature the fake dvipng writes.
var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// fakeRunner records every command and simulates the tools.
type fakeRunner struct {
	mu    sync.Mutex
	calls []Command
	// errs maps a tool name to the error Run returns for it.
	errs map[string]error
	// skipOutput suppresses file creation for a tool name while still
	// reporting success.
	skipOutput map[string]bool
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{errs: map[string]error{}, skipOutput: map[string]bool{}}
}

func (f *fakeRunner) Run(_ context.Context, c Command) error {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()

	tool := filepath.Base(c.Name)
	if err := f.errs[tool]; err != nil {
		return err
	}
	if f.skipOutput[tool] {
		return nil
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

func (f *fakeRunner) Calls() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Command{}, f.calls...)
}

func (f *fakeRunner) toolNames() []string {
	var names []string
	for _, c := range f.Calls() {
		names = append(names, filepath.Base(c.Name))
	}
	return names
}
