package tex2png

// Notes:
// - All conversions go through fakeRunner (see tools_helpers_test.go); the
//   real latex/dvipng pipeline is covered by converter_integration_test.go.
// - Tests that resolve relative output paths chdir and are not parallel.

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-tex2png/internal/logging"
)

// ---------------------------------------------------------------------------
// Test doubles for the capability interfaces
// ---------------------------------------------------------------------------

type stubComposer struct {
	texPath string
	doc     string
	err     error
}

func (s *stubComposer) Compose(_ context.Context, texPath string) (string, error) {
	s.texPath = texPath
	data, _ := os.ReadFile(texPath)
	s.doc = string(data)
	if s.err != nil {
		return "", s.err
	}
	return dviPathFor(texPath), nil
}

type stubRasterizer struct {
	called bool
	dvi    string
	opts   RasterOptions
}

func (s *stubRasterizer) Rasterize(_ context.Context, dviPath string, opts RasterOptions) error {
	s.called = true
	s.dvi = dviPath
	s.opts = opts
	return os.WriteFile(opts.Output, pngMagic, 0o644)
}

// ---------------------------------------------------------------------------
// TestConverter_Convert - Happy path
// ---------------------------------------------------------------------------

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	runner := newFakeRunner()
	output := filepath.Join(t.TempDir(), "out.png")

	res, err := NewConverter(WithRunner(runner)).Convert(context.Background(),
		Request{Expression: "E = 5 + m*c^2", Size: "800", Output: output})
	require.NoError(t, err)

	assert.Equal(t, output, res.Output)
	assert.FileExists(t, output)
	assert.Equal(t, []string{"latex", "dvipng"}, runner.toolNames(), "stages run in order")

	assert.True(t, res.Removed)
	assert.NoDirExists(t, res.WorkDir, "scoped work directory must be removed")

	calls := runner.Calls()
	assert.Equal(t, calls[0].Dir, calls[1].Dir, "dvipng reads latex's DVI from the same directory")
	assert.Contains(t, calls[1].Args, output)
	assert.Contains(t, calls[1].Args, "800")
}

func TestConverter_Convert_DocumentContent(t *testing.T) {
	t.Parallel()

	comp := &stubComposer{}
	raster := &stubRasterizer{}
	output := filepath.Join(t.TempDir(), "out.png")

	_, err := NewConverter(WithComposer(comp), WithRasterizer(raster)).Convert(context.Background(),
		Request{Expression: `\int_0^1 x\,dx`, Size: "300", Output: output})
	require.NoError(t, err)

	assert.Equal(t, RenderDocument(`\int_0^1 x\,dx`, DefaultDocumentOptions()), comp.doc)
	assert.Equal(t, DocumentName, filepath.Base(comp.texPath))
	assert.Equal(t, dviPathFor(comp.texPath), raster.dvi)
	assert.Equal(t, RasterOptions{Size: "300", Output: output}, raster.opts)
}

func TestConverter_Convert_DocumentOptions(t *testing.T) {
	t.Parallel()

	comp := &stubComposer{}
	opts := DocumentOptions{Class: "standalone", Packages: []string{"amsmath", "bm"}}

	_, err := NewConverter(WithComposer(comp), WithRasterizer(&stubRasterizer{}), WithDocumentOptions(opts)).
		Convert(context.Background(), Request{Expression: "x", Size: "1", Output: filepath.Join(t.TempDir(), "o.png")})
	require.NoError(t, err)

	assert.Contains(t, comp.doc, "\\usepackage{bm}")
}

// ---------------------------------------------------------------------------
// TestConverter_Convert - Failure propagation
// ---------------------------------------------------------------------------

func TestConverter_Convert_ComposeFailureSkipsRaster(t *testing.T) {
	t.Parallel()

	runner := newFakeRunner()
	runner.errs["latex"] = &ExitError{Name: "latex", Code: 1, Err: errors.New("exit status 1")}
	output := filepath.Join(t.TempDir(), "out.png")

	res, err := NewConverter(WithRunner(runner)).Convert(context.Background(),
		Request{Expression: "\\badmacro", Size: "800", Output: output})

	require.ErrorIs(t, err, ErrComposeFailed)
	assert.Nil(t, res)
	assert.Equal(t, []string{"latex"}, runner.toolNames(), "dvipng must never run after a latex failure")
	assert.NoFileExists(t, output)
}

func TestConverter_Convert_ComposeStartFailure(t *testing.T) {
	t.Parallel()

	runner := newFakeRunner()
	runner.errs["latex"] = ErrToolStart

	_, err := NewConverter(WithRunner(runner)).Convert(context.Background(),
		Request{Expression: "x", Size: "800", Output: filepath.Join(t.TempDir(), "out.png")})

	require.ErrorIs(t, err, ErrToolStart)
	assert.Equal(t, []string{"latex"}, runner.toolNames())
}

func TestConverter_Convert_RasterFailure(t *testing.T) {
	t.Parallel()

	runner := newFakeRunner()
	runner.errs["dvipng"] = &ExitError{Name: "dvipng", Code: 2}

	_, err := NewConverter(WithRunner(runner)).Convert(context.Background(),
		Request{Expression: "x", Size: "800", Output: filepath.Join(t.TempDir(), "out.png")})

	require.ErrorIs(t, err, ErrRasterizeFailed)
	assert.False(t, errors.Is(err, ErrComposeFailed))
}

func TestConverter_Convert_InvalidRequest(t *testing.T) {
	t.Parallel()

	runner := newFakeRunner()

	_, err := NewConverter(WithRunner(runner)).Convert(context.Background(), Request{Expression: "x", Output: "o.png"})
	require.ErrorIs(t, err, ErrEmptySize)
	assert.Empty(t, runner.Calls())
}

func TestConverter_Convert_ScopedDirRemovedOnFailure(t *testing.T) {
	t.Parallel()

	comp := &stubComposer{err: ErrComposeFailed}

	_, err := NewConverter(WithComposer(comp), WithRasterizer(&stubRasterizer{})).Convert(context.Background(),
		Request{Expression: "x", Size: "800", Output: filepath.Join(t.TempDir(), "out.png")})
	require.ErrorIs(t, err, ErrComposeFailed)

	require.NotEmpty(t, comp.texPath)
	assert.NoDirExists(t, filepath.Dir(comp.texPath))

	var ce *ConvertError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, filepath.Dir(comp.texPath), ce.WorkDir)
	assert.False(t, ce.Kept)
}

func TestConverter_Convert_FailureInSharedWorkDirReportsKept(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()
	runner := newFakeRunner()
	runner.errs["latex"] = &ExitError{Name: "latex", Code: 1, Err: errors.New("exit status 1")}

	_, err := NewConverter(WithRunner(runner), WithWorkDir(workDir)).Convert(context.Background(),
		Request{Expression: `\frac{`, Size: "800", Output: filepath.Join(t.TempDir(), "out.png")})

	var ce *ConvertError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, workDir, ce.WorkDir)
	assert.True(t, ce.Kept)
	assert.ErrorIs(t, err, ErrComposeFailed)
	assert.Equal(t, err.Error(), ce.Err.Error())
}

func TestConverter_Convert_StaleDVIInSharedWorkDir(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workDir, DVIName), []byte("previous run"), 0o600))
	output := filepath.Join(t.TempDir(), "out.png")

	runner := newFakeRunner()
	runner.skipOutput["latex"] = true

	_, err := NewConverter(WithRunner(runner), WithWorkDir(workDir)).Convert(context.Background(),
		Request{Expression: "x", Size: "800", Output: output})

	require.ErrorIs(t, err, ErrComposeFailed)
	assert.Equal(t, []string{"latex"}, runner.toolNames(), "dvipng must not render a leftover DVI")
	assert.NoFileExists(t, filepath.Join(workDir, DVIName))
	assert.NoFileExists(t, output)
}

// ---------------------------------------------------------------------------
// TestConverter_Convert - Work directory modes
// ---------------------------------------------------------------------------

func TestConverter_Convert_KeepWorkDir(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	ctx := logging.WithLogger(context.Background(), logging.New(&logs, logging.Level(true, false)))

	res, err := NewConverter(WithRunner(newFakeRunner()), WithKeepWorkDir(true)).Convert(ctx,
		Request{Expression: "x", Size: "800", Output: filepath.Join(t.TempDir(), "out.png")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(res.WorkDir) })

	assert.False(t, res.Removed)
	assert.FileExists(t, filepath.Join(res.WorkDir, DocumentName))
	assert.FileExists(t, filepath.Join(res.WorkDir, DVIName))
	assert.Contains(t, logs.String(), res.WorkDir)
}

func TestConverter_Convert_SharedWorkDir(t *testing.T) {
	t.Parallel()

	workDir := filepath.Join(t.TempDir(), "build")
	output := filepath.Join(t.TempDir(), "out.png")
	conv := NewConverter(WithRunner(newFakeRunner()), WithWorkDir(workDir))

	res, err := conv.Convert(context.Background(), Request{Expression: "first", Size: "800", Output: output})
	require.NoError(t, err)
	assert.Equal(t, workDir, res.WorkDir)
	assert.False(t, res.Removed)
	assert.FileExists(t, filepath.Join(workDir, DocumentName))
	assert.FileExists(t, filepath.Join(workDir, DVIName))

	// Second run overwrites the same files without error.
	_, err = conv.Convert(context.Background(), Request{Expression: "second", Size: "800", Output: output})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(workDir, DocumentName))
	require.NoError(t, err)
	assert.Equal(t, RenderDocument("second", DefaultDocumentOptions()), string(data))
	assert.FileExists(t, output)
}

func TestConverter_Convert_SharedWorkDirLocked(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()
	held := flock.New(filepath.Join(workDir, lockName))
	locked, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, locked)
	t.Cleanup(func() { _ = held.Unlock() })

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	runner := newFakeRunner()
	_, err = NewConverter(WithRunner(runner), WithWorkDir(workDir)).Convert(ctx,
		Request{Expression: "x", Size: "800", Output: filepath.Join(t.TempDir(), "out.png")})

	require.ErrorIs(t, err, ErrWorkDirLock)
	assert.Empty(t, runner.Calls(), "no tool may run while another conversion owns the directory")
}

// Not parallel: changes the working directory.
func TestConverter_Convert_RelativeOutput(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	runner := newFakeRunner()
	res, err := NewConverter(WithRunner(runner)).Convert(context.Background(),
		Request{Expression: "x", Size: "800", Output: "out.png"})
	require.NoError(t, err)

	abs, err := filepath.Abs("out.png")
	require.NoError(t, err)
	assert.Equal(t, abs, res.Output)
	assert.FileExists(t, "out.png")
	assert.Contains(t, runner.Calls()[1].Args, abs, "dvipng runs elsewhere and needs the absolute path")
	assert.NoFileExists(t, DocumentName, "nothing is written to the working directory by default")
}

// Not parallel: changes the working directory.
func TestConverter_Convert_Twice(t *testing.T) {
	t.Chdir(t.TempDir())

	conv := NewConverter(WithRunner(newFakeRunner()), WithWorkDir("."))
	req := Request{Expression: "E = 5 + m*c^2", Size: "800", Output: "output.png"}

	_, err := conv.Convert(context.Background(), req)
	require.NoError(t, err)
	_, err = conv.Convert(context.Background(), req)
	require.NoError(t, err)

	assert.FileExists(t, "output.png")
	assert.FileExists(t, DocumentName)
	assert.FileExists(t, DVIName)
}

// ---------------------------------------------------------------------------
// TestOptions - Option validation
// ---------------------------------------------------------------------------

func TestWithTimeout_PanicsOnNonPositive(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { WithTimeout(0) })
	assert.Panics(t, func() { WithTimeout(-time.Second) })
	assert.NotPanics(t, func() { WithTimeout(time.Second) })
}

func TestWithTimeout_AppliesDeadline(t *testing.T) {
	t.Parallel()

	var deadline time.Time
	var ok bool
	comp := composerFunc(func(ctx context.Context, texPath string) (string, error) {
		deadline, ok = ctx.Deadline()
		return dviPathFor(texPath), nil
	})

	_, err := NewConverter(WithComposer(comp), WithRasterizer(&stubRasterizer{}), WithTimeout(time.Minute)).
		Convert(context.Background(), Request{Expression: "x", Size: "1", Output: filepath.Join(t.TempDir(), "o.png")})
	require.NoError(t, err)

	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestWithCommandsAndOutput(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	runner := newFakeRunner()
	conv := NewConverter(
		WithRunner(runner),
		WithLatexCommand([]string{"latex", "-halt-on-error"}),
		WithDvipngCommand([]string{"dvipng", "-q"}),
		WithToolOutput(&stdout, &stderr),
	)

	_, err := conv.Convert(context.Background(),
		Request{Expression: "x", Size: "800", Output: filepath.Join(t.TempDir(), "out.png")})
	require.NoError(t, err)

	calls := runner.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "-halt-on-error", calls[0].Args[0])
	assert.Equal(t, "-q", calls[1].Args[0])
	for _, c := range calls {
		assert.Same(t, &stdout, c.Stdout)
		assert.Same(t, &stderr, c.Stderr)
	}
}

type composerFunc func(ctx context.Context, texPath string) (string, error)

func (f composerFunc) Compose(ctx context.Context, texPath string) (string, error) {
	return f(ctx, texPath)
}
