package tex2png

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Intermediate file names. The DVI name is chosen by latex from the document
// base name, not by this package.
const (
	DocumentName = "formula.tex"
	DVIName      = "formula.dvi"
)

// Document defaults.
const (
	DefaultDocumentClass = "standalone"
	DefaultMathPackage   = "amsmath"
)

// filePermissions for the generated document: rw-r--r--.
const filePermissions = 0o644

// DocumentOptions configures the LaTeX preamble.
type DocumentOptions struct {
	Class    string   // empty = standalone
	Packages []string // nil = [amsmath]; empty non-nil = none
}

// DefaultDocumentOptions returns the standalone/amsmath preamble.
func DefaultDocumentOptions() DocumentOptions {
	return DocumentOptions{
		Class:    DefaultDocumentClass,
		Packages: []string{DefaultMathPackage},
	}
}

// RenderDocument embeds expr in a minimal standalone LaTeX document.
//
// The expression is inserted verbatim between "$ " and " $". Nothing is
// escaped: the expression is caller-trusted input, and text that closes the
// math environment or issues commands will do so in the generated document.
func RenderDocument(expr string, opts DocumentOptions) string {
	class := opts.Class
	if class == "" {
		class = DefaultDocumentClass
	}
	packages := opts.Packages
	if packages == nil {
		packages = []string{DefaultMathPackage}
	}

	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "\\documentclass{%s}\n", class)
	for _, pkg := range packages {
		fmt.Fprintf(&b, "\\usepackage{%s}\n", pkg)
	}
	b.WriteString("\\begin{document}\n")
	b.WriteString("    $ ")
	b.WriteString(expr)
	b.WriteString(" $\n")
	b.WriteString("\\end{document}\n")
	return b.String()
}

// WriteDocument renders expr and writes it to dir/formula.tex, replacing any
// existing file. Returns the absolute path of the written document.
func WriteDocument(dir, expr string, opts DocumentOptions) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteDocument, err)
	}
	path := filepath.Join(absDir, DocumentName)

	if err := os.WriteFile(path, []byte(RenderDocument(expr, opts)), filePermissions); err != nil {
		return "", fmt.Errorf("%w: %w", ErrWriteDocument, err)
	}
	return path, nil
}

// dviPathFor returns the DVI file latex produces for texPath: same directory,
// same base name, .dvi extension.
func dviPathFor(texPath string) string {
	return strings.TrimSuffix(texPath, filepath.Ext(texPath)) + ".dvi"
}
