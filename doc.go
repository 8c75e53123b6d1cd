// Package tex2png renders a LaTeX math expression to a PNG image using the
// latex and dvipng command-line tools.
//
// # Quick Start
//
//	conv := tex2png.NewConverter()
//	result, err := conv.Convert(ctx, tex2png.Request{
//	    Expression: `E = 5 + m*c^2`,
//	    Size:       "800",
//	    Output:     "formula.png",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("PNG successfully created at", result.Output)
//
// # Conversion Pipeline
//
//  1. The expression is embedded in a standalone document (formula.tex).
//  2. latex compiles it to a device-independent file (formula.dvi).
//  3. dvipng renders the DVI at the requested resolution, cropped tightly.
//
// Stage 3 only runs if stage 2 succeeded. By default both stages run in a
// fresh temporary directory that is removed afterwards; WithWorkDir keeps the
// fixed file names in a directory of your choice instead.
//
// # Trust Boundary
//
// The expression is inserted into the document verbatim. It is not escaped or
// validated, so it can end the math environment or run arbitrary TeX.
// Only pass expressions you would be willing to compile yourself.
//
// # Errors
//
// Failures can be classified with errors.Is:
//
//   - ErrToolStart: latex or dvipng could not be started (not installed)
//   - ErrComposeFailed: latex ran and failed
//   - ErrRasterizeFailed: dvipng ran and failed
//   - ErrWriteDocument, ErrWorkDir, ErrWorkDirLock: filesystem problems
//
// A start failure is also wrapped in the stage error, so check ErrToolStart
// first. *ExitError carries the tool's exit status, and *ConvertError names
// the work directory a failed conversion used, which holds formula.log when
// it was kept.
//
// # Custom Backends
//
// Composer and Rasterizer abstract the two stages. Replace either with
// WithComposer or WithRasterizer, or keep the defaults and swap the process
// layer with WithRunner.
package tex2png
