package tex2png

import "errors"

// Sentinel errors for library operations.
var (
	// Request validation errors.
	ErrEmptySize   = errors.New("size cannot be empty")
	ErrEmptyOutput = errors.New("output path cannot be empty")

	// Document errors.
	ErrWriteDocument = errors.New("failed to write LaTeX document")

	// Tool errors. ErrToolStart means the process never ran; the two failure
	// errors mean it ran and exited unsuccessfully.
	ErrToolStart       = errors.New("failed to start external tool")
	ErrComposeFailed   = errors.New("LaTeX command failed")
	ErrRasterizeFailed = errors.New("dvipng command failed")
	ErrEmptyCommand    = errors.New("tool command cannot be empty")

	// Work directory errors.
	ErrWorkDir     = errors.New("failed to prepare work directory")
	ErrWorkDirLock = errors.New("failed to lock work directory")
)
