package errors

import (
	"math"
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

// MaxNodeIDLength bounds node ids accepted from documents.
const MaxNodeIDLength = 256

// ValidateNodeID validates a node id from a tree document.
//
// Ids name nodes in diagnostics, surfaces and rendered output, so the rules
// keep them printable:
//   - No empty ids
//   - No control characters
//   - Maximum length of MaxNodeIDLength bytes
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidDocument, "node id cannot be empty")
	}

	if len(id) > MaxNodeIDLength {
		return New(ErrCodeInvalidDocument, "node id too long (max %d characters)", MaxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDocument, "node id %q contains control characters", id)
		}
	}

	return nil
}

// ValidateLength validates a padding, spacing or fixed size value.
// The value must be finite and non-negative.
func ValidateLength(field string, v float32) error {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return New(ErrCodeInvalidDocument, "%s must be a finite number", field)
	}
	if v < 0 {
		return New(ErrCodeInvalidDocument, "%s cannot be negative (got %v)", field, v)
	}
	return nil
}

// MaxViewportDimension bounds viewport widths and heights.
const MaxViewportDimension = 1 << 16

// ValidateViewport validates the dimensions a tree is solved against.
func ValidateViewport(width, height float32) error {
	for _, d := range []struct {
		name string
		v    float32
	}{{"width", width}, {"height", height}} {
		f := float64(d.v)
		if math.IsNaN(f) || math.IsInf(f, 0) || d.v < 0 {
			return New(ErrCodeInvalidViewport, "viewport %s must be a finite non-negative number", d.name)
		}
		if d.v > MaxViewportDimension {
			return New(ErrCodeInvalidViewport, "viewport %s too large (max %d)", d.name, MaxViewportDimension)
		}
	}
	return nil
}

// ValidateFormats validates requested output formats against the supported set.
// Formats are compared case-insensitively; an empty list is rejected.
func ValidateFormats(formats, supported []string) error {
	if len(formats) == 0 {
		return New(ErrCodeInvalidFormat, "at least one output format is required")
	}
	for _, f := range formats {
		if !slices.Contains(supported, strings.ToLower(f)) {
			return New(ErrCodeInvalidFormat, "unsupported format %q (supported: %s)", f, strings.Join(supported, ", "))
		}
	}
	return nil
}

// DocumentExtensions are the file extensions a tree document may use.
var DocumentExtensions = []string{".toml", ".json"}

// ValidateDocumentPath validates the path of a tree document.
//
// Validation rules:
//   - Path cannot be empty
//   - No null bytes or control characters
//   - Extension must be one of DocumentExtensions
func ValidateDocumentPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(DocumentExtensions, ext) {
		return New(ErrCodeInvalidPath, "unsupported document type %q (want %s)", ext, strings.Join(DocumentExtensions, " or "))
	}

	return nil
}
