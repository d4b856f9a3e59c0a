// Package importerr defines the closed set of errors an import can fail with.
//
// Every error returned by the extractors, the analyzer pipeline and the merge
// coordinator that is caused by the input (rather than by I/O on the caller's
// side) is one of the types in this package. Callers match them with
// [errors.As] or inspect [KindOf]; formatting for end users is left to the
// presentation layer.
package importerr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies which member of the taxonomy an error is.
type Kind int

const (
	// KindNone is returned by KindOf for errors outside the taxonomy.
	KindNone Kind = iota
	// KindUnsupportedExtension indicates a file whose format cannot be determined.
	KindUnsupportedExtension
	// KindInvalidFormat indicates a corrupt or unreadable container.
	KindInvalidFormat
	// KindMissingComponent indicates a container lacking a required part.
	KindMissingComponent
	// KindIncompatibleHeader indicates a multi-file merge with differing headers.
	KindIncompatibleHeader
	// KindMissingOptionalSupport indicates a recognised format without a registered reader.
	KindMissingOptionalSupport
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindUnsupportedExtension:
		return "unsupported_extension"
	case KindInvalidFormat:
		return "invalid_format"
	case KindMissingComponent:
		return "missing_component"
	case KindIncompatibleHeader:
		return "incompatible_header"
	case KindMissingOptionalSupport:
		return "missing_optional_support"
	default:
		return "none"
	}
}

// Error is implemented only by the error types of this package.
type Error interface {
	error
	Kind() Kind
	importError()
}

// UnsupportedExtensionError is returned when neither the content nor the
// file extension identifies a supported format.
type UnsupportedExtensionError struct {
	Ext string
}

func (e *UnsupportedExtensionError) Error() string {
	if e.Ext == "" {
		return "unsupported file: no extension"
	}
	return fmt.Sprintf("unsupported file extension: %s", e.Ext)
}

func (e *UnsupportedExtensionError) Kind() Kind { return KindUnsupportedExtension }
func (*UnsupportedExtensionError) importError() {}

// InvalidFormatError is returned when a container cannot be decoded.
type InvalidFormatError struct {
	Detail string
	Err    error
}

func (e *InvalidFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid format: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("invalid format: %s", e.Detail)
}

func (e *InvalidFormatError) Unwrap() error { return e.Err }
func (e *InvalidFormatError) Kind() Kind    { return KindInvalidFormat }
func (*InvalidFormatError) importError()    {}

// MissingComponentError is returned when a container lacks a required part,
// such as xl/workbook.xml inside a ZIP workbook.
type MissingComponentError struct {
	Path string
}

func (e *MissingComponentError) Error() string {
	return fmt.Sprintf("missing required component: %s", e.Path)
}

func (e *MissingComponentError) Kind() Kind { return KindMissingComponent }
func (*MissingComponentError) importError() {}

// IncompatibleHeaderError is returned by the merge coordinator when a file's
// normalized header differs from the first file's.
type IncompatibleHeaderError struct {
	Source   string
	Expected []string
	Got      []string
}

func (e *IncompatibleHeaderError) Error() string {
	return fmt.Sprintf("incompatible header in %s: expected [%s], got [%s]",
		e.Source, strings.Join(e.Expected, ", "), strings.Join(e.Got, ", "))
}

func (e *IncompatibleHeaderError) Kind() Kind { return KindIncompatibleHeader }
func (*IncompatibleHeaderError) importError() {}

// MissingOptionalSupportError is returned when the detected format has no
// reader registered.
type MissingOptionalSupportError struct {
	Format string
}

func (e *MissingOptionalSupportError) Error() string {
	return fmt.Sprintf("no reader available for %s files", e.Format)
}

func (e *MissingOptionalSupportError) Kind() Kind { return KindMissingOptionalSupport }
func (*MissingOptionalSupportError) importError() {}

// KindOf reports the taxonomy kind of err, looking through wrapped errors.
func KindOf(err error) Kind {
	var ie Error
	if errors.As(err, &ie) {
		return ie.Kind()
	}
	return KindNone
}

// Invalid is shorthand for an InvalidFormatError.
func Invalid(detail string, err error) error {
	return &InvalidFormatError{Detail: detail, Err: err}
}
