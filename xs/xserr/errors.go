// Package xserr defines the error taxonomy shared by the cross-section packages.
//
// Every failure returned by the library matches exactly one of the four kind
// sentinels via errors.Is. Context (nuclide, material, reaction, temperature,
// energy) travels in *Error so callers never need to parse messages.
package xserr

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds.
var (
	// ErrConfig indicates no data source could be resolved for a nuclide.
	ErrConfig = errors.New("config error")

	// ErrData indicates a fetch or parse failure, or a reaction/temperature
	// absent from loaded data.
	ErrData = errors.New("data error")

	// ErrOutOfRange indicates an energy (or random draw) outside the valid domain.
	ErrOutOfRange = errors.New("out of range")

	// ErrInvalidMaterial indicates an invalid material or element definition.
	ErrInvalidMaterial = errors.New("invalid material")
)

// Error wraps a kind sentinel with the context of the failing query.
type Error struct {
	Kind        error
	Op          string
	Nuclide     string
	Material    string
	MT          int
	Temperature string
	Energy      *float64
	Retryable   bool
	Err         error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())

	var ctx []string
	if e.Material != "" {
		ctx = append(ctx, "material="+e.Material)
	}
	if e.Nuclide != "" {
		ctx = append(ctx, "nuclide="+e.Nuclide)
	}
	if e.MT != 0 {
		ctx = append(ctx, fmt.Sprintf("mt=%d", e.MT))
	}
	if e.Temperature != "" {
		ctx = append(ctx, "temperature="+e.Temperature)
	}
	if e.Energy != nil {
		ctx = append(ctx, fmt.Sprintf("energy=%geV", *e.Energy))
	}
	if len(ctx) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(ctx, " "))
		b.WriteString("]")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New returns an *Error of the given kind with a formatted cause.
func New(kind error, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap returns an *Error of the given kind around err.
func Wrap(kind error, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// WithNuclide sets the nuclide context and returns e.
func (e *Error) WithNuclide(id string) *Error {
	e.Nuclide = id
	return e
}

// WithMaterial sets the material context and returns e.
func (e *Error) WithMaterial(name string) *Error {
	e.Material = name
	return e
}

// WithReaction sets the MT and temperature context and returns e.
func (e *Error) WithReaction(mt int, temperature string) *Error {
	e.MT = mt
	e.Temperature = temperature
	return e
}

// WithEnergy sets the energy context and returns e.
func (e *Error) WithEnergy(energy float64) *Error {
	e.Energy = &energy
	return e
}

// KindOf returns the kind sentinel err matches, or nil.
func KindOf(err error) error {
	for _, k := range []error{ErrConfig, ErrData, ErrOutOfRange, ErrInvalidMaterial} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// IsRetryable reports whether err is a transient data error that a caller may retry.
func IsRetryable(err error) bool {
	var xe *Error
	for errors.As(err, &xe) {
		if xe.Retryable {
			return true
		}
		if xe.Err == nil {
			return false
		}
		err = xe.Err
		xe = nil
	}
	return false
}
