package cutting

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidStockLength is returned when the stock length is not a positive finite number.
	ErrInvalidStockLength = errors.New("stock length must be a positive number")
	// ErrInvalidCutRequest is returned when a requested length is non-numeric, zero, or negative.
	ErrInvalidCutRequest = errors.New("cut length must be a positive number")
	// ErrOverflow is returned when a cut longer than the stock length reaches the packer.
	ErrOverflow = errors.New("cut exceeds stock length")
	// ErrUnknownPolicy is returned for placement policies other than best-fit and first-fit.
	ErrUnknownPolicy = errors.New("unknown placement policy")
	// ErrTooManySegments is returned when splitting would produce more cuts than can be counted.
	ErrTooManySegments = errors.New("request splits into too many stock-length segments")
)

// CutError describes a single offending entry in a cut list.
// Index is zero-based; Token holds the raw text when the value came from parsed input.
type CutError struct {
	Index int
	Value float64
	Token string
	Err   error
}

func (e *CutError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("entry %d (%q): %v", e.Index+1, e.Token, e.Err)
	}
	return fmt.Sprintf("entry %d (%g): %v", e.Index+1, e.Value, e.Err)
}

func (e *CutError) Unwrap() error {
	return e.Err
}
