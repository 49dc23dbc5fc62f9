package restindex

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// ErrMissingData indicates that a checkpoint summary, its contents, or a
// transaction's input object could not be found in the primary store.
// The index cannot be built correctly without it, so it is not retryable.
var ErrMissingData = errors.New("missing data")

// IsMissingDataError returns whether err is or wraps ErrMissingData
func IsMissingDataError(err error) bool {
	return errors.Is(err, ErrMissingData)
}

// missingDataError marks an error returned by the primary store's data
// model as ErrMissingData. The original error stays the cause, so its
// message and stack trace are kept.
type missingDataError struct {
	cause error
}

func newMissingDataError(cause error) error {
	return &missingDataError{cause: cause}
}

func (e *missingDataError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingData, e.cause)
}

func (e *missingDataError) Is(target error) bool {
	return target == ErrMissingData
}

func (e *missingDataError) Unwrap() error {
	return e.cause
}

// Cause lets errors.Cause find the original error
func (e *missingDataError) Cause() error {
	return e.cause
}

func (e *missingDataError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s: %+v", ErrMissingData, e.cause)
		return
	}
	io.WriteString(s, e.Error())
}

// ErrPackageOwned indicates that an address-owned object carries no type tag.
// Packages cannot be owned, so this means the primary store is corrupted.
var ErrPackageOwned = errors.New("packages cannot be owned")
