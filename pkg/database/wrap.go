package database

import (
	"github.com/pkg/errors"
	"github.com/shelfpress/shelfpress/pkg/errcodes"
)

// WrapError maps transport failures onto the retryable StoreUnavailable
// error and stack-wraps everything else.
func WrapError(err error) error {
	if err == nil {
		return nil
	}
	if IsUnavailable(err) {
		return errcodes.StoreUnavailable()
	}
	return errors.WithStack(err)
}
