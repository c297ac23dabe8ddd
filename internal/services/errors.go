package services

import (
	"errors"
	"fmt"

	"github.com/sbilibin2017/rewear-exchange/internal/txmanager"
)

// Exchange lifecycle errors
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidState       = errors.New("invalid state")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrConflict           = errors.New("conflict")
)

// translateTxError maps storage level concurrency failures to ErrConflict.
func translateTxError(err error) error {
	if errors.Is(err, txmanager.ErrConflict) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}
