package ledger

import "errors"

// Sentinel errors reported by the ledger. Every one of them is returned before
// any counter is mutated.
var (
	ErrEditionNotFound           = errors.New("edition not found")
	ErrCardNotFound              = errors.New("card not found")
	ErrInvalidCapacity           = errors.New("capacity must be greater than zero")
	ErrInvalidName               = errors.New("edition name is required")
	ErrEditionLimitReached       = errors.New("edition limit reached")
	ErrCapacityExceeded          = errors.New("not enough remaining capacity")
	ErrSelfReservationNotAllowed = errors.New("the ledger cannot reserve for itself")
	ErrInvalidRecipient          = errors.New("invalid recipient")
	ErrReservationNotFound       = errors.New("no outstanding reservation")
	ErrSeriesOverflow            = errors.New("series number overflow")
)
