package orders

import "errors"

var (
	// ErrQuantityLimitExceeded is returned when a line item mutation would
	// push its quantity past the per-product cap.
	ErrQuantityLimitExceeded = errors.New("line item quantity limit exceeded")
	// ErrCartLocationConflict is returned when an item from a different
	// location is added while the cart holds items from its current location.
	ErrCartLocationConflict = errors.New("cart belongs to a different location")
	// ErrNoOpenOrder is returned by mutations that require an existing cart.
	ErrNoOpenOrder = errors.New("no open order for user")

	// errVersionConflict signals a stale optimistic-concurrency write. The
	// pipeline retries against fresh state; it never escapes the service.
	errVersionConflict = errors.New("order version conflict")
)
