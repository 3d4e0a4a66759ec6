package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidNumber indicates a dialogue number that is not a non-negative integer.
	ErrInvalidNumber = errors.New("invalid dialogue number")
	// ErrStoreRequired is returned by New when a database mode has no store.
	ErrStoreRequired = errors.New("record store required for this mode")
)

// ParseNumber parses a dialogue number taken from a URL path.
func ParseNumber(raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	return n, nil
}
