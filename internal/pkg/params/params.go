// Package params reads numeric ids from route params and query strings.
package params

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ErrInvalidID is returned for ids that are not positive integers.
var ErrInvalidID = errors.New("Invalid id")

// ID parses a positive integer route param.
func ID(c *fiber.Ctx, name string) (uint64, error) {
	return parse(c.Params(name))
}

// OptionalQueryID parses a positive integer query value. Missing returns nil.
func OptionalQueryID(c *fiber.Ctx, name string) (*uint64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parse(raw string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
