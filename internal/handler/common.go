package handler // handler defines http handlers

import (
	"errors"  // errors provides sentinel values used in getUserID
	"strconv" // strconv converts strings to numeric types
	"time"    // time provides the shared clock helper

	"github.com/labstack/echo/v4" // echo context access
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// fail builds the uniform failure body: callers always get a success
// flag plus a human-readable message, never internal error detail.
func fail(message string) echo.Map {
	return echo.Map{"success": false, "message": message}
}

// nowUTC is the clock used for bookable-window checks in handlers.
func nowUTC() time.Time { return time.Now().UTC() }
