package handlers

import (
	"errors"
	"math"
	"strconv"

	"farmdirect/internal/storage"
)

const maxPageLimit = 100

var errInvalidPagination = errors.New("invalid pagination params")

// parsePaginationParams applies paging only when both page and limit are
// given; otherwise every row is returned.
func parsePaginationParams(pageStr, limitStr string) (storage.Page, error) {
	if pageStr == "" || limitStr == "" {
		return storage.Page{}, nil
	}

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		return storage.Page{}, errInvalidPagination
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		return storage.Page{}, errInvalidPagination
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if page-1 > math.MaxInt/limit {
		return storage.Page{}, errInvalidPagination
	}

	return storage.Page{Limit: limit, Offset: (page - 1) * limit}, nil
}
