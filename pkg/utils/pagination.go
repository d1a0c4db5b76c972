package utils

import (
	"errors"
	"strconv"
)

const defaultPageSize = 20

// PageParams turns page/pageSize query parameters into the offset and limit
// a list query needs. Missing parameters fall back to the first page with
// the shared default size; non-positive or non-numeric values are rejected.
func PageParams(page, size string) (offset, limit int, err error) {
	limit = defaultPageSize
	if size != "" {
		limit, err = strconv.Atoi(size)
		if err != nil || limit < 1 {
			return 0, 0, errors.New("pageSize must be a positive integer")
		}
	}

	pageNumber := 1
	if page != "" {
		pageNumber, err = strconv.Atoi(page)
		if err != nil || pageNumber < 1 {
			return 0, 0, errors.New("page must be a positive integer")
		}
	}

	return (pageNumber - 1) * limit, limit, nil
}
