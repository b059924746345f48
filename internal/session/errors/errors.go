package errors

import "errors"

var ErrNotFound = errors.New("search criteria not found")
