package errors

import "errors"

var (
	ErrNotFound = errors.New("appointment not found")

	ErrUnparseableDatetime = errors.New("appointment datetime could not be parsed")

	ErrDuplicateID = errors.New("appointment with this id already exists")
)
