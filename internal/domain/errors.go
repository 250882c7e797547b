package domain

import "errors"

var (
	ErrRecordNotFound  = errors.New("permission record not found")
	ErrMalformedRecord = errors.New("permission record is malformed")
	ErrMalformedBatch  = errors.New("sentiment batch is malformed")
	ErrNoDestination   = errors.New("no destination chat configured")
)
