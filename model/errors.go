package model

import "errors"

var (
	ErrUnknownEntityType  = errors.New("unknown entity type")
	ErrInvalidLink        = errors.New("invalid link request")
	ErrUnsupportedDetail  = errors.New("unsupported detail type")
	ErrEntityNotFound     = errors.New("entity not found")
	ErrInvalidSearchLimit = errors.New("invalid search limit")
	ErrInvalidRequest     = errors.New("invalid request")
)
