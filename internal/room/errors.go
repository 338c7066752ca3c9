package room

import "errors"

var (
	ErrMetadataNotExist = errors.New("room metadata not exist")
	ErrUnknownEvent     = errors.New("unknown event")
)
