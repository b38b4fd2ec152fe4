package dbtclix

import "errors"

var (
	ErrUnknownCommand   = errors.New("command is not allow-listed")
	ErrInvalidArguments = errors.New("invalid arguments")
)
