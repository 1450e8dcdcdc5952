package dotenv

import "errors"

var (
	ErrNotFound        = errors.New("key not found")
	ErrInvalidEncoding = errors.New("value is not valid utf-8")
	ErrAlreadyEnabled  = errors.New("key is not disabled")
	ErrIO              = errors.New("i/o failure")
	ErrInvalidKey      = errors.New("invalid key")
	ErrInvalidValue    = errors.New("invalid value")
)
