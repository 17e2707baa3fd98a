package repo

import "errors"

var (
	// ErrInvalidLimit — limit выборки должен быть положительным.
	ErrInvalidLimit = errors.New("invalid limit")
)
