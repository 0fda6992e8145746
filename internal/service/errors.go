package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrEmailTaken     = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrHasBooks       = fmt.Errorf("%w: author has books", ErrConflict)
	ErrDuplicateTitle = fmt.Errorf("%w: author already has a book with this title", ErrConflict)
	ErrUnknownAuthor  = fmt.Errorf("%w: author does not exist", ErrValidation)
)
