package entity

import (
	"errors"
)

var (
	ErrInvalidAmount    = errors.New("gross amount must be positive with at most two decimal places")
	ErrMissingTarget    = errors.New("either class_id or meetup_id must be provided")
	ErrAmbiguousTarget  = errors.New("class_id and meetup_id are mutually exclusive")
	ErrDataNotFound     = errors.New("data not found")
	ErrConflictingData  = errors.New("data conflicts with existing data in unique column")
	ErrInvalidData      = errors.New("invalid data")
	ErrUnauthorized     = errors.New("authentication required")
	ErrForbidden        = errors.New("caller is not allowed to access this resource")
	ErrConfigPathNotSet = errors.New("CONFIG_PATH not set and -config flag not provided")
)
