package projects

import "errors"

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrSlugExists      = errors.New("project slug already exists")
	ErrInvalidSlug     = errors.New("invalid project slug")
	ErrInvalidOrder    = errors.New("reorder list must contain every project exactly once")
)
