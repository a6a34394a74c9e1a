package users

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidRole  = errors.New("unknown role")
	ErrOwnAccount   = errors.New("cannot change or delete your own account here")
	ErrLastAdmin    = errors.New("cannot remove the last admin")
)
