package services

import "errors"

// ErrAccountExists is returned when creating an account whose email is taken.
var ErrAccountExists = errors.New("email account already exists")

// ErrInvalidCredentials is returned on any login failure. It deliberately does
// not distinguish an unknown account from a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrWrongPassword is returned when a password change fails re-verification.
var ErrWrongPassword = errors.New("current password is incorrect")

// ErrNotFound is returned when a record or account lookup misses. Lookups are
// always scoped to the owning account, so a record owned by someone else is
// indistinguishable from one that does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidFolder is returned for folder values outside the five-folder set.
var ErrInvalidFolder = errors.New("invalid folder")

// ErrInvalidAddress is returned for addresses without a local part and domain.
var ErrInvalidAddress = errors.New("invalid email address")
