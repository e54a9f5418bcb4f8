package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrIssueNotFound     = errors.New("issue not found")
	ErrIssueExists       = errors.New("issue already exists")
	ErrDeveloperNotFound = errors.New("developer not found")
)
