package types

const (
	NO_PAGINATION = 0
)
