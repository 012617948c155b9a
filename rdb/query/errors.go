package query

import "github.com/pkg/errors"

var (
	ErrNoItems             = errors.New("no items to insert")
	ErrNoInsertableColumns = errors.New("table has no insertable columns")
	ErrItemType            = errors.New("item type does not match table")
)
