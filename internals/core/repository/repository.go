package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicate    = errors.New("duplicate record")
	ErrLimitReached = errors.New("limit reached")
)

// translate maps gorm sentinel errors onto the repository ones. Anything else is returned as is.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

type Pagination struct {
	Page  int
	Limit int
}

func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

func (p Pagination) apply(db *gorm.DB) *gorm.DB {
	if p.Limit <= 0 {
		return db
	}
	return db.Offset(p.Offset()).Limit(p.Limit)
}

// likePattern escapes LIKE metacharacters in a user search term.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(term)) + "%"
}
