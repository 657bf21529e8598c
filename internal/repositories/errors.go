package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrLikeNotFound = errors.New("like not found")
	ErrUnknownTag   = errors.New("unknown tag")
)

// IsNotFound reports whether err means the record does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateKey reports whether err is a uniqueness violation. Dialects
// without an error translator are recognised by message.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}
