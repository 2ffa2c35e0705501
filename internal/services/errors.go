package services

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "github.com/charlesng35/cmdstash/pkg/errors"
)

// isUniqueConstraintError detects database uniqueness constraint violations across vendors.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr != nil && pgErr.Code == "23505" {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr != nil && myErr.Number == 1062 {
		return true
	}

	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique") ||
		strings.Contains(lower, "duplicate") ||
		strings.Contains(lower, "constraint")
}

// duplicateKeyError maps a store uniqueness failure onto the offending field by
// inspecting the vendor error message. Falls back to a generic field name when the
// column cannot be determined.
func duplicateKeyError(err error, candidates ...string) error {
	lower := strings.ToLower(err.Error())
	for _, field := range candidates {
		if strings.Contains(lower, strings.ToLower(field)) {
			return apperrors.NewDuplicateKey(field).WithInternal(err)
		}
	}
	return apperrors.NewDuplicateKey("key").WithInternal(err)
}
