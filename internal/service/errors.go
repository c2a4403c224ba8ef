package service

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrScoreNotFound        = errors.New("score record not found")
	ErrLevelNotFound        = errors.New("level not found")
	ErrPointsConfigNotFound = errors.New("points config not found")
	ErrValidation           = errors.New("validation failed")
)

// validationError 包装为 ErrValidation，调用方用 errors.Is 判断
func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
