package util

import "errors"

var (
	ErrEmailRegistered     = errors.New("该邮箱已被注册")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidToken        = errors.New("invalid token")
	ErrWrongPassword       = errors.New("current password is incorrect")
	ErrMissingRegisterInfo = errors.New("name, email and password are required")
)
