package util

// DateFormat 出生日期等纯日期字段的格式
const DateFormat = "2006-01-02"

// 认证相关
const (
	ContextUserKey = "user"
	BearerPrefix   = "Bearer "
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 200
)
