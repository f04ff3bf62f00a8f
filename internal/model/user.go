package model

// UserRole 由外部认证服务签发在 JWT 中
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)
