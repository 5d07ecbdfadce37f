package models

const RoleAdmin = "admin"

type AdminUser struct {
	UserID ID     `json:"user_id"`
	Name   string `json:"user_name"`
	Email  string `json:"user_email"`
	Role   string `json:"user_role" validate:"required"`
}

type LoginData struct {
	Email    string `json:"user_email" binding:"required,email"`
	Password string `json:"user_password" binding:"required"`
}
