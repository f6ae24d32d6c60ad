package models

type AppRole string

const (
	RoleUser  AppRole = "user"
	RoleAdmin AppRole = "admin"
)

type UserRole struct {
	ID     string  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID string  `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	Role   AppRole `gorm:"column:role;type:text" json:"role"`
}

func (UserRole) TableName() string { return "user_roles" }
