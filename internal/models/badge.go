package models

import "time"

type Badge struct {
	ID          string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;type:text" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Category    string    `gorm:"column:category;type:text" json:"category"`
	ImageURL    *string   `gorm:"column:image_url;type:text" json:"image_url,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (Badge) TableName() string { return "badges" }

type UserBadge struct {
	ID       string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID   string    `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	BadgeID  string    `gorm:"column:badge_id;type:uuid;index" json:"badge_id"`
	EarnedAt time.Time `gorm:"column:earned_at;type:timestamptz" json:"earned_at"`

	Badge *Badge `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
}

func (UserBadge) TableName() string { return "user_badges" }
