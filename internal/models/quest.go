package models

import (
	"time"

	"github.com/lib/pq"
)

type QuestStatus string

const (
	QuestAvailable  QuestStatus = "available" // derived only, never stored
	QuestStarted    QuestStatus = "started"
	QuestInProgress QuestStatus = "in_progress"
	QuestCompleted  QuestStatus = "completed"
)

type Quest struct {
	ID          string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Title       string `gorm:"column:title;type:text" json:"title"`
	Description string `gorm:"column:description;type:text" json:"description"`
	Difficulty  string `gorm:"column:difficulty;type:text" json:"difficulty"`
	Category    string `gorm:"column:category;type:text" json:"category"`

	RequiredSkills pq.StringArray `gorm:"column:required_skills;type:text[]" json:"required_skills"`

	ImageURL *string `gorm:"column:image_url;type:text" json:"image_url,omitempty"`
	IsActive bool    `gorm:"column:is_active" json:"is_active"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Quest) TableName() string { return "quests" }

type UserQuest struct {
	ID      string      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID  string      `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	QuestID string      `gorm:"column:quest_id;type:uuid;index" json:"quest_id"`
	Status  QuestStatus `gorm:"column:status;type:text" json:"status"`

	// 0..100
	Progress int `gorm:"column:progress" json:"progress"`

	CompletedAt *time.Time `gorm:"column:completed_at;type:timestamptz" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`

	Quest *Quest `gorm:"foreignKey:QuestID" json:"quest,omitempty"`
}

func (UserQuest) TableName() string { return "user_quests" }
