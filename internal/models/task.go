package models

import (
	"time"

	"github.com/lib/pq"
)

type TaskStatus string

const (
	TaskOpen      TaskStatus = "open"
	TaskAssigned  TaskStatus = "assigned"
	TaskCompleted TaskStatus = "completed"
)

type ApplicationStatus string

const (
	ApplicationApplied   ApplicationStatus = "applied"
	ApplicationAccepted  ApplicationStatus = "accepted"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationCompleted ApplicationStatus = "completed"
)

type Task struct {
	ID          string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Title       string `gorm:"column:title;type:text" json:"title"`
	Description string `gorm:"column:description;type:text" json:"description"`
	Budget      string `gorm:"column:budget;type:text" json:"budget"`
	Category    string `gorm:"column:category;type:text" json:"category"`

	RequiredSkills pq.StringArray `gorm:"column:required_skills;type:text[]" json:"required_skills"`

	Status   TaskStatus `gorm:"column:status;type:text" json:"status"`
	PosterID *string    `gorm:"column:poster_id;type:uuid" json:"poster_id,omitempty"`

	PostedDate time.Time  `gorm:"column:posted_date;type:timestamptz" json:"posted_date"`
	Deadline   *time.Time `gorm:"column:deadline;type:timestamptz" json:"deadline,omitempty"`
	IsActive   bool       `gorm:"column:is_active" json:"is_active"`
}

func (Task) TableName() string { return "tasks" }

type TaskApplication struct {
	ID          string            `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	TaskID      string            `gorm:"column:task_id;type:uuid;index" json:"task_id"`
	ApplicantID string            `gorm:"column:applicant_id;type:uuid;index" json:"applicant_id"`
	Status      ApplicationStatus `gorm:"column:status;type:text" json:"status"`

	AppliedAt *time.Time `gorm:"column:applied_at;type:timestamptz" json:"applied_at,omitempty"`
	UpdatedAt *time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at,omitempty"`

	Task *Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}

func (TaskApplication) TableName() string { return "task_applications" }
