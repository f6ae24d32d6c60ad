package models

import (
	"time"

	"gorm.io/datatypes"
)

// Feedback is the structured review returned by the AI feedback provider
// for one interview answer.
type Feedback struct {
	Score           int      `json:"score"` // 1..10
	Strengths       []string `json:"strengths"`        // at most 3
	AreasToImprove  []string `json:"areas_to_improve"` // at most 3
	Suggestions     string   `json:"suggestions"`
	OverallFeedback string   `json:"overall_feedback"`
}

type InterviewSimulation struct {
	ID       string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID   string `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	Question string `gorm:"column:question;type:text" json:"question"`
	Answer   string `gorm:"column:answer;type:text" json:"answer"`

	Feedback datatypes.JSON `gorm:"column:feedback;type:jsonb" json:"feedback,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (InterviewSimulation) TableName() string { return "interview_simulations" }
