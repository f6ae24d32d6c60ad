package models

import (
	"time"

	"github.com/lib/pq"
)

type Profile struct {
	ID       string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	FullName string `gorm:"column:full_name;type:text" json:"full_name"`
	Bio      string `gorm:"column:bio;type:text" json:"bio"`

	AvatarURL     *string `gorm:"column:avatar_url;type:text" json:"avatar_url,omitempty"`
	LinkedinURL   *string `gorm:"column:linkedin_url;type:text" json:"linkedin_url,omitempty"`
	GithubURL     *string `gorm:"column:github_url;type:text" json:"github_url,omitempty"`
	CVURL         *string `gorm:"column:cv_url;type:text" json:"cv_url,omitempty"`
	VoicePitchURL *string `gorm:"column:voice_pitch_url;type:text" json:"voice_pitch_url,omitempty"`

	// transcript of the uploaded voice pitch, filled by the speech provider
	VoiceTranscript string `gorm:"column:voice_transcript;type:text" json:"voice_transcript,omitempty"`

	Skills pq.StringArray `gorm:"column:skills;type:text[]" json:"skills"`

	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }

// ProfilePatch carries a partial profile update. Nil fields are left
// untouched.
type ProfilePatch struct {
	FullName        *string   `json:"full_name,omitempty"`
	Bio             *string   `json:"bio,omitempty"`
	AvatarURL       *string   `json:"avatar_url,omitempty"`
	LinkedinURL     *string   `json:"linkedin_url,omitempty"`
	GithubURL       *string   `json:"github_url,omitempty"`
	CVURL           *string   `json:"cv_url,omitempty"`
	VoicePitchURL   *string   `json:"voice_pitch_url,omitempty"`
	VoiceTranscript *string   `json:"voice_transcript,omitempty"`
	Skills          *[]string `json:"skills,omitempty"`
}

// Apply merges the patch into p and refreshes the timestamp.
func (patch ProfilePatch) Apply(p *Profile) {
	if patch.FullName != nil {
		p.FullName = *patch.FullName
	}
	if patch.Bio != nil {
		p.Bio = *patch.Bio
	}
	if patch.AvatarURL != nil {
		p.AvatarURL = patch.AvatarURL
	}
	if patch.LinkedinURL != nil {
		p.LinkedinURL = patch.LinkedinURL
	}
	if patch.GithubURL != nil {
		p.GithubURL = patch.GithubURL
	}
	if patch.CVURL != nil {
		p.CVURL = patch.CVURL
	}
	if patch.VoicePitchURL != nil {
		p.VoicePitchURL = patch.VoicePitchURL
	}
	if patch.VoiceTranscript != nil {
		p.VoiceTranscript = *patch.VoiceTranscript
	}
	if patch.Skills != nil {
		p.Skills = *patch.Skills
	}
	p.UpdatedAt = time.Now().UTC()
}
