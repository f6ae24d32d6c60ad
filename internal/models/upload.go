package models

import "time"

type FileKind string

const (
	FileAvatar     FileKind = "avatar"
	FileCV         FileKind = "cv"
	FileVoicePitch FileKind = "voice_pitch"
)

// ProfileFile records one file uploaded for a profile (avatar, CV, or
// voice pitch). The canonical URL also lands on the profile row itself.
type ProfileFile struct {
	ID       string   `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID   string   `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	Kind     FileKind `gorm:"column:kind;type:text" json:"kind"`
	FileName string   `gorm:"column:file_name;type:text" json:"file_name"`
	FilePath string   `gorm:"column:file_path;type:text" json:"file_path"`

	FileSize int    `gorm:"column:file_size;type:integer" json:"file_size"`
	MimeType string `gorm:"column:mime_type;type:text" json:"mime_type"`

	UploadAt time.Time `gorm:"column:upload_at;type:timestamptz" json:"upload_at"`
}

func (ProfileFile) TableName() string { return "profile_files" }
