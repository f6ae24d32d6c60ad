package services

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/khadmahq/khadma/internal/models"
	"github.com/khadmahq/khadma/internal/providers/stt"
	pgrepo "github.com/khadmahq/khadma/internal/repositories/postgres"
	"github.com/khadmahq/khadma/internal/storage"
	"github.com/khadmahq/khadma/internal/utils"
)

// UploadService stores profile files (avatar, CV, voice pitch) in object
// storage, records them, and writes the resulting URL back onto the
// profile. Voice pitches are additionally transcribed.
type UploadService interface {
	Upload(ctx context.Context, userID string, kind models.FileKind, fileName string, fileSize int, mimeType string, r io.Reader) (*models.ProfileFile, error)
}

type uploadService struct {
	files    pgrepo.FileRepository
	profiles ProfileService
	uploader storage.Uploader
	speech   stt.Provider
	log      *logrus.Logger
}

func NewUploadService(files pgrepo.FileRepository, profiles ProfileService, uploader storage.Uploader, speech stt.Provider, log *logrus.Logger) UploadService {
	if log == nil {
		log = logrus.New()
	}
	return &uploadService{files: files, profiles: profiles, uploader: uploader, speech: speech, log: log}
}

func objectName(userID string, kind models.FileKind) string {
	return string(kind) + "/" + userID + "/" + uuid.NewString()
}

func (s *uploadService) Upload(ctx context.Context, userID string, kind models.FileKind, fileName string, fileSize int, mimeType string, r io.Reader) (*models.ProfileFile, error) {
	const op = "UploadService.Upload"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	switch kind {
	case models.FileAvatar, models.FileCV, models.FileVoicePitch:
	default:
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown file kind", nil)
	}
	if s.uploader == nil {
		return nil, utils.E(utils.CodeInternal, op, "uploader is not configured", nil)
	}

	// Voice pitches get read into memory so the same bytes feed both the
	// object store and the transcription call.
	var voiceBytes []byte
	if kind == models.FileVoicePitch && s.speech != nil {
		b, err := io.ReadAll(io.LimitReader(r, 10<<20))
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to read upload", err)
		}
		voiceBytes = b
		r = bytes.NewReader(b)
	}

	storedPath, err := s.uploader.Upload(ctx, objectName(userID, kind), mimeType, r)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to upload file", err)
	}

	row := &models.ProfileFile{
		ID:       uuid.NewString(),
		UserID:   userID,
		Kind:     kind,
		FileName: fileName,
		FilePath: storedPath,
		FileSize: fileSize,
		MimeType: mimeType,
		UploadAt: time.Now().UTC(),
	}
	if err := s.files.Insert(ctx, row); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to record upload", err)
	}

	patch := models.ProfilePatch{}
	switch kind {
	case models.FileAvatar:
		patch.AvatarURL = &storedPath
	case models.FileCV:
		patch.CVURL = &storedPath
	case models.FileVoicePitch:
		patch.VoicePitchURL = &storedPath
		if len(voiceBytes) > 0 {
			if text, _, terr := s.speech.Transcribe(ctx, voiceBytes, ""); terr != nil {
				s.log.WithError(terr).WithField("user_id", userID).Warn("voice pitch transcription failed")
			} else if text != "" {
				patch.VoiceTranscript = &text
			}
		}
	}

	if _, err := s.profiles.Update(ctx, userID, patch); err != nil {
		return nil, err
	}
	return row, nil
}
