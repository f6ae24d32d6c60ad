package stt

import "context"

// Provider transcribes a recorded voice pitch so the transcript can be
// stored on the profile.
type Provider interface {
	Transcribe(ctx context.Context, audio []byte, language string) (text string, confidence float64, err error)
	Close() error
}
