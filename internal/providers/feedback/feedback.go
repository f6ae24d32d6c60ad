// Package feedback wraps the AI services that review interview answers.
package feedback

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/khadmahq/khadma/internal/models"
)

const reviewSystemPrompt = `You are an AI interview coach. Analyze the candidate's answer to an interview question and provide structured feedback.
Format your response as a JSON object with the following fields:
- score: a number from 1 to 10 rating the answer
- strengths: an array of strengths in the answer (limit to 3)
- areas_to_improve: an array of areas that could be improved (limit to 3)
- suggestions: specific advice for improvement
- overall_feedback: general feedback about the answer

Your feedback should be constructive, insightful, and tailored to a job interview context.`

const coachSystemPrompt = "You are a live interview coach. React to the candidate's answer concisely and suggest one concrete improvement."

type Provider interface {
	// Review returns structured feedback for one question/answer pair.
	Review(ctx context.Context, question, answer string) (*models.Feedback, error)
	// StreamCoach returns incremental coach commentary for a live
	// practice turn.
	StreamCoach(ctx context.Context, question, answer string) (<-chan string, <-chan error)
	Close() error
}

func reviewUserPrompt(question, answer string) string {
	return "Interview Question: " + question + "\n\nCandidate's Answer: " + answer
}

// parseFeedback decodes the model's JSON reply, tolerating code fences
// and trailing prose around the object.
func parseFeedback(raw string) (*models.Feedback, error) {
	raw = strings.TrimSpace(raw)
	if i := strings.Index(raw, "{"); i >= 0 {
		if j := strings.LastIndex(raw, "}"); j > i {
			raw = raw[i : j+1]
		}
	}

	var fb models.Feedback
	if err := json.Unmarshal([]byte(raw), &fb); err != nil {
		return nil, err
	}
	return &fb, nil
}
