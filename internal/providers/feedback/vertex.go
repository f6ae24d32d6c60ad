package feedback

import (
	"context"
	"errors"

	vertexgenai "cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/iterator"

	"github.com/khadmahq/khadma/internal/models"
)

type VertexGemini struct {
	client *vertexgenai.Client
	review *vertexgenai.GenerativeModel
	coach  *vertexgenai.GenerativeModel
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	review := c.GenerativeModel(modelName)
	review.ResponseMIMEType = "application/json"
	coach := c.GenerativeModel(modelName)
	return &VertexGemini{client: c, review: review, coach: coach}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) Review(ctx context.Context, question, answer string) (*models.Feedback, error) {
	prompt := reviewSystemPrompt + "\n\n" + reviewUserPrompt(question, answer)

	resp, err := v.review.GenerateContent(ctx, vertexgenai.Text(prompt))
	if err != nil {
		return nil, err
	}

	text := collectText(resp)
	if text == "" {
		return nil, errors.New("vertex: empty response")
	}
	return parseFeedback(text)
}

func (v *VertexGemini) StreamCoach(ctx context.Context, question, answer string) (<-chan string, <-chan error) {
	out := make(chan string, 32)
	errs := make(chan error, 1)

	prompt := coachSystemPrompt + "\n\nQuestion: " + question + "\nAnswer: " + answer

	go func() {
		defer close(out)
		defer close(errs)

		it := v.coach.GenerateContentStream(ctx, vertexgenai.Text(prompt))
		for {
			resp, err := it.Next()
			if err == iterator.Done {
				return
			}
			if err != nil {
				errs <- err
				return
			}

			for _, cand := range resp.Candidates {
				if cand.Content == nil {
					continue
				}
				for _, part := range cand.Content.Parts {
					if t, ok := part.(vertexgenai.Text); ok && string(t) != "" {
						out <- string(t)
					}
				}
			}
		}
	}()

	return out, errs
}

func collectText(resp *vertexgenai.GenerateContentResponse) string {
	var sb []byte
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(vertexgenai.Text); ok {
				sb = append(sb, t...)
			}
		}
	}
	return string(sb)
}
