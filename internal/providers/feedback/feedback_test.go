package feedback

import "testing"

func TestParseFeedbackPlainJSON(t *testing.T) {
	fb, err := parseFeedback(`{"score":8,"strengths":["clear"],"areas_to_improve":["detail"],"suggestions":"add numbers","overall_feedback":"good"}`)
	if err != nil {
		t.Fatal(err)
	}
	if fb.Score != 8 || len(fb.Strengths) != 1 || fb.OverallFeedback != "good" {
		t.Fatalf("unexpected feedback %+v", fb)
	}
}

func TestParseFeedbackToleratesCodeFences(t *testing.T) {
	raw := "```json\n{\"score\":5,\"suggestions\":\"slow down\"}\n```"
	fb, err := parseFeedback(raw)
	if err != nil {
		t.Fatal(err)
	}
	if fb.Score != 5 || fb.Suggestions != "slow down" {
		t.Fatalf("unexpected feedback %+v", fb)
	}
}

func TestParseFeedbackToleratesSurroundingProse(t *testing.T) {
	raw := "Here is my assessment:\n{\"score\":3}\nHope this helps!"
	fb, err := parseFeedback(raw)
	if err != nil {
		t.Fatal(err)
	}
	if fb.Score != 3 {
		t.Fatalf("score = %d", fb.Score)
	}
}

func TestParseFeedbackRejectsGarbage(t *testing.T) {
	if _, err := parseFeedback("the answer was fine I guess"); err == nil {
		t.Fatal("non-JSON reply must error")
	}
}
