package workers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/khadmahq/khadma/internal/providers/feedback"
	"github.com/khadmahq/khadma/internal/services"
)

// CoachWorkerPool consumes practice turns from a Redis stream, runs the
// feedback provider's streaming coach over each one, and publishes the
// chunks to the session's response channel for the websocket to forward.
type CoachWorkerPool struct {
	Redis     *redis.Client
	Practices services.PracticeService
	AI        feedback.Provider

	Logger     *logrus.Logger
	NumWorkers int

	Stream         string
	Group          string
	ConsumerPrefix string
}

func (p *CoachWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Practices == nil || p.AI == nil {
		return errors.New("CoachWorkerPool missing dependency: Redis/Practices/AI must be set")
	}
	if p.Stream == "" {
		p.Stream = "practice:stream"
	}
	if p.Group == "" {
		p.Group = "coach-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 3
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *CoachWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *CoachWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	getStr := func(k string) string {
		v, ok := msg.Values[k]
		if !ok || v == nil {
			return ""
		}
		s, _ := v.(string)
		return s
	}

	practiceID := getStr("practice_id")
	turnIndexStr := getStr("turn_index")
	question := getStr("question")
	answer := getStr("answer")
	if practiceID == "" || turnIndexStr == "" || answer == "" {
		return
	}
	turnIndex, _ := strconv.ParseInt(turnIndexStr, 10, 64)

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":    msg.ID,
		"practice_id": practiceID,
		"turn_index":  turnIndex,
	})

	respCh := "practice:" + practiceID + ":response"
	statusCh := "practice:" + practiceID + ":status"

	start := time.Now()
	_ = p.Practices.MarkCoach(ctx, practiceID, turnIndex, "", "processing", 0)
	_ = p.Redis.Publish(ctx, statusCh, `{"type":"status","status":"processing","message":"coach processing","turn_index":`+strconv.FormatInt(turnIndex, 10)+`}`).Err()

	chunks, errs := p.AI.StreamCoach(ctx, question, answer)

	full := strings.Builder{}
	seq := int64(0)

	for chunk := range chunks {
		seq++
		full.WriteString(chunk)

		chPayload, _ := json.Marshal(map[string]any{
			"type":       "coach_chunk",
			"turn_index": turnIndex,
			"seq":        seq,
			"chunk":      chunk,
		})
		_ = p.Redis.Publish(ctx, respCh, string(chPayload)).Err()
	}

	var streamErr error
	select {
	case streamErr = <-errs:
	default:
	}
	if streamErr != nil {
		log.WithError(streamErr).Error("coach stream failed")
		_ = p.Practices.MarkCoach(ctx, practiceID, turnIndex, "", "failed", time.Since(start).Milliseconds())
		_ = p.Redis.Publish(ctx, statusCh, `{"type":"status","status":"failed","message":"coach failed","turn_index":`+strconv.FormatInt(turnIndex, 10)+`}`).Err()
		return
	}

	response := full.String()
	procMS := time.Since(start).Milliseconds()
	_ = p.Practices.MarkCoach(ctx, practiceID, turnIndex, response, "done", procMS)

	donePayload, _ := json.Marshal(map[string]any{
		"type":               "coach_complete",
		"turn_index":         turnIndex,
		"full_response":      response,
		"processing_time_ms": procMS,
	})
	_ = p.Redis.Publish(ctx, respCh, string(donePayload)).Err()
	_ = p.Redis.Publish(ctx, statusCh, `{"type":"status","status":"done","message":"turn processed","turn_index":`+strconv.FormatInt(turnIndex, 10)+`}`).Err()
}
