package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/khadmahq/khadma/internal/services"
	"github.com/khadmahq/khadma/internal/utils"
)

// WSHandler runs the live practice loop: the client sends answer turns
// over the socket, turns are enqueued on a Redis stream for the coach
// workers, and worker output is forwarded back over the same socket via
// Redis pub/sub.
type WSHandler struct {
	practices services.PracticeService
	redis     *redis.Client
	stream    string
	upgrader  websocket.Upgrader
}

func NewWSHandler(practices services.PracticeService, rdb *redis.Client, stream string) *WSHandler {
	if stream == "" {
		stream = "practice:stream"
	}
	return &WSHandler{
		practices: practices,
		redis:     rdb,
		stream:    stream,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type wsClientMsg struct {
	Type      string `json:"type"`
	TurnIndex int64  `json:"turn_index"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`

	// pause/resume/end_practice -> no fields
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeText(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (h *WSHandler) PracticeWS(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	practiceID := c.Param("practice_id")
	if practiceID == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "WSHandler.PracticeWS", "missing practice_id", nil))
		return
	}

	// authorize session ownership
	sess, err := h.practices.Get(c.Request.Context(), practiceID)
	if err != nil {
		writeError(c, err)
		return
	}
	if sess.UserID != userID {
		writeError(c, utils.E(utils.CodeForbidden, "WSHandler.PracticeWS", "forbidden", nil))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response in most cases
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Subscribe Redis -> WS
	respCh := "practice:" + practiceID + ":response"
	statusCh := "practice:" + practiceID + ":status"

	pubsub := h.redis.Subscribe(ctx, respCh, statusCh)
	defer pubsub.Close()

	// reader: WS -> Mongo turn insert + Redis Stream
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		conn.SetPongHandler(func(string) error {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			return nil
		})

		for {
			_, data, rerr := conn.ReadMessage()
			if rerr != nil {
				return
			}

			var msg wsClientMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"invalid json"}`))
				continue
			}

			switch msg.Type {
			case "turn":
				if _, err := h.practices.InsertTurn(ctx, practiceID, msg.TurnIndex, msg.Question, msg.Answer); err != nil {
					writeWSError(wc, err)
					continue
				}

				if err := h.redis.XAdd(ctx, &redis.XAddArgs{
					Stream: h.stream,
					Values: map[string]any{
						"practice_id": practiceID,
						"turn_index":  strconv.FormatInt(msg.TurnIndex, 10),
						"question":    msg.Question,
						"answer":      msg.Answer,
						"ts_unix":     strconv.FormatInt(time.Now().UTC().Unix(), 10),
					},
				}).Err(); err != nil {
					_ = wc.writeText([]byte(`{"type":"error","code":"UNAVAILABLE","message":"failed to enqueue turn"}`))
					continue
				}

				// immediate ack so the client can show a spinner
				_ = h.redis.Publish(ctx, statusCh, `{"type":"status","status":"pending","message":"turn queued","turn_index":`+strconv.FormatInt(msg.TurnIndex, 10)+`}`).Err()

			case "pause":
				_ = h.redis.Publish(ctx, statusCh, `{"type":"status","status":"paused","message":"paused"}`).Err()

			case "resume":
				_ = h.redis.Publish(ctx, statusCh, `{"type":"status","status":"ready","message":"resumed"}`).Err()

			case "end_practice":
				_, _ = h.practices.End(ctx, practiceID)
				_ = h.redis.Publish(ctx, statusCh, `{"type":"status","status":"ended","message":"practice ended"}`).Err()
				return

			default:
				_ = wc.writeText([]byte(`{"type":"error","code":"INVALID_ARGUMENT","message":"unknown message type"}`))
			}
		}
	}()

	// writer: Redis Pub/Sub -> WS
	for {
		select {
		case <-readDone:
			return
		case <-ctx.Done():
			return
		default:
			m, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				return
			}
			// forward as-is (payload expected JSON string)
			if werr := wc.writeText([]byte(m.Payload)); werr != nil {
				return
			}
		}
	}
}

func writeWSError(wc *wsConn, err error) {
	code := utils.CodeInternal
	msg := "internal error"
	var ae *utils.AppError
	if errors.As(err, &ae) {
		code = ae.Code
		msg = ae.Message
	}
	b, _ := json.Marshal(map[string]string{"type": "error", "code": string(code), "message": msg})
	_ = wc.writeText(b)
}
