package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/khadmahq/khadma/internal/services"
	"github.com/khadmahq/khadma/internal/utils"
)

type PracticeHandler struct {
	svc services.PracticeService
}

func NewPracticeHandler(svc services.PracticeService) *PracticeHandler {
	return &PracticeHandler{svc: svc}
}

type startPracticeRequest struct {
	Position string `json:"position"`
}

func (h *PracticeHandler) Start(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req startPracticeRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	sess, err := h.svc.Start(c.Request.Context(), userID, req.Position)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sess)
}

func (h *PracticeHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sess, err := h.svc.Get(c.Request.Context(), c.Param("practice_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if sess.UserID != userID {
		writeError(c, utils.E(utils.CodeForbidden, "PracticeHandler.Get", "forbidden", nil))
		return
	}

	c.JSON(http.StatusOK, sess)
}

func (h *PracticeHandler) End(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	practiceID := c.Param("practice_id")
	sess, err := h.svc.Get(c.Request.Context(), practiceID)
	if err != nil {
		writeError(c, err)
		return
	}
	if sess.UserID != userID {
		writeError(c, utils.E(utils.CodeForbidden, "PracticeHandler.End", "forbidden", nil))
		return
	}

	ended, err := h.svc.End(c.Request.Context(), practiceID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ended)
}

func (h *PracticeHandler) Turns(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	practiceID := c.Param("practice_id")
	sess, err := h.svc.Get(c.Request.Context(), practiceID)
	if err != nil {
		writeError(c, err)
		return
	}
	if sess.UserID != userID {
		writeError(c, utils.E(utils.CodeForbidden, "PracticeHandler.Turns", "forbidden", nil))
		return
	}

	limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)
	turns, err := h.svc.ListTurns(c.Request.Context(), practiceID, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, turns)
}
