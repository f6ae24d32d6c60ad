package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khadmahq/khadma/internal/services"
	"github.com/khadmahq/khadma/internal/utils"
)

type BadgeHandler struct {
	svc services.BadgeService
}

func NewBadgeHandler(svc services.BadgeService) *BadgeHandler {
	return &BadgeHandler{svc: svc}
}

func (h *BadgeHandler) Mine(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	out, err := h.svc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

type awardBadgeRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	BadgeID string `json:"badge_id" binding:"required"`
}

// Award grants a badge to a user. Admin only; regranting an already
// held badge returns the existing grant.
func (h *BadgeHandler) Award(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	var req awardBadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "BadgeHandler.Award", "invalid request body", err))
		return
	}

	ub, err := h.svc.Award(c.Request.Context(), req.UserID, req.BadgeID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ub)
}
