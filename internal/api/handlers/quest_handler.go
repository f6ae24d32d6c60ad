package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khadmahq/khadma/internal/models"
	"github.com/khadmahq/khadma/internal/services"
	"github.com/khadmahq/khadma/internal/utils"
)

type QuestHandler struct {
	svc services.QuestService
}

func NewQuestHandler(svc services.QuestService) *QuestHandler {
	return &QuestHandler{svc: svc}
}

// List returns the active quest catalogue filtered by the query params
// the quest page sends: search, category, difficulty, status.
func (h *QuestHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	quests, err := h.svc.ListQuests(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	userQuests, err := h.svc.ListUserQuests(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	f := services.QuestFilter{
		Search:     c.Query("search"),
		Category:   c.Query("category"),
		Difficulty: c.Query("difficulty"),
		Status:     c.Query("status"),
	}
	out := h.svc.FilterQuests(quests, userQuests, f)

	c.JSON(http.StatusOK, gin.H{"quests": out, "user_quests": userQuests})
}

func (h *QuestHandler) Mine(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	out, err := h.svc.ListUserQuests(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

func (h *QuestHandler) Start(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	questID := c.Param("quest_id")
	if questID == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "QuestHandler.Start", "missing quest_id", nil))
		return
	}

	uq, err := h.svc.StartQuest(c.Request.Context(), userID, questID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, uq)
}

type updateProgressRequest struct {
	Progress int                `json:"progress"`
	Status   models.QuestStatus `json:"status" binding:"required"`
}

func (h *QuestHandler) UpdateProgress(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	userQuestID := c.Param("user_quest_id")
	if userQuestID == "" {
		writeError(c, utils.E(utils.CodeInvalidArgument, "QuestHandler.UpdateProgress", "missing user_quest_id", nil))
		return
	}

	var req updateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "QuestHandler.UpdateProgress", "invalid request body", err))
		return
	}

	uq, err := h.svc.UpdateProgress(c.Request.Context(), userQuestID, req.Progress, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, uq)
}
