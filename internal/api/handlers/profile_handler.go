package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khadmahq/khadma/internal/models"
	"github.com/khadmahq/khadma/internal/services"
	"github.com/khadmahq/khadma/internal/utils"
)

type ProfileHandler struct {
	svc services.ProfileService
}

func NewProfileHandler(svc services.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

func (h *ProfileHandler) Me(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	p, err := h.svc.Fetch(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	if p == nil {
		// no row yet is not an error; hand back an empty shell
		p = &models.Profile{ID: userID}
	}

	c.JSON(http.StatusOK, p)
}

func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var patch models.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ProfileHandler.Update", "invalid request body", err))
		return
	}

	p, err := h.svc.Update(c.Request.Context(), userID, patch)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}
