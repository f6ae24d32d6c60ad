package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khadmahq/khadma/internal/reconciler"
	"github.com/khadmahq/khadma/internal/utils"
)

// AuthHandler fronts the session reconciler: sign-in and sign-up go
// through it so demo-credential interception and provider fan-out stay
// in one place instead of leaking into HTTP code.
type AuthHandler struct {
	rec *reconciler.Reconciler
}

func NewAuthHandler(rec *reconciler.Reconciler) *AuthHandler {
	return &AuthHandler{rec: rec}
}

type signUpRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
}

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AuthHandler.SignUp", "invalid request body", err))
		return
	}

	if err := h.rec.SignUp(c.Request.Context(), req.Email, req.Password, req.DisplayName); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.rec.Snapshot())
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "AuthHandler.SignIn", "invalid request body", err))
		return
	}

	if err := h.rec.SignIn(c.Request.Context(), req.Email, req.Password); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.rec.Snapshot())
}

// OAuth returns the provider authorization URL; the caller performs the
// redirect itself.
func (h *AuthHandler) OAuth(c *gin.Context) {
	provider := c.Param("provider")
	url, err := h.rec.SignInWithOAuth(c.Request.Context(), provider)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"redirect_url": url})
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	if err := h.rec.SignOut(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"signed_out": true})
}

// Session reports the reconciler's current view: state, session,
// profile, and admin flag in one payload.
func (h *AuthHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, h.rec.Snapshot())
}

func (h *AuthHandler) RefreshProfile(c *gin.Context) {
	if err := h.rec.RefreshProfile(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.rec.Snapshot())
}
