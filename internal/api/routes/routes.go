package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/khadmahq/khadma/internal/api/handlers"
	"github.com/khadmahq/khadma/internal/api/middleware"
)

type Deps struct {
	Auth      *handlers.AuthHandler
	Profile   *handlers.ProfileHandler
	Quest     *handlers.QuestHandler
	Task      *handlers.TaskHandler
	Badge     *handlers.BadgeHandler
	Interview *handlers.InterviewHandler
	Practice  *handlers.PracticeHandler
	Upload    *handlers.UploadHandler
	WS        *handlers.WSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Public auth surface (sign-in/up produce the token the rest needs)
	r.POST("/auth/signup", d.Auth.SignUp)
	r.POST("/auth/signin", d.Auth.SignIn)
	r.GET("/auth/oauth/:provider", d.Auth.OAuth)
	r.POST("/auth/signout", d.Auth.SignOut)
	r.GET("/auth/session", d.Auth.Session)
	r.POST("/auth/session/refresh-profile", d.Auth.RefreshProfile)

	// Protected routes (JWT)
	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	auth.GET("/profile/me", d.Profile.Me)
	auth.PUT("/profile/update", d.Profile.Update)
	auth.POST("/profile/upload/:kind", d.Upload.Upload)

	auth.GET("/quests", d.Quest.List)
	auth.GET("/quests/mine", d.Quest.Mine)
	auth.POST("/quests/:quest_id/start", d.Quest.Start)
	auth.PUT("/quests/progress/:user_quest_id", d.Quest.UpdateProgress)

	auth.GET("/tasks", d.Task.List)
	auth.GET("/tasks/applications", d.Task.Applications)
	auth.POST("/tasks/:task_id/apply", d.Task.Apply)

	auth.GET("/badges/mine", d.Badge.Mine)
	auth.POST("/badges/award", middleware.RequireAdmin(), d.Badge.Award)

	auth.POST("/interview/review", d.Interview.Review)
	auth.GET("/interview/history", d.Interview.History)

	auth.POST("/practice/start", d.Practice.Start)
	auth.GET("/practice/:practice_id", d.Practice.Get)
	auth.POST("/practice/:practice_id/end", d.Practice.End)
	auth.GET("/practice/:practice_id/turns", d.Practice.Turns)

	// WebSocket
	auth.GET("/ws/practice/:practice_id", d.WS.PracticeWS)
}
