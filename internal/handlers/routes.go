package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler served by the API.
type Handlers struct {
	Auth    *AuthHandler
	User    *UserHandler
	Project *ProjectHandler
	Member  *MemberHandler
	Task    *TaskHandler
	Comment *CommentHandler
}

// RegisterRoutes mounts the API on r. Everything outside /auth runs behind
// requireAuth.
func RegisterRoutes(r gin.IRouter, h Handlers, requireAuth gin.HandlerFunc) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Project tracker API is running",
		})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/token-refresh", h.Auth.Refresh)
	}

	api := r.Group("")
	api.Use(requireAuth)

	users := api.Group("/users")
	{
		users.GET("/:id", h.User.GetUser)
		users.PUT("/:id", h.User.UpdateUser)
		users.PATCH("/:id", h.User.UpdateUser)
		users.DELETE("/:id", h.User.DeleteUser)
	}

	projects := api.Group("/projects")
	{
		projects.GET("", h.Project.ListProjects)
		projects.POST("", h.Project.CreateProject)
		projects.GET("/:id", h.Project.GetProject)
		projects.PUT("/:id", h.Project.UpdateProject)
		projects.PATCH("/:id", h.Project.UpdateProject)
		projects.DELETE("/:id", h.Project.DeleteProject)

		projects.GET("/:id/tasks", h.Task.ListTasks)
		projects.POST("/:id/tasks", h.Task.CreateTask)
		projects.POST("/:id/tasks/generate", h.Task.GenerateTasks)

		projects.GET("/:id/members", h.Member.ListMembers)
		projects.POST("/:id/members", h.Member.AddMember)
	}

	tasks := api.Group("/tasks")
	{
		tasks.GET("/:id", h.Task.GetTask)
		tasks.PUT("/:id", h.Task.UpdateTask)
		tasks.PATCH("/:id", h.Task.UpdateTask)
		tasks.DELETE("/:id", h.Task.DeleteTask)

		tasks.GET("/:id/comments", h.Comment.ListComments)
		tasks.POST("/:id/comments", h.Comment.CreateComment)
	}

	comments := api.Group("/comments")
	{
		comments.GET("/:id", h.Comment.GetComment)
		comments.PUT("/:id", h.Comment.UpdateComment)
		comments.PATCH("/:id", h.Comment.UpdateComment)
		comments.DELETE("/:id", h.Comment.DeleteComment)
	}

	members := api.Group("/members")
	{
		members.GET("/:id", h.Member.GetMember)
		members.PUT("/:id", h.Member.UpdateMember)
		members.PATCH("/:id", h.Member.UpdateMember)
		members.DELETE("/:id", h.Member.RemoveMember)
	}
}
