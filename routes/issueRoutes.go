package routes

import (
	"github.com/gin-gonic/gin"

	"civicreport-be/controllers"
)

// IssueRoutes sets up the issue and comment routes. createLimiter is
// optional; when nil, issue creation is not rate limited.
func IssueRoutes(r *gin.Engine, ic *controllers.IssueController, cc *controllers.CommentController, auth, createLimiter gin.HandlerFunc) {
	issue := r.Group("/api/issues")
	{
		issue.GET("", ic.List)
		issue.GET("/nearby", ic.Nearby)
		issue.GET("/:id", ic.Get)
		issue.GET("/:id/comments", cc.List)

		create := []gin.HandlerFunc{auth}
		if createLimiter != nil {
			create = append(create, createLimiter)
		}
		create = append(create, ic.Create)
		issue.POST("", create...)

		issue.PATCH("/:id/status", auth, ic.SetStatus)
		issue.POST("/:id/upvote", auth, ic.ToggleUpvote)
		issue.DELETE("/:id", auth, ic.Delete)
		issue.POST("/:id/comments", auth, cc.Add)
	}
}
