package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civicreport-be/middlewares"
	"civicreport-be/services"
)

type CommentController struct {
	comments *services.CommentService
	log      *zap.Logger
}

func NewCommentController(comments *services.CommentService, log *zap.Logger) *CommentController {
	return &CommentController{comments: comments, log: log}
}

// Add attaches a comment to an issue
func (cc *CommentController) Add(c *gin.Context) {
	identity, ok := middlewares.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	var input struct {
		Text string `json:"text" binding:"required,max=2000"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := cc.comments.Add(c.Request.Context(), issueID, input.Text, identity)
	if err != nil {
		respondError(c, cc.log, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// List returns an issue's comments, oldest first
func (cc *CommentController) List(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	comments, err := cc.comments.List(c.Request.Context(), issueID)
	if err != nil {
		respondError(c, cc.log, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}
