package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civicreport-be/middlewares"
	"civicreport-be/models"
	"civicreport-be/services"
	"civicreport-be/store"
)

type IssueController struct {
	issues *services.IssueService
	log    *zap.Logger
}

func NewIssueController(issues *services.IssueService, log *zap.Logger) *IssueController {
	return &IssueController{issues: issues, log: log}
}

// Create handles the creation of a new issue
func (ic *IssueController) Create(c *gin.Context) {
	identity, ok := middlewares.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Title       string    `json:"title" binding:"required,max=200"`
		Description string    `json:"description" binding:"required,max=2000"`
		Category    string    `json:"category" binding:"required"`
		Address     string    `json:"address" binding:"omitempty,max=300"`
		ImageURL    *string   `json:"imageUrl,omitempty"`
		Coordinates []float64 `json:"coordinates,omitempty"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issue, err := ic.issues.Create(c.Request.Context(), services.CreateIssueInput{
		Title:       input.Title,
		Description: input.Description,
		Category:    models.IssueCategory(input.Category),
		Address:     input.Address,
		ImageURL:    input.ImageURL,
		Coordinates: input.Coordinates,
	}, identity)
	if err != nil {
		respondError(c, ic.log, err)
		return
	}

	c.JSON(http.StatusCreated, issue)
}

// List handles retrieving issues filtered by status and category
func (ic *IssueController) List(c *gin.Context) {
	var filter store.IssueFilter
	if status := c.Query("status"); status != "" && status != "all" {
		s := models.IssueStatus(status)
		filter.Status = &s
	}
	if category := c.Query("category"); category != "" && category != "all" {
		cat := models.IssueCategory(category)
		filter.Category = &cat
	}

	issues, err := ic.issues.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, ic.log, err)
		return
	}

	c.JSON(http.StatusOK, issues)
}

// Get retrieves an issue by its ID together with its comment thread
func (ic *IssueController) Get(c *gin.Context) {
	issueID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
		return
	}

	detail, err := ic.issues.Get(c.Request.Context(), issueID)
	if err != nil {
		respondError(c, ic.log, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// SetStatus moves an issue through the resolution workflow (admin only)
func (ic *IssueController) SetStatus(c *gin.Context) {
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
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issue, err := ic.issues.SetStatus(c.Request.Context(), issueID, models.IssueStatus(input.Status), identity)
	if err != nil {
		respondError(c, ic.log, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// ToggleUpvote flips the caller's upvote on an issue
func (ic *IssueController) ToggleUpvote(c *gin.Context) {
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

	count, err := ic.issues.ToggleUpvote(c.Request.Context(), issueID, identity)
	if err != nil {
		respondError(c, ic.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"upvoteCount": count})
}

// Delete removes an issue and its comments (admin or reporter)
func (ic *IssueController) Delete(c *gin.Context) {
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

	if err := ic.issues.Delete(c.Request.Context(), issueID, identity); err != nil {
		respondError(c, ic.log, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Nearby returns issues with a location within a radius of a point
func (ic *IssueController) Nearby(c *gin.Context) {
	lon, err := strconv.ParseFloat(c.Query("longitude"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid longitude"})
		return
	}
	lat, err := strconv.ParseFloat(c.Query("latitude"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid latitude"})
		return
	}
	radius, err := strconv.ParseFloat(c.DefaultQuery("radius", "5000"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid radius"})
		return
	}
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return
	}

	issues, err := ic.issues.Nearby(c.Request.Context(), lon, lat, radius, limit)
	if err != nil {
		respondError(c, ic.log, err)
		return
	}

	c.JSON(http.StatusOK, issues)
}
