package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brightpath-edu/brightpath-backend/internal/services"
)

type AssignmentHandler struct {
	assignmentService services.AssignmentService
}

func NewAssignmentHandler(assignmentService services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

func (ah *AssignmentHandler) Create(c *gin.Context) {
	userID, err := authedUserID(c)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	var req struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		LessonID    *string    `json:"lesson_id"`
		DueAt       *time.Time `json:"due_at"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	in := services.AssignmentInput{
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
	}
	if req.LessonID != nil {
		if id, err := uuid.Parse(*req.LessonID); err == nil {
			in.LessonID = &id
		}
	}
	row, err := ah.assignmentService.Create(c.Request.Context(), userID, in)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (ah *AssignmentHandler) Get(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignment id"})
		return
	}
	row, err := ah.assignmentService.Get(c.Request.Context(), assignmentID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, row)
}

func (ah *AssignmentHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	rows, err := ah.assignmentService.List(c.Request.Context(), limit, offset)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, rows)
}

// POST /api/assignments/:id/submit
func (ah *AssignmentHandler) Submit(c *gin.Context) {
	userID, err := authedUserID(c)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignment id"})
		return
	}
	var req struct {
		Answer           string `json:"answer"`
		TimeSpentSeconds int64  `json:"time_spent_seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	row, err := ah.assignmentService.Submit(c.Request.Context(), userID, assignmentID, services.SubmissionInput{
		Answer:           req.Answer,
		TimeSpentSeconds: req.TimeSpentSeconds,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

// POST /api/assignments/:id/grade
func (ah *AssignmentHandler) Grade(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assignment id"})
		return
	}
	var req struct {
		UserID string  `json:"user_id"`
		Score  float64 `json:"score"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	row, err := ah.assignmentService.Grade(c.Request.Context(), assignmentID, userID, req.Score)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, row)
}
