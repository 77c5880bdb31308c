package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brightpath-edu/brightpath-backend/internal/services"
)

type LessonHandler struct {
	lessonService services.LessonService
}

func NewLessonHandler(lessonService services.LessonService) *LessonHandler {
	return &LessonHandler{lessonService: lessonService}
}

func (lh *LessonHandler) Create(c *gin.Context) {
	userID, err := authedUserID(c)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	var req struct {
		Title    string `json:"title"`
		Subject  string `json:"subject"`
		Content  string `json:"content"`
		Position int    `json:"position"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	row, err := lh.lessonService.Create(c.Request.Context(), userID, services.LessonInput{
		Title:    req.Title,
		Subject:  req.Subject,
		Content:  req.Content,
		Position: req.Position,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (lh *LessonHandler) Get(c *gin.Context) {
	userID, err := authedUserID(c)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}
	row, err := lh.lessonService.Get(c.Request.Context(), userID, lessonID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, row)
}

func (lh *LessonHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	rows, err := lh.lessonService.List(c.Request.Context(), c.Query("subject"), limit, offset)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, rows)
}

func (lh *LessonHandler) Update(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}
	var req struct {
		Title    string `json:"title"`
		Subject  string `json:"subject"`
		Content  string `json:"content"`
		Position int    `json:"position"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	row, err := lh.lessonService.Update(c.Request.Context(), lessonID, services.LessonInput{
		Title:    req.Title,
		Subject:  req.Subject,
		Content:  req.Content,
		Position: req.Position,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, row)
}

func (lh *LessonHandler) Delete(c *gin.Context) {
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}
	if err := lh.lessonService.Delete(c.Request.Context(), lessonID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// POST /api/lessons/:id/complete
// { time_spent_seconds, rating?, struggled_section_ids? }
func (lh *LessonHandler) Complete(c *gin.Context) {
	userID, err := authedUserID(c)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	lessonID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid lesson id"})
		return
	}
	var req struct {
		TimeSpentSeconds    int64    `json:"time_spent_seconds"`
		Rating              *float64 `json:"rating"`
		StruggledSectionIDs []string `json:"struggled_section_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := lh.lessonService.Complete(c.Request.Context(), userID, lessonID, services.CompletionInput{
		TimeSpentSeconds:    req.TimeSpentSeconds,
		Rating:              req.Rating,
		StruggledSectionIDs: req.StruggledSectionIDs,
	}); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
