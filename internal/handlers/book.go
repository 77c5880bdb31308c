package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brightpath-edu/brightpath-backend/internal/services"
)

type BookHandler struct {
	bookService services.BookService
}

func NewBookHandler(bookService services.BookService) *BookHandler {
	return &BookHandler{bookService: bookService}
}

// POST /api/books registers upload metadata; the file itself goes through
// the storage boundary separately.
func (bh *BookHandler) Create(c *gin.Context) {
	userID, err := authedUserID(c)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	var req struct {
		Title       string `json:"title"`
		Author      string `json:"author"`
		ContentType string `json:"content_type"`
		SizeBytes   int64  `json:"size_bytes"`
		StorageKey  string `json:"storage_key"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	row, err := bh.bookService.Create(c.Request.Context(), userID, services.BookInput{
		Title:       req.Title,
		Author:      req.Author,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
		StorageKey:  req.StorageKey,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (bh *BookHandler) Get(c *gin.Context) {
	userID, err := authedUserID(c)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return
	}
	row, err := bh.bookService.Get(c.Request.Context(), userID, bookID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, row)
}

func (bh *BookHandler) List(c *gin.Context) {
	userID, err := authedUserID(c)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	rows, err := bh.bookService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, rows)
}

func (bh *BookHandler) Delete(c *gin.Context) {
	userID, err := authedUserID(c)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid book id"})
		return
	}
	if err := bh.bookService.Delete(c.Request.Context(), userID, bookID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
