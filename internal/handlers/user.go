package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/brightpath-edu/brightpath-backend/internal/pkg/errors"
	"github.com/brightpath-edu/brightpath-backend/internal/requestdata"
	"github.com/brightpath-edu/brightpath-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// authedUserID pulls the authenticated user set by the auth middleware.
func authedUserID(c *gin.Context) (uuid.UUID, error) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("not authenticated: %w", apperrors.ErrUnauthorized)
	}
	return rd.UserID, nil
}

func (uh *UserHandler) GetMe(c *gin.Context) {
	userID, err := authedUserID(c)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	user, err := uh.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, user)
}

func (uh *UserHandler) UpdateMe(c *gin.Context) {
	userID, err := authedUserID(c)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Timezone  *string `json:"timezone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	user, err := uh.userService.Update(c.Request.Context(), userID, services.UserUpdateInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Timezone:  req.Timezone,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, user)
}
