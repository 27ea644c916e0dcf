package handlers

import (
	"net/http"

	"github.com/aic-collections/sspad/internal/apperror"
	"github.com/aic-collections/sspad/internal/services"
	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	assets *services.AssetService
}

func NewCommentHandler(assets *services.AssetService) *CommentHandler {
	return &CommentHandler{assets: assets}
}

type createCommentRequest struct {
	URI      string `json:"uri"`
	UID      string `json:"uid"`
	Category string `json:"category"`
	Content  string `json:"content" binding:"required"`
}

// Create attaches a comment to an asset addressed by URI or UID
// POST /api/v1/comments
func (h *CommentHandler) Create(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.BadRequest("invalid request body: %v", err))
		return
	}
	if req.URI == "" && req.UID == "" {
		respondError(c, apperror.BadRequest("uri or uid is required"))
		return
	}

	uri, err := h.assets.AddComment(requestContext(c), req.URI, req.UID,
		services.CommentSpec{Category: req.Category, Content: req.Content})
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Location", uri)
	c.JSON(http.StatusCreated, gin.H{"message": "Created", "location": uri})
}
