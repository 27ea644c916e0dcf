package handlers

import (
	"net/http"

	"github.com/aic-collections/sspad/internal/apperror"
	"github.com/aic-collections/sspad/internal/services"
	"github.com/gin-gonic/gin"
)

type TagHandler struct {
	tags *services.TagService
}

func NewTagHandler(tags *services.TagService) *TagHandler {
	return &TagHandler{tags: tags}
}

// List returns tags, optionally filtered by category
// GET /api/v1/tags?cat=...
func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.tags.List(requestContext(c), c.Query("cat"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

type createTagRequest struct {
	Category string `json:"category" binding:"required"`
	Label    string `json:"label" binding:"required"`
}

// Create adds a tag to an existing category
// POST /api/v1/tags
func (h *TagHandler) Create(c *gin.Context) {
	var req createTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.BadRequest("invalid request body: %v", err))
		return
	}

	uri, err := h.tags.Create(requestContext(c), req.Category, req.Label)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Location", uri)
	c.JSON(http.StatusCreated, gin.H{"message": "Created", "location": uri})
}

// ListCategories returns every tag category
// GET /api/v1/tags/categories
func (h *TagHandler) ListCategories(c *gin.Context) {
	cats, err := h.tags.ListCategories(requestContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats})
}

type createCategoryRequest struct {
	Label string `json:"label" binding:"required"`
}

// CreateCategory adds a tag category
// POST /api/v1/tags/categories
func (h *TagHandler) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.BadRequest("invalid request body: %v", err))
		return
	}

	uri, err := h.tags.CreateCategory(requestContext(c), req.Label)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Location", uri)
	c.JSON(http.StatusCreated, gin.H{"message": "Created", "location": uri})
}
