package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/aic-collections/sspad/internal/apperror"
	"github.com/aic-collections/sspad/internal/connectors"
	"github.com/aic-collections/sspad/internal/schema"
	"github.com/aic-collections/sspad/internal/services"
	"github.com/gin-gonic/gin"
)

// 512MB; sources are full-resolution TIFFs.
const maxUploadMemory = int64(512 * 1024 * 1024)

type AssetHandler struct {
	assets *services.AssetService
}

func NewAssetHandler(assets *services.AssetService) *AssetHandler {
	return &AssetHandler{assets: assets}
}

// Create handles asset ingestion
// POST /api/v1/assets/:type
// Multipart form: props (JSON, optional), mid (optional), source/master/...
// file parts, ref_* fields for external references
func (h *AssetHandler) Create(c *gin.Context) {
	typ, ok := assetType(c)
	if !ok {
		return
	}

	props, dstreams, err := parseIngestForm(c)
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := h.assets.Create(requestContext(c), typ, c.PostForm("mid"), props, dstreams)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, res)
}

// Update handles full asset updates, creating the asset when none of the
// given identifiers resolves
// PUT /api/v1/assets/:type
// Multipart form as for Create, plus uri or uid to address the asset
func (h *AssetHandler) Update(c *gin.Context) {
	typ, ok := assetType(c)
	if !ok {
		return
	}

	props, dstreams, err := parseIngestForm(c)
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := h.assets.Update(requestContext(c), typ, c.PostForm("uri"), c.PostForm("uid"), props, dstreams)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, res)
}

type patchRequest struct {
	URI         string         `json:"uri"`
	UID         string         `json:"uid"`
	InsertProps map[string]any `json:"insert_props"`
	DeleteProps map[string]any `json:"delete_props"`
}

// Patch applies a property delta to an existing asset
// PATCH /api/v1/assets/:type
func (h *AssetHandler) Patch(c *gin.Context) {
	typ, ok := assetType(c)
	if !ok {
		return
	}

	var req patchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.BadRequest("invalid request body: %v", err))
		return
	}

	inserts, err := services.ParseProps(req.InsertProps)
	if err != nil {
		respondError(c, err)
		return
	}
	deletes, err := services.ParseProps(req.DeleteProps)
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := h.assets.Patch(requestContext(c), typ, req.URI, req.UID, inserts, deletes)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, res)
}

// Get resolves an asset by UID or legacy UID
// GET /api/v1/assets/:type?uid=...&legacy_uid=...
func (h *AssetHandler) Get(c *gin.Context) {
	typ, ok := assetType(c)
	if !ok {
		return
	}

	res, err := h.assets.Find(requestContext(c), typ, c.Query("uid"), c.Query("legacy_uid"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, res)
}

// Search finds assets matching every given property value
// GET /api/v1/assets/:type/search?title=...&legacy_uid=...
func (h *AssetHandler) Search(c *gin.Context) {
	typ, ok := assetType(c)
	if !ok {
		return
	}

	props := services.Props{}
	for name, values := range c.Request.URL.Query() {
		props.Add(name, values...)
	}

	uris, err := h.assets.Search(requestContext(c), typ, props)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"locations": uris})
}

func assetType(c *gin.Context) (*schema.Type, bool) {
	typ, ok := schema.ByName(c.Param("type"))
	if !ok {
		respondError(c, apperror.NotFound("unknown asset type %s", c.Param("type")))
		return nil, false
	}
	return typ, true
}

// requestContext carries the caller's Authorization header through to the
// outbound LAKE and triplestore calls.
func requestContext(c *gin.Context) context.Context {
	return connectors.WithAuthorization(c.Request.Context(), c.GetHeader("Authorization"))
}

// parseIngestForm reads the multipart ingestion form: the props JSON field,
// uploaded file parts, and ref_* fields carrying external references.
func parseIngestForm(c *gin.Context) (services.Props, services.Datastreams, error) {
	if err := c.Request.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, nil, apperror.BadRequest("failed to parse multipart form: %v", err)
	}

	props := services.Props{}
	if raw := c.PostForm("props"); raw != "" {
		var decoded map[string]any
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			return nil, nil, apperror.BadRequest("invalid props JSON: %v", err)
		}
		var err error
		if props, err = services.ParseProps(decoded); err != nil {
			return nil, nil, err
		}
	}

	dstreams := services.Datastreams{}
	if form := c.Request.MultipartForm; form != nil {
		for field, files := range form.File {
			if len(files) == 0 {
				continue
			}
			name, _ := services.LogicalName(field)
			f, err := files[0].Open()
			if err != nil {
				return nil, nil, apperror.BadRequest("failed to read upload %s: %v", field, err)
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return nil, nil, apperror.BadRequest("failed to read upload %s: %v", field, err)
			}
			dstreams[name] = services.RawBytes{Name: name, Data: data}
		}
		for field, values := range form.Value {
			name, isRef := services.LogicalName(field)
			if !isRef || len(values) == 0 || values[0] == "" {
				continue
			}
			dstreams[name] = services.ExternalRef{Name: name, URL: values[0]}
		}
	}

	return props, dstreams, nil
}

func respond(c *gin.Context, res *services.Result) {
	if res.Location != "" {
		c.Header("Location", res.Location)
	}
	if res.Status == http.StatusNoContent {
		c.Status(http.StatusNoContent)
		return
	}
	data := gin.H{"location": res.Location}
	if res.UID != "" {
		data["uid"] = res.UID
	}
	c.JSON(res.Status, gin.H{"message": res.Message, "data": data})
}

func respondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	if status >= 500 {
		log.Printf("ERROR: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	if link := apperror.LinkOf(err); link != "" {
		c.Header("Link", "<"+link+">; rel=\"duplicate\"")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
