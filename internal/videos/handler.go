package videos

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"videocoach-backend/internal/shared/server/middleware"
	"videocoach-backend/internal/shared/server/respond"
)

const maxUploadSize = 200 << 20 // 200MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches video routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/videos", h.upload)
	rg.GET("/videos", h.list)
	rg.GET("/videos/:id", h.get)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	v, err := h.Svc.Upload(c.Request.Context(), userID, fileHeader.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload video", nil)
		}
		return
	}

	respond.Created(c, toResponse(v))
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	videoID := c.Param("id")
	if videoID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "video id is required", nil)
		return
	}

	v, err := h.Svc.Get(c.Request.Context(), userID, videoID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "video not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load video", nil)
		}
		return
	}

	respond.OK(c, toResponse(v))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	vids, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list videos", nil)
		return
	}

	out := make([]VideoResponse, 0, len(vids))
	for _, v := range vids {
		out = append(out, toResponse(v))
	}
	respond.OK(c, gin.H{"videos": out})
}
