package feedback

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"videocoach-backend/internal/shared/server/middleware"
	"videocoach-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the feedback service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches feedback routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/videos/:id/feedback", h.analyze)
	rg.GET("/videos/:id/feedback", h.list)
}

type analyzeRequest struct {
	AnalysisType string `json:"analysisType"`
}

// analyzeResponse is the wire shape for analyze calls, success or failure.
type analyzeResponse struct {
	Success      bool   `json:"success"`
	Feedback     string `json:"feedback,omitempty"`
	RecordID     string `json:"recordId,omitempty"`
	AnalysisType string `json:"analysisType,omitempty"`
	Cached       bool   `json:"cached"`
	Error        string `json:"error,omitempty"`
}

func (h *Handler) analyze(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	videoID := c.Param("id")
	if videoID == "" {
		c.JSON(http.StatusBadRequest, analyzeResponse{
			Success: false,
			Error:   "video id is required",
		})
		return
	}
	c.Set("videoId", videoID)

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, analyzeResponse{
			Success: false,
			Error:   "request body must be JSON with an analysisType field",
		})
		return
	}
	analysisType, ok := ParseAnalysisType(req.AnalysisType)
	if !ok {
		c.JSON(http.StatusBadRequest, analyzeResponse{
			Success: false,
			Error:   UserMessage(CategoryValidation),
		})
		return
	}
	c.Set("analysisType", string(analysisType))

	result, err := h.Svc.Analyze(c.Request.Context(), userID, videoID, analysisType)
	if err != nil {
		cat := Classify(err)
		c.JSON(StatusCode(cat), analyzeResponse{
			Success: false,
			Error:   UserMessage(cat),
		})
		return
	}

	c.JSON(http.StatusOK, analyzeResponse{
		Success:      true,
		Feedback:     result.Feedback,
		RecordID:     result.RecordID,
		AnalysisType: string(result.AnalysisType),
		Cached:       result.Cached,
	})
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	videoID := c.Param("id")
	if videoID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "video id is required", nil)
		return
	}

	recs, err := h.Svc.List(c.Request.Context(), userID, videoID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list feedback", nil)
		return
	}
	if recs == nil {
		recs = []Record{}
	}
	respond.OK(c, gin.H{"feedback": recs})
}
