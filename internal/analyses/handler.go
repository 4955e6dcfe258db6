package analyses

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pagespeed-campaign/internal/analysis"
	"pagespeed-campaign/internal/campaign"
	"pagespeed-campaign/internal/pagespeed"
	"pagespeed-campaign/internal/report"
	"pagespeed-campaign/internal/shared/server/middleware"
	"pagespeed-campaign/internal/shared/server/respond"
	"pagespeed-campaign/internal/shared/storage/object"
)

// APIKeyHeader may carry the PageSpeed key instead of the request body.
const APIKeyHeader = middleware.APIKeyHeader

// Handler wires HTTP handlers to the analysis service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.analyze)
	rg.POST("/campaign", h.campaign)
	rg.GET("/reports/*key", h.getReport)
}

func (h *Handler) analyze(c *gin.Context) {
	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeInvalidRequest, "format must be html, json or yaml", nil)
		return
	}

	var body analyzeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeInvalidRequest, "request body must be a JSON object", nil)
		return
	}
	req := body.toRequest()
	if req.APIKey == "" {
		req.APIKey = strings.TrimSpace(c.GetHeader(APIKeyHeader))
	}
	c.Set(middleware.TargetURLKey, req.URL)
	c.Set(middleware.DeviceKey, req.Device)

	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	res, err := h.Svc.Run(ctx, req)
	if err != nil {
		writeRunError(c, err)
		return
	}

	c.Header("X-Run-Id", res.RunID)
	if saved, ok := res.Report(report.FormatHTML); ok {
		c.Set(middleware.ReportKeyKey, saved.Key)
		c.Header("X-Report-Key", saved.Key)
	}

	if format == report.FormatJSON {
		respond.OK(c, analyzeResponse{
			RunID:     res.RunID,
			Reports:   res.Reports,
			CrUXError: res.CrUXError,
			Document:  res.Document,
		})
		return
	}
	r, err := report.New(format)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeInvalidRequest, err.Error(), nil)
		return
	}
	out, err := r.Render(res.Document)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to render report", nil)
		return
	}
	respond.Data(c, http.StatusOK, r.ContentType(), out)
}

func writeRunError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrMissingAPIKey):
		respond.Error(c, http.StatusBadRequest, respond.CodeMissingAPIKey, "A PageSpeed Insights API key is required", nil)
	case errors.Is(err, ErrInvalidRequest):
		respond.Error(c, http.StatusBadRequest, respond.CodeInvalidRequest, err.Error(), nil)
	case errors.Is(err, ErrUpstream):
		var apiErr *pagespeed.APIError
		var details any
		if errors.As(err, &apiErr) {
			details = gin.H{"status": apiErr.Status, "message": apiErr.Message}
		}
		respond.Error(c, http.StatusBadGateway, respond.CodeUpstream, "PageSpeed Insights request failed", details)
	case errors.Is(err, ErrStorage):
		respond.Error(c, http.StatusInternalServerError, respond.CodeStorage, "failed to save report", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "analysis failed", nil)
	}
}

// campaign runs the aggregation core over a client-supplied analysis.
func (h *Handler) campaign(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeInvalidRequest, "failed to read body", nil)
		return
	}
	var a analysis.Analysis
	if err := json.Unmarshal(raw, &a); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeInvalidRequest, "body must be an analysis object keyed by category", nil)
		return
	}
	data := h.Svc.Engine.Aggregate(a.Normalize())
	respond.OK(c, campaignResponse{
		Campaign: data,
		Pitch:    campaign.FormatPitch(data, strings.TrimSpace(c.Query("url"))),
	})
}

func (h *Handler) getReport(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if h.Svc.Store == nil {
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "report storage is disabled", nil)
		return
	}
	rc, err := h.Svc.Store.Open(c.Request.Context(), key)
	if err != nil {
		switch {
		case errors.Is(err, object.ErrInvalidKey):
			respond.Error(c, http.StatusBadRequest, respond.CodeInvalidRequest, "invalid report key", nil)
		case errors.Is(err, object.ErrNotFound):
			respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "report not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, respond.CodeStorage, "failed to open report", nil)
		}
		return
	}
	defer rc.Close()
	c.Set(middleware.ReportKeyKey, key)
	c.DataFromReader(http.StatusOK, -1, object.ContentTypeFor(key), rc, nil)
}
