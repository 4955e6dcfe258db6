package catalog

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pagespeed-campaign/internal/shared/server/respond"
)

// Handler exposes the catalog read-only over HTTP.
type Handler struct {
	Catalog *Catalog
}

// NewHandler constructs a Handler.
func NewHandler(c *Catalog) *Handler {
	return &Handler{Catalog: c}
}

// RegisterRoutes attaches catalog routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/catalog")
	g.GET("/solutions", h.listSolutions)
	g.GET("/audits", h.listMappings)
	g.GET("/audits/:auditId", h.resolve)
}

func (h *Handler) listSolutions(c *gin.Context) {
	respond.OK(c, gin.H{"solutions": h.Catalog.Solutions()})
}

func (h *Handler) listMappings(c *gin.Context) {
	respond.OK(c, gin.H{"mappings": h.Catalog.Mappings()})
}

func (h *Handler) resolve(c *gin.Context) {
	auditID := c.Param("auditId")
	rec, err := h.Catalog.Resolve(auditID, nil)
	if err != nil {
		if errors.Is(err, ErrNotMapped) {
			respond.Error(c, http.StatusNotFound, respond.CodeNotMapped, "No Azion solution is mapped to this audit", gin.H{"auditId": auditID})
			return
		}
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "failed to resolve audit", nil)
		return
	}
	respond.OK(c, rec)
}
