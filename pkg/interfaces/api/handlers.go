package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vsinha/blendmrp/pkg/application/services/planning"
	"github.com/vsinha/blendmrp/pkg/application/services/substitution"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
	"github.com/vsinha/blendmrp/pkg/domain/repositories"
	"github.com/vsinha/blendmrp/pkg/domain/services"
)

type PlanningHandler struct {
	planningService *planning.PlanningService
}

func NewPlanningHandler(planningService *planning.PlanningService) *PlanningHandler {
	return &PlanningHandler{planningService: planningService}
}

// RunPlanning explodes every open production order and returns the netted plan
func (h *PlanningHandler) RunPlanning(c *gin.Context) {
	result, err := h.planningService.RunPlanning(c.Request.Context())
	if err != nil {
		errorResponse(c, err)
		return
	}

	if c.Query("urgent") == "true" {
		c.JSON(http.StatusOK, gin.H{
			"run_id":                result.RunID,
			"exploded_requirements": result.UrgentLines(),
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

type SubstitutionHandler struct {
	substitutionService *substitution.Service
}

func NewSubstitutionHandler(substitutionService *substitution.Service) *SubstitutionHandler {
	return &SubstitutionHandler{substitutionService: substitutionService}
}

type replaceRequest struct {
	OldCode         string `json:"old_code" binding:"required"`
	NewCode         string `json:"new_code" binding:"required"`
	CreateIfMissing bool   `json:"create_if_missing"`
}

type replaceBulkRequest struct {
	OldPattern      string `json:"old_pattern" binding:"required"`
	NewPattern      string `json:"new_pattern" binding:"required"`
	CreateIfMissing bool   `json:"create_if_missing"`
}

// Replace substitutes one item code everywhere it is referenced
func (h *SubstitutionHandler) Replace(c *gin.Context) {
	var req replaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.substitutionService.Replace(c.Request.Context(),
		entities.ItemCode(req.OldCode), entities.ItemCode(req.NewCode), req.CreateIfMissing)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ReplaceBulk applies a wildcard replacement. Per-item failures are part of a 200 response.
func (h *SubstitutionHandler) ReplaceBulk(c *gin.Context) {
	var req replaceBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.substitutionService.ReplaceBulk(c.Request.Context(), req.OldPattern, req.NewPattern, req.CreateIfMissing)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListHistory returns the replacement ledger newest first
func (h *SubstitutionHandler) ListHistory(c *gin.Context) {
	entries, err := h.substitutionService.History(c.Request.Context())
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": entries})
}

// GetHistoryEntry returns one ledger entry including its snapshot
func (h *SubstitutionHandler) GetHistoryEntry(c *gin.Context) {
	id, ok := historyID(c)
	if !ok {
		return
	}

	entry, err := h.substitutionService.HistoryEntry(c.Request.Context(), id)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// Undo reverses a ledger entry
func (h *SubstitutionHandler) Undo(c *gin.Context) {
	id, ok := historyID(c)
	if !ok {
		return
	}

	result, err := h.substitutionService.Undo(c.Request.Context(), id)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func historyID(c *gin.Context) (int64, bool) {
	return pathID(c, "history")
}

type CatalogHandler struct {
	catalog repositories.CatalogRepository
}

func NewCatalogHandler(catalog repositories.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListItems returns every item ordered by code
func (h *CatalogHandler) ListItems(c *gin.Context) {
	items, err := h.catalog.ListItems(c.Request.Context())
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *CatalogHandler) ListInventory(c *gin.Context) {
	lots, err := h.catalog.ListInventory(c.Request.Context())
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inventory": lots})
}

func (h *CatalogHandler) ListPurchaseOrders(c *gin.Context) {
	orders, err := h.catalog.ListPurchaseOrders(c.Request.Context())
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchase_orders": orders})
}

// ListBOMEdges returns all BOM lines, or those of one parent when ?parent= is set
func (h *CatalogHandler) ListBOMEdges(c *gin.Context) {
	var (
		edges []entities.BOMEdgeView
		err   error
	)
	if parent := c.Query("parent"); parent != "" {
		edges, err = h.catalog.ListBOMEdgesForParent(c.Request.Context(), entities.ItemCode(parent))
	} else {
		edges, err = h.catalog.ListBOMEdges(c.Request.Context())
	}
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"boms": edges})
}

// ValidateBOM reports cycles, self edges and dilution lines without a main ingredient
func (h *CatalogHandler) ValidateBOM(c *gin.Context) {
	edges, err := h.catalog.ListBOMEdges(c.Request.Context())
	if err != nil {
		errorResponse(c, err)
		return
	}

	result := services.ValidateBOM(edges)
	c.JSON(http.StatusOK, gin.H{
		"valid":    result.IsValid(),
		"cycles":   result.CyclePaths,
		"errors":   result.Errors,
		"warnings": result.Warnings,
	})
}
