package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

type createItemRequest struct {
	Code         string          `json:"code" binding:"required"`
	Name         string          `json:"name"`
	UOM          string          `json:"uom"`
	LeadTimeDays int             `json:"lead_time_days"`
	BatchSize    decimal.Decimal `json:"batch_size"`
}

// updateItemRequest changes only the fields that are present
type updateItemRequest struct {
	LeadTimeDays *int             `json:"lead_time_days"`
	BatchSize    *decimal.Decimal `json:"batch_size"`
}

type addInventoryRequest struct {
	Code     string          `json:"code" binding:"required"`
	Location string          `json:"location"`
	Qty      decimal.Decimal `json:"qty"`
}

type bomEdgeRequest struct {
	Parent       string              `json:"parent" binding:"required"`
	Child        string              `json:"child" binding:"required"`
	Qty          decimal.Decimal     `json:"qty"`
	IsDilution   bool                `json:"is_dilution"`
	PerMainQty   decimal.NullDecimal `json:"per_main_qty"`
	DilutionMain string              `json:"dilution_main"`
}

type updateBOMEdgeRequest struct {
	Parent       *string          `json:"parent"`
	Child        *string          `json:"child"`
	Qty          *decimal.Decimal `json:"qty"`
	IsDilution   *bool            `json:"is_dilution"`
	PerMainQty   *decimal.Decimal `json:"per_main_qty"`
	DilutionMain *string          `json:"dilution_main"`
}

type orderRequest struct {
	Code string          `json:"code" binding:"required"`
	Qty  decimal.Decimal `json:"qty"`
	Date string          `json:"date"`
}

type orderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CreateItem adds an item. A missing or non-positive batch size becomes the default.
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	var req createItemRequest
	if !bind(c, &req) {
		return
	}

	item, err := entities.NewItem(entities.ItemCode(req.Code), req.Name, req.UOM, req.LeadTimeDays, req.BatchSize)
	if err != nil {
		errorResponse(c, err)
		return
	}
	id, err := h.catalog.CreateItem(c.Request.Context(), item)
	if err != nil {
		errorResponse(c, err)
		return
	}
	item.ID = id
	c.JSON(http.StatusCreated, item)
}

// UpdateItem sets the lead time and/or batch size of an item
func (h *CatalogHandler) UpdateItem(c *gin.Context) {
	var req updateItemRequest
	if !bind(c, &req) {
		return
	}

	ctx := c.Request.Context()
	code := entities.ItemCode(c.Param("code"))
	if req.LeadTimeDays != nil {
		if err := h.catalog.SetItemLeadTime(ctx, code, *req.LeadTimeDays); err != nil {
			errorResponse(c, err)
			return
		}
	}
	if req.BatchSize != nil {
		if err := h.catalog.SetItemBatchSize(ctx, code, *req.BatchSize); err != nil {
			errorResponse(c, err)
			return
		}
	}

	item, err := h.catalog.FindItemByCode(ctx, code)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem removes an item that nothing references
func (h *CatalogHandler) DeleteItem(c *gin.Context) {
	if err := h.catalog.DeleteItem(c.Request.Context(), entities.ItemCode(c.Param("code"))); err != nil {
		errorResponse(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) AddInventory(c *gin.Context) {
	var req addInventoryRequest
	if !bind(c, &req) {
		return
	}

	id, err := h.catalog.AddInventoryLot(c.Request.Context(), entities.ItemCode(req.Code), req.Location, req.Qty)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *CatalogHandler) AddBOMEdge(c *gin.Context) {
	var req bomEdgeRequest
	if !bind(c, &req) {
		return
	}

	id, err := h.catalog.AddBOMEdge(c.Request.Context(), entities.BOMEdgeInput{
		Parent:       entities.ItemCode(req.Parent),
		Child:        entities.ItemCode(req.Child),
		QtyPer:       req.Qty,
		IsDilution:   req.IsDilution,
		PerMainQty:   req.PerMainQty,
		DilutionMain: entities.ItemCode(req.DilutionMain),
	})
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// UpdateBOMEdge applies the fields present in the body to one BOM line
func (h *CatalogHandler) UpdateBOMEdge(c *gin.Context) {
	id, ok := pathID(c, "BOM line")
	if !ok {
		return
	}
	var req updateBOMEdgeRequest
	if !bind(c, &req) {
		return
	}

	update := entities.BOMEdgeUpdate{
		Parent:       codePtr(req.Parent),
		Child:        codePtr(req.Child),
		QtyPer:       req.Qty,
		IsDilution:   req.IsDilution,
		DilutionMain: codePtr(req.DilutionMain),
	}
	if req.PerMainQty != nil {
		update.PerMainQty = &decimal.NullDecimal{Decimal: *req.PerMainQty, Valid: true}
	}
	if err := h.catalog.UpdateBOMEdge(c.Request.Context(), id, update); err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

func (h *CatalogHandler) DeleteBOMEdge(c *gin.Context) {
	id, ok := pathID(c, "BOM line")
	if !ok {
		return
	}
	if err := h.catalog.DeleteBOMEdge(c.Request.Context(), id); err != nil {
		errorResponse(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CreatePurchaseOrder opens a PO; date is the ETA
func (h *CatalogHandler) CreatePurchaseOrder(c *gin.Context) {
	var req orderRequest
	if !bind(c, &req) {
		return
	}
	eta, err := entities.ParseDate(req.Date)
	if err != nil {
		errorResponse(c, err)
		return
	}

	id, err := h.catalog.AddPurchaseOrder(c.Request.Context(), entities.ItemCode(req.Code), req.Qty, eta)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *CatalogHandler) SetPurchaseOrderStatus(c *gin.Context) {
	h.setOrderStatus(c, "purchase order", h.catalog.SetPurchaseOrderStatus)
}

// CreateProductionOrder opens a production order; date is the due date
func (h *CatalogHandler) CreateProductionOrder(c *gin.Context) {
	var req orderRequest
	if !bind(c, &req) {
		return
	}
	due, err := entities.ParseDate(req.Date)
	if err != nil {
		errorResponse(c, err)
		return
	}

	id, err := h.catalog.AddProductionOrder(c.Request.Context(), entities.ItemCode(req.Code), req.Qty, due)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *CatalogHandler) SetProductionOrderStatus(c *gin.Context) {
	h.setOrderStatus(c, "production order", h.catalog.SetProductionOrderStatus)
}

func (h *CatalogHandler) setOrderStatus(c *gin.Context, kind string, set func(context.Context, int64, entities.OrderStatus) error) {
	id, ok := pathID(c, kind)
	if !ok {
		return
	}
	var req orderStatusRequest
	if !bind(c, &req) {
		return
	}
	status, err := entities.ParseOrderStatus(req.Status)
	if err != nil {
		errorResponse(c, err)
		return
	}

	if err := set(c.Request.Context(), id, status); err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": status})
}

// bind decodes the JSON body, answering 400 when it does not fit req
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func pathID(c *gin.Context, kind string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s id %q", kind, c.Param("id"))})
		return 0, false
	}
	return id, true
}

func codePtr(s *string) *entities.ItemCode {
	if s == nil {
		return nil
	}
	code := entities.ItemCode(*s)
	return &code
}
