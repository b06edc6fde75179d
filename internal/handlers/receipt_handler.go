package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/middleware"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/repository"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/services"
	"github.com/gin-gonic/gin"
)

type ReceiptHandler struct {
	receiptService *services.ReceiptService
	exportService  *services.ExportService
}

func NewReceiptHandler(receiptService *services.ReceiptService, exportService *services.ExportService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService, exportService: exportService}
}

// @Summary List Receipts
// @Description Get a paginated list of receipts
// @Tags Receipts
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param site_name query string false "Filter by site"
// @Param plot_no query string false "Filter by plot number"
// @Param status query string false "Filter by status"
// @Param type query string false "Filter by type (token or booking)"
// @Param from_date query string false "Created on or after (YYYY-MM-DD)"
// @Param to_date query string false "Created before (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /receipts [get]
func (h *ReceiptHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search")
	query.Filters["site_name"] = c.Query("site_name")
	query.Filters["plot_no"] = c.Query("plot_no")
	query.Filters["status"] = c.Query("status")
	query.Filters["type"] = c.Query("type")
	query.Filters["from_date"] = c.Query("from_date")
	query.Filters["to_date"] = c.Query("to_date")

	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}

	receipts, total, err := h.receiptService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for i := range receipts {
		responses = append(responses, receipts[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"receipts": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Show Receipt
// @Description Get a single receipt by id
// @Tags Receipts
// @Produce json
// @Param id path int true "Receipt ID"
// @Success 200 {object} models.ReceiptResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /receipts/{id} [get]
func (h *ReceiptHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)

	receipt, err := h.receiptService.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Receipt not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"receipt": receipt.ToResponse()})
}

type CreateReceiptRequest struct {
	SiteName     string  `json:"site_name" binding:"required"`
	PlotNo       string  `json:"plot_no" binding:"required"`
	Type         string  `json:"type" binding:"required"`
	Amount       float64 `json:"amount" binding:"required"`
	OtherCharges *string `json:"other_charges"`
	Discount     float64 `json:"discount"`
	ExpiryDate   *string `json:"expiry_date"`
	Remarks      *string `json:"remarks"`
}

// @Summary Create Receipt
// @Description Record a token or booking receipt against a plot
// @Tags Receipts
// @Accept json
// @Produce json
// @Param request body CreateReceiptRequest true "Receipt"
// @Success 201 {object} models.ReceiptResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /receipts [post]
func (h *ReceiptHandler) Create(c *gin.Context) {
	var req CreateReceiptRequest
	if err := BindNestedOrFlat(c, "receipt", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.SiteName == "" || req.PlotNo == "" || req.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "site_name, plot_no and type are required"})
		return
	}

	expiry, err := parseDate(req.ExpiryDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid expiry_date, expected YYYY-MM-DD"})
		return
	}

	receipt, err := h.receiptService.Create(c.Request.Context(), services.CreateReceiptInput{
		SiteName:     req.SiteName,
		PlotNo:       req.PlotNo,
		Type:         req.Type,
		Amount:       req.Amount,
		OtherCharges: req.OtherCharges,
		Discount:     req.Discount,
		ExpiryDate:   expiry,
		Remarks:      req.Remarks,
		CreatedByID:  middleware.GetUserID(c),
		CreatorRole:  middleware.GetUserRole(c),
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No plot matches this site and plot number"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"receipt": receipt.ToResponse(), "message": "Receipt recorded"})
}

type ApproveReceiptRequest struct {
	Remarks    *string  `json:"remarks"`
	Discount   *float64 `json:"discount"`
	ExpiryDate *string  `json:"expiry_date"`
}

// @Summary Approve Receipt
// @Description Approve a pending receipt, grant its discount and reconcile the plot. Omitting the discount grants the one proposed at creation.
// @Tags Receipts
// @Accept json
// @Produce json
// @Param id path int true "Receipt ID"
// @Param request body ApproveReceiptRequest false "Approval details"
// @Success 200 {object} models.ReceiptResponse
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /receipts/{id}/approve [post]
func (h *ReceiptHandler) Approve(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)

	var req ApproveReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Empty body is fine, approval details are optional
	}

	expiry, err := parseDate(req.ExpiryDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid expiry_date, expected YYYY-MM-DD"})
		return
	}

	receipt, err := h.receiptService.Approve(c.Request.Context(), uint(id), services.ApproveReceiptInput{
		ApproverID: middleware.GetUserID(c),
		Remarks:    req.Remarks,
		Discount:   req.Discount,
		ExpiryDate: expiry,
	})
	if err != nil {
		h.decisionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"receipt": receipt.ToResponse(), "message": "Receipt approved"})
}

type RejectReceiptRequest struct {
	Remarks *string `json:"remarks"`
}

// @Summary Reject Receipt
// @Description Reject a pending receipt
// @Tags Receipts
// @Accept json
// @Produce json
// @Param id path int true "Receipt ID"
// @Param request body RejectReceiptRequest false "Rejection details"
// @Success 200 {object} models.ReceiptResponse
// @Failure 409 {object} map[string]string
// @Security BearerAuth
// @Router /receipts/{id}/reject [post]
func (h *ReceiptHandler) Reject(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)

	var req RejectReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Empty body is fine
	}

	receipt, err := h.receiptService.Reject(c.Request.Context(), uint(id), middleware.GetUserID(c), req.Remarks)
	if err != nil {
		h.decisionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"receipt": receipt.ToResponse(), "message": "Receipt rejected"})
}

// @Summary Download Receipt PDF
// @Description Download a printable copy of the receipt
// @Tags Receipts
// @Produce octet-stream
// @Param id path int true "Receipt ID"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /receipts/{id}/download [get]
func (h *ReceiptHandler) Download(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)

	data, filename, err := h.exportService.ExportReceiptPDF(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Receipt not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *ReceiptHandler) decisionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Receipt not found"})
	case errors.Is(err, services.ErrConflictingState):
		c.JSON(http.StatusConflict, gin.H{"error": "Receipt has already been decided"})
	default:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	}
}

func parseDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
