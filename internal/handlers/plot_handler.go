package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/middleware"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/repository"
	"github.com/Saurabhrajput1234/subhsankalpCRM-sub000/internal/services"
	"github.com/gin-gonic/gin"
)

type PlotHandler struct {
	plotService   *services.PlotService
	exportService *services.ExportService
	importService *services.ImportService
}

func NewPlotHandler(plotService *services.PlotService, exportService *services.ExportService, importService *services.ImportService) *PlotHandler {
	return &PlotHandler{
		plotService:   plotService,
		exportService: exportService,
		importService: importService,
	}
}

// @Summary List Plots
// @Description Get a paginated list of plots
// @Tags Plots
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param site_name query string false "Filter by site"
// @Param status query string false "Filter by status (comma separated)"
// @Param search query string false "Search text"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /plots [get]
func (h *PlotHandler) Index(c *gin.Context) {
	query := h.listQuery(c)

	plots, total, err := h.plotService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var responses []interface{}
	for i := range plots {
		responses = append(responses, plots[i].ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"plots": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Show Plot
// @Description Get a single plot by id
// @Tags Plots
// @Produce json
// @Param id path int true "Plot ID"
// @Success 200 {object} models.PlotResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /plots/{id} [get]
func (h *PlotHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)

	plot, err := h.plotService.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Plot not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"plot": plot.ToResponse()})
}

type CreatePlotRequest struct {
	SiteName    string  `json:"site_name" binding:"required"`
	PlotNo      string  `json:"plot_no" binding:"required"`
	SizeText    string  `json:"size_text"`
	UnitRate    float64 `json:"unit_rate"`
	TotalPrice  float64 `json:"total_price"`
	Description *string `json:"description"`
}

// @Summary Create Plot
// @Description Register a new plot
// @Tags Plots
// @Accept json
// @Produce json
// @Param request body CreatePlotRequest true "Plot"
// @Success 201 {object} models.PlotResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /plots [post]
func (h *PlotHandler) Create(c *gin.Context) {
	var req CreatePlotRequest
	if err := BindNestedOrFlat(c, "plot", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.SiteName == "" || req.PlotNo == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "site_name and plot_no are required"})
		return
	}

	plot, err := h.plotService.Create(c.Request.Context(), services.CreatePlotInput{
		SiteName:    req.SiteName,
		PlotNo:      req.PlotNo,
		SizeText:    req.SizeText,
		UnitRate:    req.UnitRate,
		TotalPrice:  req.TotalPrice,
		Description: req.Description,
		CreatedByID: middleware.GetUserID(c),
	})
	if err != nil {
		if errors.Is(err, services.ErrDuplicate) {
			c.JSON(http.StatusConflict, gin.H{"error": "A plot with this site and number already exists"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"plot": plot.ToResponse()})
}

type UpdatePlotRequest struct {
	SizeText    *string  `json:"size_text"`
	UnitRate    *float64 `json:"unit_rate"`
	TotalPrice  *float64 `json:"total_price"`
	Description *string  `json:"description"`
}

// @Summary Update Plot
// @Description Edit a plot's size, pricing or description
// @Tags Plots
// @Accept json
// @Produce json
// @Param id path int true "Plot ID"
// @Param request body UpdatePlotRequest true "Fields to update"
// @Success 200 {object} models.PlotResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /plots/{id} [put]
func (h *PlotHandler) Update(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)

	var req UpdatePlotRequest
	if err := BindNestedOrFlat(c, "plot", &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	plot, err := h.plotService.Update(c.Request.Context(), uint(id), services.UpdatePlotInput{
		SizeText:    req.SizeText,
		UnitRate:    req.UnitRate,
		TotalPrice:  req.TotalPrice,
		Description: req.Description,
		UpdatedByID: middleware.GetUserID(c),
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Plot not found"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"plot": plot.ToResponse(), "message": "Plot updated"})
}

// @Summary Delete Plot
// @Description Delete a plot without any receipts on record
// @Tags Plots
// @Produce json
// @Param id path int true "Plot ID"
// @Success 200 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /plots/{id} [delete]
func (h *PlotHandler) Delete(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 32)

	err := h.plotService.Delete(c.Request.Context(), uint(id), middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Plot not found"})
			return
		}
		if errors.Is(err, services.ErrPlotHasReceipts) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Plot has receipts and cannot be deleted"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Plot deleted"})
}

// @Summary Site Summary
// @Description Per site plot counts and money received
// @Tags Plots
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /plots/summary [get]
func (h *PlotHandler) Summary(c *gin.Context) {
	summaries, err := h.plotService.SiteSummaries(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sites": summaries})
}

// @Summary Export Plots
// @Description Download the plot register as CSV or XLSX
// @Tags Plots
// @Produce octet-stream
// @Param format query string false "csv or xlsx" default(csv)
// @Param site_name query string false "Filter by site"
// @Param status query string false "Filter by status"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /plots/export [get]
func (h *PlotHandler) Export(c *gin.Context) {
	query := h.listQuery(c)

	var data []byte
	var filename string
	var contentType string
	var err error

	switch c.DefaultQuery("format", "csv") {
	case "xlsx":
		data, filename, err = h.exportService.ExportPlotsXLSX(c.Request.Context(), query)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		data, filename, err = h.exportService.ExportPlotsCSV(c.Request.Context(), query)
		contentType = "text/csv"
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}

// @Summary Import Plots
// @Description Bulk load plots from an uploaded XLSX workbook
// @Tags Plots
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Workbook"
// @Success 200 {object} services.ImportResult
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /plots/import [post]
func (h *PlotHandler) Import(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open uploaded file"})
		return
	}
	defer src.Close()

	result, err := h.importService.ImportPlotsXLSX(c.Request.Context(), src, middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *PlotHandler) listQuery(c *gin.Context) *repository.ListQuery {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search")
	query.Filters["site_name"] = c.Query("site_name")
	query.Filters["status"] = c.Query("status")

	// Parse sort parameter (format: field-direction)
	if sort := c.Query("sort"); sort != "" {
		parts := strings.Split(sort, "-")
		query.SortBy = parts[0]
		if len(parts) > 1 {
			query.SortDir = parts[1]
		}
	}
	return query
}
