package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tsiemasilo/tendermanagement/internal/api/metrics"
	"github.com/tsiemasilo/tendermanagement/internal/core/domain"
	"github.com/tsiemasilo/tendermanagement/internal/core/ports"
)

const monthLayout = "2006-01"

// TenderHandler handles HTTP requests for tender operations.
type TenderHandler struct {
	service  ports.TenderService
	exporter ports.TenderExporter
	now      func() time.Time
}

func NewTenderHandler(service ports.TenderService, exporter ports.TenderExporter) *TenderHandler {
	return &TenderHandler{service: service, exporter: exporter, now: time.Now}
}

// List handles GET /tenders.
//
// @Summary      List tenders
// @Tags         tenders
// @Produce      json
// @Success      200  {array}   domain.Tender
// @Failure      401  {object}  errorResponse
// @Router       /tenders [get]
func (h *TenderHandler) List(c echo.Context) error {
	tenders, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tenders)
}

// Get handles GET /tenders/:id.
//
// @Summary      Get a tender
// @Tags         tenders
// @Produce      json
// @Param        id   path      string  true  "Tender id"
// @Success      200  {object}  domain.Tender
// @Failure      404  {object}  errorResponse
// @Router       /tenders/{id} [get]
func (h *TenderHandler) Get(c echo.Context) error {
	tender, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tender)
}

// Create handles POST /tenders.
//
// @Summary      Create a tender
// @Tags         tenders
// @Accept       json
// @Produce      json
// @Param        body  body      createTenderRequest  true  "New tender"
// @Success      201   {object}  domain.Tender
// @Failure      400   {object}  errorResponse
// @Router       /tenders [post]
func (h *TenderHandler) Create(c echo.Context) error {
	var req createTenderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tender, err := h.service.Create(c.Request().Context(), req.toInput())
	if err != nil {
		return err
	}
	metrics.TenderMutationsTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, tender)
}

// Update handles PUT /tenders/:id. Absent fields are left unchanged.
//
// @Summary      Update a tender
// @Tags         tenders
// @Accept       json
// @Produce      json
// @Param        id    path      string               true  "Tender id"
// @Param        body  body      updateTenderRequest  true  "Fields to change"
// @Success      200   {object}  domain.Tender
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /tenders/{id} [put]
func (h *TenderHandler) Update(c echo.Context) error {
	var req updateTenderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tender, err := h.service.Update(c.Request().Context(), c.Param("id"), req.toPatch())
	if err != nil {
		return err
	}
	metrics.TenderMutationsTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, tender)
}

// Delete handles DELETE /tenders/:id.
//
// @Summary      Delete a tender
// @Tags         tenders
// @Produce      json
// @Param        id   path      string  true  "Tender id"
// @Success      200  {object}  deleteResponse
// @Router       /tenders/{id} [delete]
func (h *TenderHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	metrics.TenderMutationsTotal.WithLabelValues("delete").Inc()
	return c.JSON(http.StatusOK, deleteResponse{Message: "Tender deleted successfully", ID: id})
}

// Calendar handles GET /tenders/calendar?month=YYYY-MM. The current month is
// used when the parameter is absent.
//
// @Summary      Tender calendar
// @Tags         tenders
// @Produce      json
// @Param        month  query     string  false  "Month as YYYY-MM"
// @Success      200    {array}   domain.CalendarDay
// @Failure      400    {object}  errorResponse
// @Router       /tenders/calendar [get]
func (h *TenderHandler) Calendar(c echo.Context) error {
	month := h.now()
	if raw := c.QueryParam("month"); raw != "" {
		parsed, err := time.Parse(monthLayout, raw)
		if err != nil {
			return domain.NewValidationError(domain.FieldError{Field: "month", Message: "month must be formatted as YYYY-MM"})
		}
		month = parsed
	}

	days, err := h.service.Calendar(c.Request().Context(), month.Year(), month.Month())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, days)
}

// Export handles GET /tenders/export and returns every tender as a download.
//
// @Summary      Export tenders
// @Tags         tenders
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success      200
// @Router       /tenders/export [get]
func (h *TenderHandler) Export(c echo.Context) error {
	tenders, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := h.exporter.Write(&buf, tenders); err != nil {
		return fmt.Errorf("export tenders: %w", err)
	}
	metrics.TenderExportsTotal.Inc()

	filename := fmt.Sprintf("tenders-%s.%s", h.now().UTC().Format("2006-01-02"), h.exporter.FileExtension())
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, h.exporter.ContentType(), buf.Bytes())
}
