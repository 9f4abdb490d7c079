package controllers

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/franciscosanchezn/gin-restaurant-api/internal/models"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/report"
	"github.com/franciscosanchezn/gin-restaurant-api/internal/services"
	"github.com/gin-gonic/gin"
)

// ReportController serves staff reports
type ReportController interface {
	// MonthlyReport returns the aggregate of one month as JSON or XLSX
	MonthlyReport(c *gin.Context)
}

type reportController struct {
	service services.ReportService
	now     func() time.Time
}

// NewReportController creates a new instance of ReportController
func NewReportController(service services.ReportService) ReportController {
	return &reportController{service: service, now: time.Now}
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

// MonthlyReport godoc
// @Summary Monthly report
// @Description Order count, revenue, average rating and per dish sales of one month. Defaults to the current month.
// @Tags staff
// @Produce json,application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param year query int false "Year"
// @Param month query int false "Month, 1 to 12"
// @Param format query string false "json (default) or xlsx"
// @Success 200 {object} models.MonthlyReport
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/protected/staff/reports/monthly [get]
func (r *reportController) MonthlyReport(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "format must be json or xlsx"))
		return
	}
	now := r.now()
	year, err := queryInt(c, "year", now.Year())
	if err != nil {
		invalidInput(c, "Invalid year", err)
		return
	}
	month, err := queryInt(c, "month", int(now.Month()))
	if err != nil {
		invalidInput(c, "Invalid month", err)
		return
	}

	monthly, err := r.service.MonthlyReport(c.Request.Context(), year, month)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if format == "json" {
		c.JSON(http.StatusOK, monthly)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteMonthly(&buf, monthly); err != nil {
		respondWithError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+report.Filename(monthly)+`"`)
	c.Data(http.StatusOK, report.ContentType, buf.Bytes())
}
