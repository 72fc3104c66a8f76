package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/shopdash/backend-go/internal/domain"
	"github.com/andresuchdata/shopdash/backend-go/internal/pipeline/sales"
	"github.com/andresuchdata/shopdash/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ReportHandler struct {
	service *service.DashboardService
	now     func() time.Time
}

func NewReportHandler(service *service.DashboardService, now func() time.Time) *ReportHandler {
	if now == nil {
		now = time.Now
	}
	return &ReportHandler{service: service, now: now}
}

// Refresh forces a pipeline run and returns its summary.
func (h *ReportHandler) Refresh(c *gin.Context) {
	run, err := h.service.Refresh(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("refresh failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "run": run})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run})
}

func (h *ReportHandler) GetRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := h.service.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (h *ReportHandler) GetFacts(c *gin.Context) {
	from, to, ok := h.parseRange(c)
	if !ok {
		return
	}
	facts, err := h.service.Facts(c.Request.Context(), from, to, parseSKUs(c))
	if err != nil {
		internalError(c, err)
		return
	}
	if facts == nil {
		facts = []sales.DailyFact{}
	}
	c.JSON(http.StatusOK, gin.H{"facts": facts, "count": len(facts)})
}

func (h *ReportHandler) GetSKUs(c *gin.Context) {
	skus, err := h.service.SKUs(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"skus": skus})
}

func (h *ReportHandler) GetYears(c *gin.Context) {
	years, err := h.service.Years(c.Request.Context())
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"years": years})
}

func (h *ReportHandler) GetMonthly(c *gin.Context) {
	year, ok := h.parseYear(c)
	if !ok {
		return
	}
	month, ok := h.parseMonth(c)
	if !ok {
		return
	}
	mode, ok := parseMode(c)
	if !ok {
		return
	}

	report, err := h.service.Monthly(c.Request.Context(), year, month, mode, parseSKUs(c))
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) GetDaily(c *gin.Context) {
	from, to, ok := h.parseRange(c)
	if !ok {
		return
	}
	mode, ok := parseMode(c)
	if !ok {
		return
	}

	report, err := h.service.Daily(c.Request.Context(), from, to, mode, parseSKUs(c))
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) GetTrend(c *gin.Context) {
	from, to, ok := h.parseRange(c)
	if !ok {
		return
	}
	skus := parseSKUs(c)
	if len(skus) == 0 {
		badRequest(c, "select at least one sku")
		return
	}

	report, err := h.service.Trend(c.Request.Context(), from, to, skus)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) GetPnL(c *gin.Context) {
	year, ok := h.parseYear(c)
	if !ok {
		return
	}
	report, err := h.service.PnL(c.Request.Context(), year)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) GetCommission(c *gin.Context) {
	year, ok := h.parseYear(c)
	if !ok {
		return
	}
	month, ok := h.parseMonth(c)
	if !ok {
		return
	}
	report, err := h.service.Commission(c.Request.Context(), year, month)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) parseYear(c *gin.Context) (int, bool) {
	raw := strings.TrimSpace(c.Query("year"))
	if raw == "" {
		return h.now().Year(), true
	}
	year, ok := sales.ParseYear(raw)
	if !ok {
		badRequest(c, "invalid year: "+raw)
		return 0, false
	}
	return year, true
}

// parseMonth accepts 1-12 or a Thai or English month name.
func (h *ReportHandler) parseMonth(c *gin.Context) (int, bool) {
	raw := strings.TrimSpace(c.Query("month"))
	if raw == "" {
		return int(h.now().Month()), true
	}
	month, ok := sales.ParseMonth(raw)
	if !ok {
		badRequest(c, "invalid month: "+raw)
		return 0, false
	}
	return month, true
}

// parseRange reads from/to as YYYY-MM-DD. Missing bounds default to the
// first of the current month and today.
func (h *ReportHandler) parseRange(c *gin.Context) (time.Time, time.Time, bool) {
	now := h.now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if raw := strings.TrimSpace(c.Query("from")); raw != "" {
		t, err := time.Parse(sales.DateLayout, raw)
		if err != nil {
			badRequest(c, "invalid from date: "+raw)
			return time.Time{}, time.Time{}, false
		}
		from = t
	}
	if raw := strings.TrimSpace(c.Query("to")); raw != "" {
		t, err := time.Parse(sales.DateLayout, raw)
		if err != nil {
			badRequest(c, "invalid to date: "+raw)
			return time.Time{}, time.Time{}, false
		}
		to = t
	}
	if to.Before(from) {
		badRequest(c, "to must not be before from")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func parseMode(c *gin.Context) (domain.SKUMode, bool) {
	mode, ok := domain.ParseSKUMode(c.Query("mode"))
	if !ok {
		badRequest(c, "invalid mode: "+c.Query("mode"))
		return "", false
	}
	return mode, true
}

// parseSKUs supports both ?sku=A&sku=B and ?sku=A,B.
func parseSKUs(c *gin.Context) []string {
	raw := c.QueryArray("sku")
	if len(raw) == 0 {
		raw = c.QueryArray("skus")
	}

	seen := make(map[string]struct{})
	var skus []string
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			skus = append(skus, part)
		}
	}
	return skus
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func internalError(c *gin.Context, err error) {
	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
