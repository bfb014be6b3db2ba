package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/freight-market/internal/http/middleware"
	"github.com/nurpe/freight-market/internal/model"
	"github.com/nurpe/freight-market/internal/service"
)

type Handler struct {
	contracts *service.ContractService
	exports   *service.ExportService
	log       zerolog.Logger
}

func NewHandler(contracts *service.ContractService, exports *service.ExportService, log zerolog.Logger) *Handler {
	return &Handler{contracts: contracts, exports: exports, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.GET("/healthz", h.health)

	protected := router.Group("/")
	protected.Use(authMiddleware)
	protected.GET("/contracts", h.listOwnContracts)
	protected.GET("/regions/:region/contracts", h.listContracts)
	protected.GET("/regions/:region/contracts/export", h.exportBoard)
	protected.GET("/regions/:region/contracts/:id", h.getContract)
	protected.GET("/regions/:region/contracts/:id/offer", h.exportOffer)
	protected.POST("/regions/:region/contracts/:id/bids", h.placeBid)
	protected.GET("/regions/:region/history", h.listWeeks)
	protected.GET("/regions/:region/history/:week", h.getWeek)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) listOwnContracts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	if principal.Region == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token carries no region"})
		return
	}
	h.respondBatch(c, principal.Region)
}

func (h *Handler) listContracts(c *gin.Context) {
	h.respondBatch(c, c.Param("region"))
}

func (h *Handler) respondBatch(c *gin.Context, region string) {
	batch, err := h.contracts.LoadOrGenerate(c.Request.Context(), region)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

func (h *Handler) getContract(c *gin.Context) {
	contract, err := h.contracts.GetContract(c.Request.Context(), c.Param("region"), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) listWeeks(c *gin.Context) {
	weeks, err := h.contracts.ListWeeks(c.Request.Context(), c.Param("region"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	out := make([]string, 0, len(weeks))
	for _, week := range weeks {
		out = append(out, week.Format("2006-01-02"))
	}
	c.JSON(http.StatusOK, gin.H{"weeks": out})
}

func (h *Handler) getWeek(c *gin.Context) {
	day, err := parseDate(c.Param("week"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid week"})
		return
	}
	batch, err := h.contracts.LoadWeek(c.Request.Context(), c.Param("region"), day)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, batch)
}

type placeBidRequest struct {
	Amount   float64        `json:"amount" binding:"required"`
	Trailers []string       `json:"trailers"`
	Drivers  []model.Driver `json:"drivers"`
}

func (h *Handler) placeBid(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req placeBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := h.contracts.PlaceBid(c.Request.Context(), service.PlaceBidInput{
		Region:     c.Param("region"),
		ContractID: c.Param("id"),
		Bidder: model.Bidder{
			ID:       principal.PlayerID,
			Name:     principal.Name,
			Trailers: req.Trailers,
			Drivers:  req.Drivers,
		},
		Amount: req.Amount,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) exportBoard(c *gin.Context) {
	result, err := h.exports.ExportBoard(c.Request.Context(), c.Param("region"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.Content)
}

func (h *Handler) exportOffer(c *gin.Context) {
	result, err := h.exports.ExportOffer(c.Request.Context(), c.Param("region"), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var ineligible *service.IneligibleBidderError
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrBidExceedsBudget):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &ineligible):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "reasons": ineligible.Reasons})
	case errors.Is(err, service.ErrIneligibleBidder):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCompetitionClosed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		"2006-01-02",
		time.RFC3339,
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
