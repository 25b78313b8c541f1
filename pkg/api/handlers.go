package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/udiptgupta/Risk-lab/internal/batch"
	"github.com/udiptgupta/Risk-lab/internal/store"
	"github.com/udiptgupta/Risk-lab/internal/valuation"
	"github.com/udiptgupta/Risk-lab/internal/websocket"
	"github.com/udiptgupta/Risk-lab/pkg/models"
	"github.com/udiptgupta/Risk-lab/pkg/utils/errors"
	"github.com/udiptgupta/Risk-lab/pkg/utils/logger"
)

const dateLayout = "2006-01-02"

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	bonds      store.BondStore
	metrics    store.MetricsStore
	valuer     *valuation.Service
	recomputer *batch.Recomputer
	hub        *websocket.Hub
	log        *logger.Logger
}

// CreateHandlers creates new API handlers
func CreateHandlers(
	bonds store.BondStore,
	metricsStore store.MetricsStore,
	valuer *valuation.Service,
	recomputer *batch.Recomputer,
	hub *websocket.Hub,
) *Handlers {
	return &Handlers{
		bonds:      bonds,
		metrics:    metricsStore,
		valuer:     valuer,
		recomputer: recomputer,
		hub:        hub,
		log:        logger.GetLogger("api.handlers"),
	}
}

// HealthCheckHandler handles health check requests
func (h *Handlers) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// ListBondsHandler returns all bonds
func (h *Handlers) ListBondsHandler(c *gin.Context) {
	bonds, err := h.bonds.ListBonds(c.Request.Context())
	if err != nil {
		h.log.Errorf("Failed to list bonds: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bonds": bonds, "count": len(bonds)})
}

// GetBondHandler returns the static terms of one bond
func (h *Handlers) GetBondHandler(c *gin.Context) {
	bondID, ok := h.bondID(c)
	if !ok {
		return
	}

	bond, err := h.bonds.GetBond(c.Request.Context(), bondID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bond)
}

// GetValuationHandler prices a bond and returns its risk sensitivities.
// Query parameters: as_of (YYYY-MM-DD, defaults to today), breakdown
// (include the per-cash-flow PV table, defaults to false).
func (h *Handlers) GetValuationHandler(c *gin.Context) {
	bondID, ok := h.bondID(c)
	if !ok {
		return
	}

	asOf, ok := h.asOf(c)
	if !ok {
		return
	}

	result, err := h.valuer.ValueBond(c.Request.Context(), bondID, asOf)
	if err != nil {
		h.log.Errorf("Failed to value bond %d: %v", bondID, err)
		respondError(c, err)
		return
	}

	if c.Query("breakdown") != "true" {
		result.CashFlows = nil
	}

	c.JSON(http.StatusOK, result)
}

type scenarioBody struct {
	AsOf     string `json:"as_of"`
	ShockBps int    `json:"shock_bps"`
}

// ScenarioHandler reprices a bond under a parallel curve shift
func (h *Handlers) ScenarioHandler(c *gin.Context) {
	bondID, ok := h.bondID(c)
	if !ok {
		return
	}

	var body scenarioBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Invalid scenario request: %v", err),
		})
		return
	}

	asOf := time.Now().UTC().Truncate(24 * time.Hour)
	if body.AsOf != "" {
		parsed, err := time.Parse(dateLayout, body.AsOf)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Invalid as_of date %q, expected YYYY-MM-DD", body.AsOf),
			})
			return
		}
		asOf = parsed
	}

	result, err := h.valuer.Reprice(c.Request.Context(), models.ScenarioRequest{
		BondID:   bondID,
		AsOf:     asOf,
		ShockBps: body.ShockBps,
	})
	if err != nil {
		h.log.Errorf("Failed to reprice bond %d under %d bps: %v", bondID, body.ShockBps, err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCurveHandler returns the term structure valuations would use as of a date
func (h *Handlers) GetCurveHandler(c *gin.Context) {
	asOf, ok := h.asOf(c)
	if !ok {
		return
	}

	curve, err := h.valuer.ResolveCurve(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, curve)
}

// ListMetricsHandler returns persisted risk metrics for an as-of date
func (h *Handlers) ListMetricsHandler(c *gin.Context) {
	asOf, ok := h.asOf(c)
	if !ok {
		return
	}

	records, err := h.metrics.ListMetrics(c.Request.Context(), asOf)
	if err != nil {
		h.log.Errorf("Failed to list metrics: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"metrics": records, "count": len(records)})
}

type recomputeBody struct {
	AsOf string `json:"as_of"`
}

// RecomputeHandler runs a batch recomputation across all bonds
func (h *Handlers) RecomputeHandler(c *gin.Context) {
	var body recomputeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Invalid recompute request: %v", err),
		})
		return
	}

	asOf, err := time.Parse(dateLayout, body.AsOf)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Invalid as_of date %q, expected YYYY-MM-DD", body.AsOf),
		})
		return
	}

	summary, err := h.recomputer.Run(c.Request.Context(), asOf)
	if err != nil {
		h.log.Errorf("Batch recomputation failed: %v", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// WebSocketHandler upgrades the connection and attaches it to the hub
func (h *Handlers) WebSocketHandler(c *gin.Context) {
	h.hub.ServeWS(c.Writer, c.Request)
}

func (h *Handlers) bondID(c *gin.Context) (int64, bool) {
	bondID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Invalid bond id %q", c.Param("id")),
		})
		return 0, false
	}
	return bondID, true
}

func (h *Handlers) asOf(c *gin.Context) (time.Time, bool) {
	raw := c.Query("as_of")
	if raw == "" {
		return time.Now().UTC().Truncate(24 * time.Hour), true
	}

	asOf, err := time.Parse(dateLayout, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Invalid as_of date %q, expected YYYY-MM-DD", raw),
		})
		return time.Time{}, false
	}
	return asOf, true
}

// respondError maps application error types to HTTP statuses
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errors.TypeOf(err) {
	case errors.ErrorTypeNotFound:
		status = http.StatusNotFound
	case errors.ErrorTypeUnavailable:
		status = http.StatusUnprocessableEntity
	case errors.ErrorTypeInvalidArgument:
		status = http.StatusBadRequest
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
