package api

import (
	"net/http"
	"strconv"
	"time"

	"registration-service/internal/models"
	"registration-service/internal/regerr"
	"registration-service/internal/service"
	"registration-service/internal/util"
	"registration-service/internal/vault"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	registrations *service.RegistrationService
}

// NewHandler creates a new HTTP handler
func NewHandler(registrations *service.RegistrationService) *Handler {
	return &Handler{registrations: registrations}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/registrations", h.register)
		v1.POST("/registrations/check-duplicate", h.checkDuplicate)
		v1.GET("/distances/:id/capacity", h.capacityStatus)
		v1.GET("/orders/:id", h.getOrder)
		v1.POST("/orders/:reference/paid", h.markOrderPaid)
		v1.POST("/tickets/:id/cancel", h.cancelTicket)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// register handles a registration submission
func (h *Handler) register(c *gin.Context) {
	var req models.RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	result, err := h.registrations.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// checkDuplicate reports whether a participant is already registered
func (h *Handler) checkDuplicate(c *gin.Context) {
	var req models.CheckDuplicateRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	registered, ticket, err := h.registrations.CheckDuplicate(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"isRegistered": registered}
	if ticket != nil {
		resp["details"] = gin.H{
			"first_name": ticket.FirstName,
			"last_name":  ticket.LastName,
			"email":      vault.Mask(ticket.Email),
		}
	}
	c.JSON(http.StatusOK, resp)
}

// capacityStatus reports a distance's capacity
func (h *Handler) capacityStatus(c *gin.Context) {
	distanceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid distance ID"})
		return
	}

	status, err := h.registrations.CapacityStatus(c.Request.Context(), distanceID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Distance not found",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, status)
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, tickets, err := h.registrations.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Order not found",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order":   order,
		"tickets": tickets,
	})
}

// markOrderPaid handles payment provider webhooks
func (h *Handler) markOrderPaid(c *gin.Context) {
	order, err := h.registrations.MarkOrderPaid(c.Request.Context(), c.Param("reference"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// cancelTicket cancels a ticket and releases its slot and stock
func (h *Handler) cancelTicket(c *gin.Context) {
	ticketID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket ID"})
		return
	}

	if err := h.registrations.CancelTicket(c.Request.Context(), ticketID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// respondError maps error kinds to HTTP statuses. The originating message is
// surfaced verbatim so the client can react (e.g. show "sold out").
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch regerr.KindOf(err) {
	case regerr.KindValidation:
		status = http.StatusBadRequest
	case regerr.KindConflict:
		status = http.StatusConflict
	case regerr.KindDependency:
		status = http.StatusBadGateway
	}

	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  regerr.CodeOf(err),
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
