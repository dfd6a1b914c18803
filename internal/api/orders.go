package api

import (
	"net/http"

	"supplychain/internal/models"
	"supplychain/internal/orders"

	"github.com/gin-gonic/gin"
)

// ListOrders returns orders narrowed by the optional search, status and
// customer query parameters.
func (s *Server) ListOrders(c *gin.Context) {
	var criteria orders.Criteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := criteria.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	list, err := s.deps.Orders.List(c.Request.Context())
	if err != nil {
		s.fail(c, "Order", err)
		return
	}
	c.JSON(http.StatusOK, orders.Filter(list, criteria))
}

func (s *Server) GetOrder(c *gin.Context) {
	order, err := s.deps.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, "Order", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) CreateOrder(c *gin.Context) {
	var order models.Order
	if !s.bind(c, &order) {
		return
	}
	orders.ApplyDefaults(&order, s.now())

	if err := s.deps.Orders.Create(c.Request.Context(), &order); err != nil {
		s.fail(c, "Order", err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// UpdateOrder replaces an order. Any status may be set.
func (s *Server) UpdateOrder(c *gin.Context) {
	var order models.Order
	if !s.bind(c, &order) {
		return
	}
	orders.ApplyDefaults(&order, s.now())

	if err := s.deps.Orders.Update(c.Request.Context(), c.Param("id"), &order); err != nil {
		s.fail(c, "Order", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) DeleteOrder(c *gin.Context) {
	if err := s.deps.Orders.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, "Order", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DashboardSummary returns order counts and revenue
func (s *Server) DashboardSummary(c *gin.Context) {
	summary, err := s.deps.Reports.DashboardSummary(c.Request.Context())
	if err != nil {
		s.fail(c, "Summary", err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
