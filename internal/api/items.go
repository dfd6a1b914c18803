package api

import (
	"net/http"
	"strconv"

	"supplychain/internal/inventory"
	"supplychain/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ItemResponse is an item with its derived stock status. The status is
// computed on every response and never stored.
type ItemResponse struct {
	models.Item
	Status inventory.StockStatus `json:"status"`
}

func itemResponse(item models.Item) ItemResponse {
	return ItemResponse{Item: item, Status: inventory.Classify(item)}
}

func itemResponses(items []models.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, itemResponse(item))
	}
	return out
}

// ListItems returns every item, narrowed by the optional search, category and
// status query parameters.
func (s *Server) ListItems(c *gin.Context) {
	var criteria inventory.Criteria
	if err := c.ShouldBindQuery(&criteria); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status, err := inventory.ParseStatus(string(criteria.Status))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	criteria.Status = status

	items, err := s.deps.Items.List(c.Request.Context())
	if err != nil {
		s.fail(c, "Item", err)
		return
	}
	c.JSON(http.StatusOK, itemResponses(inventory.Filter(items, criteria)))
}

func (s *Server) GetItem(c *gin.Context) {
	item, err := s.deps.Items.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, "Item", err)
		return
	}
	c.JSON(http.StatusOK, itemResponse(*item))
}

func (s *Server) CreateItem(c *gin.Context) {
	var item models.Item
	if !s.bind(c, &item) {
		return
	}
	if err := s.deps.Items.Create(c.Request.Context(), &item); err != nil {
		s.fail(c, "Item", err)
		return
	}
	s.publishInventory(c.Request.Context())
	c.JSON(http.StatusCreated, itemResponse(item))
}

func (s *Server) UpdateItem(c *gin.Context) {
	var item models.Item
	if !s.bind(c, &item) {
		return
	}
	if err := s.deps.Items.Update(c.Request.Context(), c.Param("id"), &item); err != nil {
		s.fail(c, "Item", err)
		return
	}
	s.publishInventory(c.Request.Context())
	c.JSON(http.StatusOK, itemResponse(item))
}

func (s *Server) DeleteItem(c *gin.Context) {
	if err := s.deps.Items.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, "Item", err)
		return
	}
	s.publishInventory(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// AdjustItem receives or issues stock. A result below zero is rejected.
func (s *Server) AdjustItem(c *gin.Context) {
	var adj models.StockAdjustment
	if !s.bind(c, &adj) {
		return
	}
	item, err := s.deps.Items.Adjust(c.Request.Context(), c.Param("id"), adj.Delta)
	if err != nil {
		s.fail(c, "Item", err)
		return
	}
	s.logger.Info("stock adjusted",
		zap.String("item", item.ID),
		zap.Int("delta", adj.Delta),
		zap.Int("quantity", item.Quantity),
		zap.String("reason", adj.Reason),
	)
	s.publishInventory(c.Request.Context())
	c.JSON(http.StatusOK, itemResponse(*item))
}

// LowStock returns items at or below ?threshold=N. Without a threshold it
// returns every item whose derived status is not in stock.
func (s *Server) LowStock(c *gin.Context) {
	raw, ok := c.GetQuery("threshold")
	if !ok || raw == "" {
		items, err := s.deps.Items.List(c.Request.Context())
		if err != nil {
			s.fail(c, "Item", err)
			return
		}
		c.JSON(http.StatusOK, itemResponses(inventory.Alerts(items)))
		return
	}

	threshold, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "threshold must be an integer"})
		return
	}
	items, err := s.deps.Items.LowStock(c.Request.Context(), threshold)
	if err != nil {
		s.fail(c, "Item", err)
		return
	}
	c.JSON(http.StatusOK, itemResponses(items))
}

// StockOverview aggregates the whole inventory for the overview cards
func (s *Server) StockOverview(c *gin.Context) {
	items, err := s.deps.Items.List(c.Request.Context())
	if err != nil {
		s.fail(c, "Item", err)
		return
	}
	summary := inventory.Summarize(items)
	if s.deps.Monitor != nil {
		s.deps.Monitor.ObserveInventory(summary)
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) Categories(c *gin.Context) {
	items, err := s.deps.Items.List(c.Request.Context())
	if err != nil {
		s.fail(c, "Item", err)
		return
	}
	c.JSON(http.StatusOK, inventory.Categories(items))
}

// Restock suggests reorder quantities for every item that needs attention
func (s *Server) Restock(c *gin.Context) {
	items, err := s.deps.Items.List(c.Request.Context())
	if err != nil {
		s.fail(c, "Item", err)
		return
	}
	advice, err := s.deps.Advisor.Advise(c.Request.Context(), items)
	if err != nil {
		s.fail(c, "Restock advice", err)
		return
	}
	c.JSON(http.StatusOK, advice)
}
