package api

import (
	"net/http"

	"supplychain/internal/models"

	"github.com/gin-gonic/gin"
)

func (s *Server) ListCustomers(c *gin.Context) {
	list, err := s.deps.Customers.List(c.Request.Context())
	if err != nil {
		s.fail(c, "Customer", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) GetCustomer(c *gin.Context) {
	customer, err := s.deps.Customers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, "Customer", err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (s *Server) CreateCustomer(c *gin.Context) {
	var customer models.Customer
	if !s.bind(c, &customer) {
		return
	}
	if err := s.deps.Customers.Create(c.Request.Context(), &customer); err != nil {
		s.fail(c, "Customer", err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (s *Server) UpdateCustomer(c *gin.Context) {
	var customer models.Customer
	if !s.bind(c, &customer) {
		return
	}
	if err := s.deps.Customers.Update(c.Request.Context(), c.Param("id"), &customer); err != nil {
		s.fail(c, "Customer", err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (s *Server) DeleteCustomer(c *gin.Context) {
	if err := s.deps.Customers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, "Customer", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) ListSuppliers(c *gin.Context) {
	list, err := s.deps.Suppliers.List(c.Request.Context())
	if err != nil {
		s.fail(c, "Supplier", err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) GetSupplier(c *gin.Context) {
	supplier, err := s.deps.Suppliers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, "Supplier", err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func (s *Server) CreateSupplier(c *gin.Context) {
	var supplier models.Supplier
	if !s.bind(c, &supplier) {
		return
	}
	if err := s.deps.Suppliers.Create(c.Request.Context(), &supplier); err != nil {
		s.fail(c, "Supplier", err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

func (s *Server) UpdateSupplier(c *gin.Context) {
	var supplier models.Supplier
	if !s.bind(c, &supplier) {
		return
	}
	if err := s.deps.Suppliers.Update(c.Request.Context(), c.Param("id"), &supplier); err != nil {
		s.fail(c, "Supplier", err)
		return
	}
	c.JSON(http.StatusOK, supplier)
}

func (s *Server) DeleteSupplier(c *gin.Context) {
	if err := s.deps.Suppliers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, "Supplier", err)
		return
	}
	c.Status(http.StatusNoContent)
}
