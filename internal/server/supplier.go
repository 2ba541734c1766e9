package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallfirma/fibua/internal/supplier/domain"
)

func (s *Server) CreateSupplier(c *gin.Context) {
	var req domain.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.supplierSvc.Create(c.Request.Context(), req)
	if err != nil {
		if resp.Duplicates != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"duplicates": resp.Duplicates})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (s *Server) UpdateSupplier(c *gin.Context) {
	var req domain.UpdateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ID = c.Param("id")

	resp, err := s.supplierSvc.Update(c.Request.Context(), req)
	if err != nil {
		if resp.Duplicates != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"duplicates": resp.Duplicates})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListSuppliers(c *gin.Context) {
	suppliers, err := s.supplierSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"suppliers": suppliers})
}

func (s *Server) GetSupplier(c *gin.Context) {
	supplier, err := s.supplierSvc.GetByID(c.Request.Context(), domain.GetSupplierRequest{ID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"supplier": supplier})
}

func (s *Server) DeleteSupplier(c *gin.Context) {
	err := s.supplierSvc.Delete(c.Request.Context(), domain.GetSupplierRequest{ID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
