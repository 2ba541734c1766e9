package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallfirma/fibua/internal/product/domain"
)

func (s *Server) CreateProduct(c *gin.Context) {
	var req domain.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.productSvc.Create(c.Request.Context(), req)
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

func (s *Server) UpdateProduct(c *gin.Context) {
	var req domain.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ID = c.Param("id")

	resp, err := s.productSvc.Update(c.Request.Context(), req)
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

func (s *Server) ListProducts(c *gin.Context) {
	products, err := s.productSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (s *Server) GetProduct(c *gin.Context) {
	product, err := s.productSvc.GetByID(c.Request.Context(), domain.GetProductRequest{ID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (s *Server) DeleteProduct(c *gin.Context) {
	err := s.productSvc.Delete(c.Request.Context(), domain.GetProductRequest{ID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
