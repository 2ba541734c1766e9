package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallfirma/fibua/internal/organization/domain"
)

func (s *Server) CreateOrganization(c *gin.Context) {
	var req domain.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	org, err := s.organizationSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"organization": org})
}

func (s *Server) GetOrganization(c *gin.Context) {
	org, err := s.organizationSvc.GetByID(c.Request.Context(), domain.GetOrganizationRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"organization": org})
}

func (s *Server) ListOrganizations(c *gin.Context) {
	orgs, err := s.organizationSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"organizations": orgs})
}
