package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallfirma/fibua/internal/client/domain"
)

func (s *Server) CreateClient(c *gin.Context) {
	var req domain.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.clientSvc.Create(c.Request.Context(), req)
	if err != nil {
		// A blocked duplicate still carries the matches so the caller can
		// show them next to the confirmation prompt.
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

func (s *Server) UpdateClient(c *gin.Context) {
	var req domain.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ID = c.Param("id")

	resp, err := s.clientSvc.Update(c.Request.Context(), req)
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

func (s *Server) ListClients(c *gin.Context) {
	req := domain.ListClientRequest{
		PageToken: c.Query("page_token"),
		Name:      c.Query("name"),
	}
	if size, ok := queryInt(c, "page_size"); ok {
		req.PageSize = size
	}

	resp, err := s.clientSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetClient(c *gin.Context) {
	client, err := s.clientSvc.GetByID(c.Request.Context(), domain.GetClientRequest{ID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"client": client})
}

func (s *Server) DeleteClient(c *gin.Context) {
	err := s.clientSvc.Delete(c.Request.Context(), domain.GetClientRequest{ID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) CheckClientDuplicates(c *gin.Context) {
	var req domain.CheckDuplicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.clientSvc.CheckDuplicates(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
