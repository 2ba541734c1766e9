package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallfirma/fibua/internal/invoice/domain"
)

func (s *Server) CreateInvoice(c *gin.Context) {
	var req domain.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), req)
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

func (s *Server) ListInvoices(c *gin.Context) {
	req := domain.ListInvoiceRequest{
		PageToken: c.Query("page_token"),
		Status:    domain.Status(strings.ToUpper(c.Query("status"))),
		ClientID:  c.Query("client_id"),
	}
	if size, ok := queryInt(c, "page_size"); ok {
		req.PageSize = size
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetInvoice(c *gin.Context) {
	inv, err := s.invoiceSvc.GetByID(c.Request.Context(), domain.GetInvoiceRequest{ID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	err := s.invoiceSvc.Delete(c.Request.Context(), domain.GetInvoiceRequest{ID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) CreateDeliveryNote(c *gin.Context) {
	// The body is optional; an empty request issues a bare note.
	var req domain.CreateDeliveryNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.InvoiceID = c.Param("id")

	note, err := s.invoiceSvc.CreateDeliveryNote(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"delivery_note": note})
}

func (s *Server) FinalizeInvoice(c *gin.Context) {
	inv, err := s.invoiceSvc.Finalize(c.Request.Context(), domain.GetInvoiceRequest{ID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

func (s *Server) MarkInvoicePaid(c *gin.Context) {
	inv, err := s.invoiceSvc.MarkPaid(c.Request.Context(), domain.GetInvoiceRequest{ID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

func (s *Server) CancelInvoice(c *gin.Context) {
	inv, err := s.invoiceSvc.Cancel(c.Request.Context(), domain.GetInvoiceRequest{ID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": inv})
}

func (s *Server) ListInvoiceLogs(c *gin.Context) {
	logs, err := s.invoiceSvc.Logs(c.Request.Context(), domain.GetInvoiceRequest{ID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func (s *Server) PreviewInvoiceTax(c *gin.Context) {
	var req domain.PreviewTaxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.invoiceSvc.PreviewTax(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tax": result})
}

func queryInt(c *gin.Context, key string) (int, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
