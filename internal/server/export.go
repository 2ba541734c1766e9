package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallfirma/fibua/internal/export"
)

// RunBookkeepingExport streams the posting CSV for the selected window. Dates
// are inclusive-from, exclusive-to, in YYYY-MM-DD.
func (s *Server) RunBookkeepingExport(c *gin.Context) {
	var req export.Request
	var err error
	if req.From, err = queryDate(c, "from"); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if req.To, err = queryDate(c, "to"); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.IncludePaid = c.Query("include_paid") == "true"

	batch, err := s.exportSvc.Run(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "buchungen-"+batch.ID+".csv"))
	c.Header("X-Export-Batch", batch.ID)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", batch.CSV)
}

func queryDate(c *gin.Context, key string) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", raw)
}
