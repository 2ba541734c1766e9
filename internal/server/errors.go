package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	clientdomain "github.com/smallfirma/fibua/internal/client/domain"
	"github.com/smallfirma/fibua/internal/docnumber"
	"github.com/smallfirma/fibua/internal/export"
	invoicedomain "github.com/smallfirma/fibua/internal/invoice/domain"
	organizationdomain "github.com/smallfirma/fibua/internal/organization/domain"
	productdomain "github.com/smallfirma/fibua/internal/product/domain"
	supplierdomain "github.com/smallfirma/fibua/internal/supplier/domain"
	"github.com/smallfirma/fibua/internal/tax"
	"github.com/smallfirma/fibua/internal/tenancy"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string                `json:"type"`
	Message string                `json:"message"`
	Errors  []tax.ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrMissingOrg     = errors.New("missing_org")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// mapError folds domain errors onto HTTP statuses. Tenant violations come
// back as a generic forbidden response; they never disclose whether the
// record exists in another organization.
func mapError(err error) (int, errorPayload) {
	var validation *invoicedomain.ValidationFailed
	if errors.As(err, &validation) {
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "validation_failed",
			Message: "the document cannot be finalized",
			Errors:  validation.Errors,
		}
	}

	switch {
	case errors.Is(err, tenancy.ErrTenantNotSet),
		errors.Is(err, ErrMissingOrg):
		return http.StatusForbidden, errorPayload{
			Type:    "missing_org",
			Message: "no organization selected",
		}

	case errors.Is(err, tenancy.ErrCrossTenantWrite),
		errors.Is(err, tenancy.ErrTenantReassignmentDenied):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "not permitted for your organization",
		}

	case errors.Is(err, clientdomain.ErrDuplicateExists),
		errors.Is(err, supplierdomain.ErrDuplicateExists),
		errors.Is(err, productdomain.ErrDuplicateExists),
		errors.Is(err, invoicedomain.ErrDuplicateExists):
		return http.StatusConflict, errorPayload{
			Type:    "duplicate_exists",
			Message: "a matching record already exists",
		}

	case errors.Is(err, clientdomain.ErrDuplicateSuspected),
		errors.Is(err, supplierdomain.ErrDuplicateSuspected),
		errors.Is(err, productdomain.ErrDuplicateSuspected),
		errors.Is(err, invoicedomain.ErrDuplicateSuspected):
		return http.StatusConflict, errorPayload{
			Type:    "duplicate_suspected",
			Message: "a similar record already exists; confirm to proceed",
		}

	case errors.Is(err, organizationdomain.ErrNotFound),
		errors.Is(err, clientdomain.ErrNotFound),
		errors.Is(err, supplierdomain.ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}

	case errors.Is(err, invoicedomain.ErrInvalidStatus):
		return http.StatusConflict, errorPayload{
			Type:    "invalid_status_transition",
			Message: "the document state does not allow this operation",
		}

	case errors.Is(err, export.ErrNothingToExport):
		return http.StatusNotFound, errorPayload{
			Type:    "nothing_to_export",
			Message: "no finalized documents in the selected window",
		}

	case errors.Is(err, organizationdomain.ErrInvalidName),
		errors.Is(err, organizationdomain.ErrInvalidCountry),
		errors.Is(err, organizationdomain.ErrInvalidID),
		errors.Is(err, clientdomain.ErrInvalidName),
		errors.Is(err, clientdomain.ErrInvalidID),
		errors.Is(err, supplierdomain.ErrInvalidName),
		errors.Is(err, supplierdomain.ErrInvalidID),
		errors.Is(err, productdomain.ErrInvalidName),
		errors.Is(err, productdomain.ErrInvalidPrice),
		errors.Is(err, productdomain.ErrInvalidID),
		errors.Is(err, invoicedomain.ErrInvalidID),
		errors.Is(err, invoicedomain.ErrClientRequired),
		errors.Is(err, invoicedomain.ErrNoItems),
		errors.Is(err, invoicedomain.ErrInvalidItem),
		errors.Is(err, docnumber.ErrUnknownKind),
		errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: err.Error(),
		}
	}

	return http.StatusInternalServerError, errorPayload{
		Type:    "internal_error",
		Message: "internal error",
	}
}
