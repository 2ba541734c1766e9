package tax

import (
	"fmt"
	"strings"
	"unicode"
)

// ValidationError is a user-facing diagnostic. Non-fatal: the caller decides
// whether the invoice may still be finalized.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	ErrCodeMissingBuyerUID   = "missing_buyer_uid"
	ErrCodeMalformedBuyerUID = "malformed_buyer_uid"
)

// minimum shape of an EU VAT identifier: country prefix plus national part
const uidMinLength = 8

// Validate checks the resolved case against the buyer's VAT identifier
// before an invoice is finalized. Intra-EU and reverse-charge treatments
// require a present, syntactically valid UID; nothing is corrected silently.
func Validate(result Result, buyerUID string) []ValidationError {
	if result.Case != CaseIntraEUSale && result.Case != CaseReverseCharge {
		return nil
	}

	uid := strings.TrimSpace(buyerUID)
	if uid == "" {
		return []ValidationError{{
			Field:   "buyer_uid",
			Code:    ErrCodeMissingBuyerUID,
			Message: fmt.Sprintf("buyer VAT identifier is required for %s treatment (Art 138/196 VAT Directive)", result.Case),
		}}
	}
	if !uidWellFormed(uid) {
		return []ValidationError{{
			Field:   "buyer_uid",
			Code:    ErrCodeMalformedBuyerUID,
			Message: "buyer VAT identifier must be at least 8 characters and start with a two-letter country prefix",
		}}
	}
	return nil
}

// uidWellFormed is the syntactic check shared by classification and
// validation: minimum length and a two-letter country prefix.
func uidWellFormed(uid string) bool {
	uid = strings.TrimSpace(uid)
	if len(uid) < uidMinLength {
		return false
	}
	for _, r := range uid[:2] {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
