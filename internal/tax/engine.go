// Package tax classifies a sale into its VAT case and derives the posting
// parameters (legacy tax code, revenue account, percentage) the bookkeeping
// export expects. Classification is pure and total: every well-formed input
// yields a result, diagnostics are left to Validate.
package tax

// Case is the legally distinct VAT treatment of one transaction.
type Case string

const (
	CaseDomestic      Case = "DOMESTIC"
	CaseExport        Case = "EXPORT"
	CaseIntraEUSale   Case = "INTRA_EU_SALE"
	CaseReverseCharge Case = "REVERSE_CHARGE"
	CaseSmallBusiness Case = "SMALL_BUSINESS_EXEMPTION"

	// CaseTriangular is never derived here; it is stamped when the user
	// explicitly marks a chain transaction. Carried so downstream code and
	// the export share one case vocabulary.
	CaseTriangular Case = "TRIANGULAR"
)

// Legacy numeric tax codes of the bookkeeping export format. Stable once
// written into invoices; do not renumber.
const (
	CodeDomesticStandard = 1
	CodeDomesticReduced  = 2
	CodeExport           = 10
	CodeIntraEUSale      = 11
	CodeTriangular       = 12
	CodeSmallBusiness    = 16
	CodeReverseCharge    = 19
)

// Revenue ledger accounts per case. Fixed within the engine; the chart of
// accounts maps them onto its own numbering at export time if it differs.
const (
	AccountDomesticStandard = "4000"
	AccountDomesticReduced  = "4001"
	AccountExport           = "4100"
	AccountIntraEUSale      = "4110"
	AccountReverseCharge    = "4120"
	AccountSmallBusiness    = "4130"
	AccountTriangular       = "4140"
)

// Input carries the seller/buyer/transaction facts of one sale.
type Input struct {
	SellerIsSmallBusiness bool
	BuyerCountry          string
	BuyerCountryInEU      bool
	BuyerUID              string
	IsGoodsSupply         bool
	ReducedRate           bool
}

// Result is the classification outcome stamped onto an invoice.
type Result struct {
	Case        Case    `json:"case"`
	RatePercent float64 `json:"rate_percent"`
	Code        int     `json:"code"`
	Account     string  `json:"account"`

	IsReverseCharge       bool `json:"is_reverse_charge"`
	IsExport              bool `json:"is_export"`
	IsIntraEUSale         bool `json:"is_intra_eu_sale"`
	IsSmallBusinessExempt bool `json:"is_small_business_exempt"`
}

// Config holds the seller-side facts: home country and the two VAT rates.
// Static configuration, not computed here.
type Config struct {
	HomeCountry  string
	StandardRate float64
	ReducedRate  float64
}

func DefaultConfig() Config {
	return Config{HomeCountry: "AT", StandardRate: 20, ReducedRate: 10}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.HomeCountry == "" {
		c.HomeCountry = d.HomeCountry
	}
	if c.StandardRate <= 0 {
		c.StandardRate = d.StandardRate
	}
	if c.ReducedRate <= 0 {
		c.ReducedRate = d.ReducedRate
	}
	return c
}

// Engine evaluates the VAT decision table. Stateless after construction and
// safe for concurrent use.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg.withDefaults()}
}

// Determine resolves the VAT case for a sale. Priority order, first match
// wins. Unknown buyer country codes count as outside the union.
func (e *Engine) Determine(in Input) Result {
	if in.SellerIsSmallBusiness {
		return Result{
			Case:                  CaseSmallBusiness,
			Code:                  CodeSmallBusiness,
			Account:               AccountSmallBusiness,
			IsSmallBusinessExempt: true,
		}
	}

	crossBorder := in.BuyerCountry != "" && in.BuyerCountry != e.cfg.HomeCountry

	if crossBorder && !in.BuyerCountryInEU {
		return Result{
			Case:     CaseExport,
			Code:     CodeExport,
			Account:  AccountExport,
			IsExport: true,
		}
	}

	if crossBorder && in.BuyerCountryInEU {
		if uidWellFormed(in.BuyerUID) {
			return Result{
				Case:          CaseIntraEUSale,
				Code:          CodeIntraEUSale,
				Account:       AccountIntraEUSale,
				IsIntraEUSale: true,
			}
		}
		// Cross-border services without a buyer UID default to reverse
		// charge under the destination principle. Goods cannot be
		// zero-rated without a verified UID and fall through to domestic
		// treatment instead.
		if !in.IsGoodsSupply {
			return Result{
				Case:            CaseReverseCharge,
				Code:            CodeReverseCharge,
				Account:         AccountReverseCharge,
				IsReverseCharge: true,
			}
		}
	}

	return e.domestic(in.ReducedRate)
}

func (e *Engine) domestic(reduced bool) Result {
	if reduced {
		return Result{
			Case:        CaseDomestic,
			RatePercent: e.cfg.ReducedRate,
			Code:        CodeDomesticReduced,
			Account:     AccountDomesticReduced,
		}
	}
	return Result{
		Case:        CaseDomestic,
		RatePercent: e.cfg.StandardRate,
		Code:        CodeDomesticStandard,
		Account:     AccountDomesticStandard,
	}
}
