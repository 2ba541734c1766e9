package tax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetermine_DecisionTable(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	tests := []struct {
		name string
		in   Input
		want Result
	}{
		{
			name: "small business wins over everything",
			in:   Input{SellerIsSmallBusiness: true, BuyerCountry: "DE", BuyerCountryInEU: true, BuyerUID: "DE123456789"},
			want: Result{Case: CaseSmallBusiness, RatePercent: 0, Code: 16, Account: AccountSmallBusiness, IsSmallBusinessExempt: true},
		},
		{
			name: "third country buyer is an export",
			in:   Input{BuyerCountry: "US"},
			want: Result{Case: CaseExport, RatePercent: 0, Code: 10, Account: AccountExport, IsExport: true},
		},
		{
			name: "unknown country code treated as outside the union",
			in:   Input{BuyerCountry: "XX"},
			want: Result{Case: CaseExport, RatePercent: 0, Code: 10, Account: AccountExport, IsExport: true},
		},
		{
			name: "EU buyer with valid UID is an intra-EU sale",
			in:   Input{BuyerCountry: "DE", BuyerCountryInEU: true, BuyerUID: "DE123456789", IsGoodsSupply: true},
			want: Result{Case: CaseIntraEUSale, RatePercent: 0, Code: 11, Account: AccountIntraEUSale, IsIntraEUSale: true},
		},
		{
			name: "EU services buyer without UID reverse charges",
			in:   Input{BuyerCountry: "DE", BuyerCountryInEU: true, IsGoodsSupply: false},
			want: Result{Case: CaseReverseCharge, RatePercent: 0, Code: 19, Account: AccountReverseCharge, IsReverseCharge: true},
		},
		{
			name: "EU goods buyer without UID falls back to domestic",
			in:   Input{BuyerCountry: "DE", BuyerCountryInEU: true, IsGoodsSupply: true},
			want: Result{Case: CaseDomestic, RatePercent: 20, Code: 1, Account: AccountDomesticStandard},
		},
		{
			name: "EU goods buyer with malformed UID falls back to domestic",
			in:   Input{BuyerCountry: "DE", BuyerCountryInEU: true, BuyerUID: "DE1", IsGoodsSupply: true},
			want: Result{Case: CaseDomestic, RatePercent: 20, Code: 1, Account: AccountDomesticStandard},
		},
		{
			name: "home country buyer is domestic at the standard rate",
			in:   Input{BuyerCountry: "AT", BuyerCountryInEU: true},
			want: Result{Case: CaseDomestic, RatePercent: 20, Code: 1, Account: AccountDomesticStandard},
		},
		{
			name: "domestic reduced rate",
			in:   Input{BuyerCountry: "AT", BuyerCountryInEU: true, ReducedRate: true},
			want: Result{Case: CaseDomestic, RatePercent: 10, Code: 2, Account: AccountDomesticReduced},
		},
		{
			name: "empty buyer country is domestic",
			in:   Input{},
			want: Result{Case: CaseDomestic, RatePercent: 20, Code: 1, Account: AccountDomesticStandard},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, engine.Determine(tt.in))
		})
	}
}

func TestDetermine_Deterministic(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	in := Input{BuyerCountry: "DE", BuyerCountryInEU: true, BuyerUID: "DE123456789"}

	first := engine.Determine(in)
	second := engine.Determine(in)
	assert.Equal(t, first, second)
}

func TestDetermine_ConfiguredRates(t *testing.T) {
	engine := NewEngine(Config{HomeCountry: "DE", StandardRate: 19, ReducedRate: 7})

	domestic := engine.Determine(Input{BuyerCountry: "DE", BuyerCountryInEU: true})
	require.Equal(t, CaseDomestic, domestic.Case)
	assert.Equal(t, 19.0, domestic.RatePercent)

	// AT is now a foreign EU country for this seller
	foreign := engine.Determine(Input{BuyerCountry: "AT", BuyerCountryInEU: true, BuyerUID: "ATU1234567"})
	assert.Equal(t, CaseIntraEUSale, foreign.Case)
}
