package director

// ScamCategory is the detected scam family driving persona and phase
// selection.
type ScamCategory string

const (
	CategoryBankKYC       ScamCategory = "bank_kyc"
	CategoryUPIScam       ScamCategory = "upi_scam"
	CategoryCreditCard    ScamCategory = "credit_card"
	CategoryInvestment    ScamCategory = "investment"
	CategoryPoliceLegal   ScamCategory = "police_legal"
	CategoryTaxRefund     ScamCategory = "tax_refund"
	CategoryGovtScheme    ScamCategory = "govt_scheme"
	CategoryJobOffer      ScamCategory = "job_offer"
	CategoryPrizeLottery  ScamCategory = "prize_lottery"
	CategoryBillPayment   ScamCategory = "bill_payment"
	CategoryRomance       ScamCategory = "romance"
	CategoryDelivery      ScamCategory = "delivery"
	CategoryUrgencyThreat ScamCategory = "urgency_threat"
	CategoryUnknown       ScamCategory = "unknown"
)

var knownCategories = map[ScamCategory]bool{
	CategoryBankKYC: true, CategoryUPIScam: true, CategoryCreditCard: true,
	CategoryInvestment: true, CategoryPoliceLegal: true, CategoryTaxRefund: true,
	CategoryGovtScheme: true, CategoryJobOffer: true, CategoryPrizeLottery: true,
	CategoryBillPayment: true, CategoryRomance: true, CategoryDelivery: true,
	CategoryUrgencyThreat: true, CategoryUnknown: true,
}

// ParseCategory maps free-form input to a known category; anything
// unrecognized falls back to unknown rather than failing.
func ParseCategory(s string) ScamCategory {
	c := ScamCategory(s)
	if knownCategories[c] {
		return c
	}
	return CategoryUnknown
}
