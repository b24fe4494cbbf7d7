package intel

import "fmt"

// Payload is the serialized, list-shaped view of a bag handed to the
// reporting collaborator. Field names are part of the external contract and
// must not change between calls for the same session.
type Payload struct {
	PhoneNumbers   []string `json:"phoneNumbers"`
	PaymentIDs     []string `json:"paymentIds"`
	BankAccounts   []string `json:"bankAccounts"`
	PhishingLinks  []string `json:"phishingLinks"`
	EmailAddresses []string `json:"emailAddresses"`
	CaseIDs        []string `json:"caseIds"`
	PolicyNumbers  []string `json:"policyNumbers"`
	OrderNumbers   []string `json:"orderNumbers"`
}

// ToPayload converts the bag's high-interest categories into lists.
// Keywords, landlines and pincodes stay internal.
func (b *Bag) ToPayload() Payload {
	list := func(cat Category) []string {
		vs := b.Values(cat)
		if vs == nil {
			return []string{}
		}
		return vs
	}
	return Payload{
		PhoneNumbers:   list(Phone),
		PaymentIDs:     list(PaymentID),
		BankAccounts:   list(BankAccount),
		PhishingLinks:  list(URL),
		EmailAddresses: list(Email),
		CaseIDs:        list(CaseID),
		PolicyNumbers:  list(PolicyNumber),
		OrderNumbers:   list(OrderNumber),
	}
}

// PredictBankNames guesses the issuing bank from account-number length.
// Reporting colour only; never used for decisions.
func (b *Bag) PredictBankNames() []string {
	var out []string
	for _, acc := range b.Values(BankAccount) {
		clean := ""
		for _, r := range acc {
			if r >= '0' && r <= '9' {
				clean += string(r)
			}
		}
		name := "Unknown Bank"
		switch len(clean) {
		case 11:
			name = "SBI (State Bank of India)"
		case 12:
			name = "ICICI Bank"
		case 13:
			name = "Canara Bank"
		case 14:
			name = "HDFC / Kotak / Bank of Baroda"
		case 15:
			name = "Axis / Union Bank"
		case 16:
			name = "Punjab National Bank (PNB)"
		}
		out = append(out, fmt.Sprintf("%s (%s)", acc, name))
	}
	return out
}
