package extract

import "strings"

// Request names a kind of personal data the counterparty is asking the
// victim for.
type Request string

const (
	ReqOTP         Request = "otp"
	ReqAadhaar     Request = "aadhaar"
	ReqPAN         Request = "pan"
	ReqBankAccount Request = "bank_account"
	ReqPaymentID   Request = "payment_id"
	ReqCVV         Request = "cvv"
	ReqPIN         Request = "pin"
	ReqPassword    Request = "password"
)

// NeverProvide marks the requests whose values must never be supplied, only
// redirected.
var NeverProvide = map[Request]bool{
	ReqOTP:      true,
	ReqCVV:      true,
	ReqPIN:      true,
	ReqPassword: true,
}

// requestCues maps each request kind to the phrases that signal it. Order is
// fixed so detection output is reproducible.
var requestCues = []struct {
	req  Request
	cues []string
}{
	{ReqOTP, []string{"otp", "one time password", "verification code", "code bhejo", "code send"}},
	{ReqAadhaar, []string{"aadhaar", "aadhar", "uid number"}},
	{ReqPAN, []string{"pan card", "pan number", "permanent account number"}},
	{ReqBankAccount, []string{"account number", "bank account", "acc number", "account no"}},
	{ReqPaymentID, []string{"upi id", "gpay id", "phonepe id", "paytm id", "send to upi"}},
	{ReqCVV, []string{"cvv", "card verification", "3 digit", "back of card"}},
	{ReqPIN, []string{"atm pin", "debit pin", "net banking pin", "mpin"}},
	{ReqPassword, []string{"password", "login password", "net banking password"}},
}

// DetectRequests reports which personal-data categories the message asks the
// victim for. Cues are matched against both the raw lowercased text and the
// normalized (de-leeted) copy, so "0TP" and "p1n" still register.
func DetectRequests(text string) []Request {
	text = sanitize(text)
	if text == "" {
		return nil
	}
	haystacks := []string{strings.ToLower(text), Normalize(text)}
	var out []Request
	for _, rc := range requestCues {
		found := false
		for _, h := range haystacks {
			for _, cue := range rc.cues {
				if strings.Contains(h, cue) {
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if found {
			out = append(out, rc.req)
		}
	}
	return out
}

// RequestedNeverProvide reports whether any detected request is one whose
// value must never be supplied (OTP, PIN, CVV, password).
func RequestedNeverProvide(reqs []Request) bool {
	for _, r := range reqs {
		if NeverProvide[r] {
			return true
		}
	}
	return false
}
