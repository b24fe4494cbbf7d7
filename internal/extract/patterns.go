package extract

import "regexp"

// Pattern rules are deliberately conservative: each category has its own
// independent rule and extraction never infers values that are not literally
// present in the text.
var (
	// local-part@handle. Disambiguation from emails happens in
	// extractPaymentIDs using the characters that follow the match.
	paymentIDPattern = regexp.MustCompile(`[a-zA-Z0-9._-]+@[a-zA-Z0-9]+`)

	// 11-18 contiguous digits, or card-style groups. 10-digit mobile
	// numbers are filtered out afterwards.
	bankAccountPattern = regexp.MustCompile(`\b(\d{11,18}|\d{4}[-\s]?\d{4}[-\s]?\d{4,10})\b`)

	// Indian mobile numbers in the formats scammers actually use:
	// 9876543210, 98765 43210, +91-9876543210, +91 98765 43210.
	phonePattern = regexp.MustCompile(
		`\+?91[-\s]?[0-9]\d{9}` +
			`|\+?91[-\s]?[6-9]\d{4}[-\s]?\d{5}` +
			`|\b[6-9]\d{4}[-\s]?\d{5}\b` +
			`|\b[6-9]\d{9}\b`)

	// Scheme-prefixed URLs, including the hxxp:// defanging convention.
	urlPattern = regexp.MustCompile(`(?:https?|hxxps?)://[^\s]+`)

	// "example dot com", "example[.]com", "bank-verify (dot) in".
	// RE2 has no lookbehind, so the char before the match is checked in
	// code to skip domains embedded in emails or hyphenated hosts.
	spelledURLPattern = regexp.MustCompile(
		`(?i)[a-z0-9][a-z0-9-]{2,}\s*(?:\(\s*dot\s*\)|\[\.\]|dot)\s*(?:com|in|org|net|co|info)(?:/[^\s]*)?`)
	bracketURLPattern = regexp.MustCompile(`[a-z0-9-]+\[\.\][a-z]+(?:/[^\s]*)?`)

	// Standard emails with a dotted domain.
	emailPattern = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)

	// UPI-style handle used in an email context ("emailed you from x@y").
	emailContextPattern = regexp.MustCompile(
		`(?i)(?:email(?:ed)?|e-mail)\s+(?:\w+\s+){0,4}?([a-zA-Z0-9._-]+@[a-zA-Z0-9]+)`)

	// Label-anchored reference identifiers.
	caseIDPattern = regexp.MustCompile(
		`(?i)\b(?:case|ref(?:erence)?|ticket|complaint|incident|claim|request)` +
			`(?:\s+(?:no\.?|number|id|reference))?` +
			`\s*(?:is\s+|:\s*|-\s*|\s)?` +
			`([A-Za-z0-9][A-Za-z0-9-]{2,18})`)
	policyNumberPattern = regexp.MustCompile(
		`(?i)\b(?:policy|pol)\s*(?:no\.?|number|#|:)?\s*[:\-]?\s*([A-Za-z0-9][A-Za-z0-9-]{3,19})\b`)
	orderNumberPattern = regexp.MustCompile(
		`(?i)\b(?:order|ord|transaction|txn|booking|invoice)\s*(?:id|no\.?|number|#|:)?\s*[:\-]?\s*([A-Za-z0-9][A-Za-z0-9-]{2,18})\b`)

	// 0XX(X)-XXXXXXX landlines.
	landlinePattern = regexp.MustCompile(`\b0\d{2,4}[-\s]?\d{6,8}\b`)

	// Six-digit Indian pincodes; sequential and repeated runs are filtered
	// out afterwards.
	pincodePattern = regexp.MustCompile(`\b[1-9]\d{5}\b`)

	digitsOnly = regexp.MustCompile(`\d`)
	separators = regexp.MustCompile(`[-\s]`)
)

// scamKeywords are generic cue words tracked for reporting. They never count
// toward the high-value entity threshold.
var scamKeywords = []string{
	// urgency
	"urgent", "immediately", "within 24 hours", "expires",
	"limited time", "hurry", "last chance",
	// threats
	"blocked", "suspended", "deactivated", "frozen", "locked",
	"arrest", "legal action", "court", "police", "penalty", "fine",
	// verification
	"verify", "confirm", "authenticate", "validate", "otp", "cvv",
	// financial
	"refund", "lottery", "winner", "cashback", "reward", "prize",
	// authority
	"rbi", "income tax", "gst", "customs", "courier",
	// call to action
	"click here", "call now", "share", "download", "install",
}

// paymentApps are tracked alongside keywords.
var paymentApps = []string{
	"paytm", "phonepe", "googlepay", "gpay", "bhim", "amazon pay",
	"whatsapp pay", "mobikwik", "freecharge", "airtel money",
}

// webmailDomains tips the payment-id vs email tie-break: a local@handle
// token on a known mail provider is an email even without a visible TLD.
var webmailDomains = map[string]bool{
	"gmail":      true,
	"yahoo":      true,
	"hotmail":    true,
	"outlook":    true,
	"rediffmail": true,
	"protonmail": true,
	"icloud":     true,
	"zoho":       true,
}
