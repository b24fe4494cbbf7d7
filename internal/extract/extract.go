package extract

import (
	"regexp"
	"strings"

	"github.com/vigilhq/mongoose/internal/intel"
)

// Extract runs every category rule over one message and returns the bag of
// identifiers found. It is pure: no state, no side effects, and malformed
// input yields an empty bag rather than an error.
//
// When a token could satisfy more than one rule the first successful match
// in the fixed category precedence order wins; later rules skip values whose
// digit form has already been claimed.
func Extract(text string) *intel.Bag {
	bag := intel.NewBag()
	text = sanitize(text)
	if text == "" {
		return bag
	}

	claimed := make(map[string]bool)
	claim := func(s string) {
		if d := digitString(s); d != "" {
			claimed[d] = true
		}
	}
	isClaimed := func(s string) bool {
		d := digitString(s)
		return d != "" && claimed[d]
	}

	// Bare local@handle tokens in an explicit email context classify as
	// emails, so the payment-id rule must not claim them first.
	contextEmails := emailContextHandles(text)

	for _, phone := range extractPhones(text) {
		bag.Add(intel.Phone, phone)
		claim(phone)
	}
	for _, id := range extractPaymentIDs(text) {
		if contextEmails[id] {
			continue
		}
		bag.Add(intel.PaymentID, id)
	}
	for _, acc := range extractBankAccounts(text) {
		if isClaimed(acc) {
			continue
		}
		bag.Add(intel.BankAccount, acc)
		claim(acc)
	}
	for _, u := range extractURLs(text) {
		bag.Add(intel.URL, u)
	}
	for _, e := range extractEmails(text) {
		bag.Add(intel.Email, e)
	}
	for _, id := range extractLabeledIDs(text, caseIDPattern, true) {
		bag.Add(intel.CaseID, id)
	}
	for _, id := range extractLabeledIDs(text, policyNumberPattern, false) {
		bag.Add(intel.PolicyNumber, id)
	}
	for _, id := range extractLabeledIDs(text, orderNumberPattern, true) {
		bag.Add(intel.OrderNumber, id)
	}
	for _, l := range landlinePattern.FindAllString(text, -1) {
		if isClaimed(l) {
			continue
		}
		bag.Add(intel.Landline, l)
		claim(l)
	}
	for _, p := range extractPincodes(text) {
		if isClaimed(p) {
			continue
		}
		bag.Add(intel.Pincode, p)
	}
	for _, kw := range extractKeywords(text) {
		bag.Add(intel.Keyword, kw)
	}
	return bag
}

// extractPhones returns Indian mobile numbers normalized to +91-XXXXXXXXXX.
// Written-out digit runs are folded first so "nine eight seven..." counts.
func extractPhones(text string) []string {
	text = FoldWrittenNumbers(text)
	var out []string
	seen := make(map[string]bool)
	for _, m := range phonePattern.FindAllString(text, -1) {
		clean := separators.ReplaceAllString(m, "")
		clean = strings.TrimPrefix(clean, "+")
		if strings.HasPrefix(clean, "91") && len(clean) == 12 {
			clean = clean[2:]
		}
		if len(clean) != 10 {
			continue
		}
		normalized := "+91-" + clean
		if !seen[normalized] {
			seen[normalized] = true
			out = append(out, normalized)
		}
	}
	return out
}

// extractPaymentIDs finds local@handle tokens that are payment identifiers
// rather than emails. The tie-break: a dotted or hyphenated domain, or a
// known webmail provider, means email; a bare alphanumeric handle means
// payment id. A trailing sentence period does not make it an email.
func extractPaymentIDs(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	seen := make(map[string]bool)
	for _, loc := range paymentIDPattern.FindAllStringIndex(lower, -1) {
		m := lower[loc[0]:loc[1]]
		next := byte(0)
		if loc[1] < len(lower) {
			next = lower[loc[1]]
		}
		// Followed by '-' means we matched a prefix of an email domain
		// like @fake-amazon-deals.com.
		if next == '-' {
			continue
		}
		// Followed by '.' plus a letter means a real TLD; '.' plus
		// anything else is sentence punctuation and the token stands.
		if next == '.' && loc[1]+1 < len(lower) && isAlpha(lower[loc[1]+1]) {
			continue
		}
		handle := m[strings.LastIndexByte(m, '@')+1:]
		if webmailDomains[handle] {
			continue
		}
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

// extractBankAccounts keeps 11-18 digit strings and grouped card-style
// numbers, and drops anything that reduces to a 10-digit mobile number.
func extractBankAccounts(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range bankAccountPattern.FindAllStringSubmatch(text, -1) {
		candidate := m[1]
		clean := separators.ReplaceAllString(candidate, "")
		switch {
		case len(clean) >= 11 && len(clean) <= 18:
		case len(clean) == 10 && clean[0] < '6':
			// 10 digits not starting 6-9 cannot be a mobile number.
		default:
			continue
		}
		if !seen[candidate] {
			seen[candidate] = true
			out = append(out, candidate)
		}
	}
	return out
}

// extractURLs returns scheme-prefixed links plus de-obfuscated "dot com" and
// "[.]" forms, with trailing punctuation stripped.
func extractURLs(text string) []string {
	lower := strings.ToLower(text)
	var raw []string
	raw = append(raw, urlPattern.FindAllString(text, -1)...)

	for _, loc := range spelledURLPattern.FindAllStringIndex(lower, -1) {
		if loc[0] > 0 {
			prev := lower[loc[0]-1]
			if prev == '@' || prev == '-' || isAlnum(prev) {
				continue
			}
		}
		raw = append(raw, lower[loc[0]:loc[1]])
	}
	raw = append(raw, bracketURLPattern.FindAllString(lower, -1)...)

	var out []string
	seen := make(map[string]bool)
	for _, u := range raw {
		u = deobfuscateURL(u)
		u = strings.TrimRight(u, `.,;:"')]`)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

func deobfuscateURL(u string) string {
	for _, r := range []struct{ from, to string }{
		{"( dot )", "."}, {"(dot)", "."}, {" dot ", "."},
		{"dot ", "."}, {" dot", "."}, {"[.]", "."},
		{"hxxp", "http"},
	} {
		u = strings.ReplaceAll(u, r.from, r.to)
	}
	return strings.ReplaceAll(u, " ", "")
}

// extractEmails returns addresses with a dotted domain, lowercased, plus
// bare local@handle tokens that appear in an explicit email context
// ("emailed you from refunds@fakebank").
func extractEmails(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	seen := make(map[string]bool)
	add := func(e string) {
		if e != "" && !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	for _, m := range emailPattern.FindAllString(lower, -1) {
		domain := m[strings.LastIndexByte(m, '@')+1:]
		if strings.Contains(domain, ".") {
			add(strings.TrimRight(m, "."))
		}
	}
	for h := range emailContextHandles(text) {
		add(h)
	}
	return out
}

// emailContextHandles finds bare local@handle tokens used in an explicit
// email context ("emailed you from refunds@fakebank"). These are emails by
// context even though the handle has no TLD.
func emailContextHandles(text string) map[string]bool {
	lower := strings.ToLower(text)
	out := make(map[string]bool)
	for _, m := range emailContextPattern.FindAllStringSubmatch(lower, -1) {
		candidate := m[1]
		domain := candidate[strings.LastIndexByte(candidate, '@')+1:]
		if !strings.Contains(domain, ".") {
			out[candidate] = true
		}
	}
	return out
}

// extractLabeledIDs pulls the identifier following a label such as "case
// number" or "policy no". requireDigit filters out label-adjacent plain
// words; long pure-digit strings are left to the phone/account rules.
func extractLabeledIDs(text string, pattern *regexp.Regexp, requireDigit bool) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range pattern.FindAllStringSubmatch(text, -1) {
		id := strings.ToUpper(m[1])
		if requireDigit && !containsDigit(id) {
			continue
		}
		if isAllDigits(id) && len(id) >= 8 {
			continue
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// extractPincodes drops repeated (111111) and sequential (123456, 987654)
// runs that are almost never real pincodes.
func extractPincodes(text string) []string {
	var out []string
	seen := make(map[string]bool)
outer:
	for _, code := range pincodePattern.FindAllString(text, -1) {
		same, asc, desc := true, true, true
		for i := 1; i < len(code); i++ {
			if code[i] != code[i-1] {
				same = false
			}
			if code[i] != code[i-1]+1 {
				asc = false
			}
			if code[i] != code[i-1]-1 {
				desc = false
			}
		}
		if same || asc || desc || seen[code] {
			continue outer
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}

func extractKeywords(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, kw := range scamKeywords {
		if strings.Contains(lower, kw) {
			out = append(out, kw)
		}
	}
	for _, app := range paymentApps {
		if strings.Contains(lower, app) {
			out = append(out, app)
		}
	}
	return out
}

func digitString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func containsDigit(s string) bool {
	return digitsOnly.MatchString(s)
}

func isAllDigits(s string) bool {
	return s != "" && digitString(s) == s
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnum(c byte) bool {
	return isAlpha(c) || (c >= '0' && c <= '9')
}
