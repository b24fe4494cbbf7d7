package intel

import (
	"encoding/json"
	"sort"
	"strings"
)

// Category identifies one kind of extractable identifier.
type Category string

const (
	Phone        Category = "phone"
	PaymentID    Category = "payment_id"
	BankAccount  Category = "bank_account"
	URL          Category = "url"
	Email        Category = "email"
	CaseID       Category = "case_id"
	PolicyNumber Category = "policy_number"
	OrderNumber  Category = "order_number"
	Landline     Category = "landline"
	Pincode      Category = "pincode"
	Keyword      Category = "keyword"
)

// Categories lists every category in a fixed order. The order doubles as the
// precedence order when a token could match more than one rule: the first
// successful categorical match wins.
var Categories = []Category{
	Phone, PaymentID, BankAccount, URL, Email,
	CaseID, PolicyNumber, OrderNumber, Landline, Pincode, Keyword,
}

// highValue are the categories that count toward the finalize threshold.
// Keywords and other incidental matches never do.
var highValue = map[Category]bool{
	Phone:       true,
	PaymentID:   true,
	BankAccount: true,
	Email:       true,
}

// Bag accumulates extracted identifiers per category. Values are unique
// within a category and are never removed once added: merging is idempotent
// and monotonically additive for the life of a session.
type Bag struct {
	values map[Category]map[string]struct{}
}

func NewBag() *Bag {
	return &Bag{values: make(map[Category]map[string]struct{})}
}

// Add inserts one value into a category. Empty values are ignored.
func (b *Bag) Add(cat Category, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	set, ok := b.values[cat]
	if !ok {
		set = make(map[string]struct{})
		b.values[cat] = set
	}
	set[value] = struct{}{}
}

// Merge folds another bag into this one. Applying the same bag twice yields
// the same result as applying it once.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	for cat, set := range other.values {
		for v := range set {
			b.Add(cat, v)
		}
	}
}

// Has reports whether the category holds at least one value.
func (b *Bag) Has(cat Category) bool {
	return len(b.values[cat]) > 0
}

// Values returns the category's values in sorted order.
func (b *Bag) Values(cat Category) []string {
	set := b.values[cat]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of values in one category.
func (b *Bag) Count(cat Category) int {
	return len(b.values[cat])
}

// Total returns the number of distinct values across all categories,
// keywords included.
func (b *Bag) Total() int {
	n := 0
	for _, set := range b.values {
		n += len(set)
	}
	return n
}

// Valuable returns the number of distinct values excluding keywords.
func (b *Bag) Valuable() int {
	n := 0
	for cat, set := range b.values {
		if cat != Keyword {
			n += len(set)
		}
	}
	return n
}

// HighValue returns the number of distinct phone, payment-id, bank-account
// and email values. This count drives the intermediate finalize threshold.
func (b *Bag) HighValue() int {
	n := 0
	for cat, set := range b.values {
		if highValue[cat] {
			n += len(set)
		}
	}
	return n
}

// NonEmpty returns the categories that hold at least one value, in the fixed
// category order.
func (b *Bag) NonEmpty() []Category {
	var out []Category
	for _, cat := range Categories {
		if b.Has(cat) {
			out = append(out, cat)
		}
	}
	return out
}

// Clone returns an independent copy of the bag.
func (b *Bag) Clone() *Bag {
	out := NewBag()
	out.Merge(b)
	return out
}

// MarshalJSON encodes the bag as category to sorted value list, the form the
// session stores persist.
func (b *Bag) MarshalJSON() ([]byte, error) {
	out := make(map[Category][]string, len(b.values))
	for _, cat := range Categories {
		if vals := b.Values(cat); len(vals) > 0 {
			out[cat] = vals
		}
	}
	return json.Marshal(out)
}

func (b *Bag) UnmarshalJSON(data []byte) error {
	var in map[Category][]string
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	b.values = make(map[Category]map[string]struct{}, len(in))
	for cat, vals := range in {
		for _, v := range vals {
			b.Add(cat, v)
		}
	}
	return nil
}
