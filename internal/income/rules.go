// Package income classifies profit-and-loss postings into service lines and
// rolls them up into an income statement.
package income

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Category is an income-statement bucket.
type Category string

const (
	CategoryFlight            Category = "flight"
	CategoryPilgrimagePackage Category = "pilgrimage_package"
	CategoryOtherService      Category = "other_service"
	CategoryAdministrative    Category = "administrative"
	// CategoryClearing marks counterparty postings that never reach the statement.
	CategoryClearing Category = "clearing"
)

// Rules is the ordered keyword table used to classify accounts by id and
// name. It is a heuristic, not a chart-of-accounts mapping: the first
// matching keyword in list order wins, and accounts named inconsistently
// will land in the fallback buckets.
type Rules struct {
	Clearing       []string `yaml:"clearing"`
	Administrative []string `yaml:"administrative"`
	Flight         []string `yaml:"flight"`
	Pilgrimage     []string `yaml:"pilgrimage"`
	// UnclassifiedExpense is other_service or administrative.
	UnclassifiedExpense Category `yaml:"unclassified_expense"`
}

// DefaultRules covers English and Arabic account naming.
func DefaultRules() Rules {
	return Rules{
		Clearing: []string{
			"customer", "supplier", "treasury", "partner", "clearing", "cash settlement",
			"عميل", "عملاء", "مورد", "موردين", "خزينة", "شريك", "تسوية",
		},
		Administrative: []string{
			"salary", "salaries", "payroll", "wage", "rent", "utilit", "electric", "water",
			"internet", "phone", "marketing", "advertis", "office", "stationery", "maintenance",
			"رواتب", "راتب", "أجور", "إيجار", "ايجار", "كهرباء", "مياه", "إنترنت", "انترنت",
			"تسويق", "إعلان", "اعلان", "مكتب", "قرطاسية", "صيانة",
		},
		Flight: []string{
			"flight", "airline", "air ticket", "ticket", "aviation",
			"طيران", "تذكرة", "تذاكر",
		},
		Pilgrimage: []string{
			"umrah", "hajj", "pilgrim", "package",
			"عمرة", "عمره", "حج", "باقة",
		},
		UnclassifiedExpense: CategoryOtherService,
	}
}

// Validate reports a fallback bucket other than other_service or administrative.
func (r Rules) Validate() error {
	switch r.UnclassifiedExpense {
	case "", CategoryOtherService, CategoryAdministrative:
		return nil
	}
	return fmt.Errorf("unclassified_expense must be %q or %q, got %q",
		CategoryOtherService, CategoryAdministrative, r.UnclassifiedExpense)
}

// Classifier matches account ids and names against Rules. Keywords are
// case-folded once; a Classifier is safe for concurrent use.
type Classifier struct {
	clearing       []string
	administrative []string
	services       []serviceRule
	unclassified   Category
}

type serviceRule struct {
	category Category
	keywords []string
}

// NewClassifier folds every keyword in r.
func NewClassifier(r Rules) *Classifier {
	unclassified := r.UnclassifiedExpense
	if unclassified == "" {
		unclassified = CategoryOtherService
	}
	return &Classifier{
		clearing:       foldAll(r.Clearing),
		administrative: foldAll(r.Administrative),
		services: []serviceRule{
			{category: CategoryFlight, keywords: foldAll(r.Flight)},
			{category: CategoryPilgrimagePackage, keywords: foldAll(r.Pilgrimage)},
		},
		unclassified: unclassified,
	}
}

// Clearing reports whether the account looks like a counterparty posting.
func (c *Classifier) Clearing(accountID, name string) bool {
	return matchAny(c.clearing, subject(accountID, name))
}

// Revenue buckets a revenue account. ok is false when no keyword matched
// and the other-service fallback was used.
func (c *Classifier) Revenue(accountID, name string) (cat Category, ok bool) {
	s := subject(accountID, name)
	if cat, ok := c.service(s); ok {
		return cat, true
	}
	return CategoryOtherService, false
}

// Expense buckets an expense account, testing administrative keywords
// before the service rules.
func (c *Classifier) Expense(accountID, name string) (cat Category, ok bool) {
	s := subject(accountID, name)
	if matchAny(c.administrative, s) {
		return CategoryAdministrative, true
	}
	if cat, ok := c.service(s); ok {
		return cat, true
	}
	return c.unclassified, false
}

func (c *Classifier) service(s string) (Category, bool) {
	for _, r := range c.services {
		if matchAny(r.keywords, s) {
			return r.category, true
		}
	}
	return "", false
}

func matchAny(keywords []string, s string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func subject(accountID, name string) string {
	return fold(accountID + " " + name)
}

func foldAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if f := fold(strings.TrimSpace(s)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// fold builds a fresh Caser each call; a Caser carries state.
func fold(s string) string {
	return cases.Fold().String(s)
}
