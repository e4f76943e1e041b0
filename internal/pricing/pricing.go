// Package pricing defines the Pro plans offered on the pricing page.
package pricing

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// BasePlanPrice is the monthly price, in dollars, of 1000 requests a day.
	BasePlanPrice = 24

	// MonthDays is the length of a billing month.
	MonthDays = 28
)

// Plan is one Pro plan.
type Plan struct {
	ID           string
	ReqsPerDay   int
	ReqsPerMonth string // English grouping, e.g. "28,000"
	MonthlyPrice int
}

var printer = message.NewPrinter(language.English)

func newPlan(id string, reqsPerDay int) Plan {
	return Plan{
		ID:           id,
		ReqsPerDay:   reqsPerDay,
		ReqsPerMonth: FormatNumber(reqsPerDay * MonthDays),
		MonthlyPrice: reqsPerDay * BasePlanPrice / 1000,
	}
}

var plans = []Plan{
	newPlan("pro-500-v3", 500),
	newPlan("pro-1k-v3", 1000),
	newPlan("pro-2k-v3", 2000),
	newPlan("pro-3k-v3", 3000),
	newPlan("pro-5k-v3", 5000),
	newPlan("pro-10k-v3", 10000),
	newPlan("pro-15k-v3", 15000),
	newPlan("pro-20k-v3", 20000),
}

// DefaultPlan is preselected in the picker.
var DefaultPlan = plans[1]

// Plans returns every plan, cheapest first.
func Plans() []Plan {
	return slices.Clone(plans)
}

// FindByReqsPerMonth returns the plan whose formatted monthly request
// count is s.
func FindByReqsPerMonth(s string) (Plan, bool) {
	for _, p := range plans {
		if p.ReqsPerMonth == s {
			return p, true
		}
	}
	return Plan{}, false
}

// FindByID returns the plan with the given id.
func FindByID(id string) (Plan, bool) {
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// Label is the short form shown in the picker ("28K").
func (p Plan) Label() string {
	return strings.Replace(p.ReqsPerMonth, ",000", "K", 1)
}

// Price formats the monthly price ("$24").
func (p Plan) Price() string {
	return printer.Sprintf("$%d", p.MonthlyPrice)
}

// FormatNumber formats n with English digit grouping.
func FormatNumber(n int) string {
	return printer.Sprintf("%d", n)
}
