package components

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/linkmeta/metasite/internal/pricing"
)

// ErrUnknownPlan is returned for a picker value that matches no plan.
var ErrUnknownPlan = errors.New("unknown plan")

// PricePicker selects a plan by its monthly request volume.
type PricePicker struct {
	ID       string
	Event    string
	Plan     pricing.Plan
	OnChange func(pricing.Plan)
}

// NewPricePicker creates a picker on the default plan.
func NewPricePicker(id, event string, onChange func(pricing.Plan)) *PricePicker {
	if onChange == nil {
		onChange = func(pricing.Plan) {}
	}
	return &PricePicker{
		ID:       id,
		Event:    event,
		Plan:     pricing.DefaultPlan,
		OnChange: onChange,
	}
}

// HandleChange selects the plan whose reqsPerMonth is value. Unknown values
// leave the selection unchanged.
func (p *PricePicker) HandleChange(value string) error {
	plan, ok := pricing.FindByReqsPerMonth(value)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPlan, value)
	}
	p.Plan = plan
	p.OnChange(plan)
	return nil
}

// Render generates the select.
func (p *PricePicker) Render() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<select class="picker" id="%s" aria-label="Requests per month"`, html.EscapeString(p.ID)))
	if p.Event != "" {
		sb.WriteString(fmt.Sprintf(` lv-change="%s"`, html.EscapeString(p.Event)))
	}
	sb.WriteString(`>`)

	for _, plan := range pricing.Plans() {
		selected := ""
		if plan.ID == p.Plan.ID {
			selected = " selected"
		}
		sb.WriteString(fmt.Sprintf(`<option value="%s"%s>%s</option>`,
			html.EscapeString(plan.ReqsPerMonth), selected, html.EscapeString(plan.Label())))
	}

	sb.WriteString(`</select>`)
	return sb.String()
}
