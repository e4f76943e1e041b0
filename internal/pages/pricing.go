package pages

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/linkmeta/metasite/internal/pricing"
	"github.com/linkmeta/metasite/internal/site/components"
	"github.com/linkmeta/metasite/internal/site/layout"
	"github.com/linkmeta/metasite/pkg/core"
)

// EventPlanChange is sent by the plan picker.
const EventPlanChange = "plan:change"

// Pricing is the live view of /pricing.
type Pricing struct {
	core.BaseComponent

	deps   Deps
	picker *components.PricePicker
}

// NewPricing creates the pricing page.
func NewPricing(deps Deps) *Pricing {
	return &Pricing{deps: deps}
}

func (c *Pricing) Name() string { return "pricing" }

// Mount preselects the plan named by the plan query parameter.
func (c *Pricing) Mount(ctx context.Context, params core.Params, session core.Session) error {
	c.picker = components.NewPricePicker("plan", EventPlanChange, nil)
	if plan, ok := pricing.FindByID(params.Get("plan")); ok {
		c.picker.Plan = plan
	}
	return nil
}

func (c *Pricing) HandleEvent(ctx context.Context, event string, payload map[string]any) error {
	if event != EventPlanChange {
		return fmt.Errorf("pricing: unknown event %q", event)
	}
	v, _ := payload["value"].(string)
	return c.picker.HandleChange(v)
}

func (c *Pricing) Render(ctx context.Context) core.Renderer {
	plan := c.picker.Plan

	var sb strings.Builder
	sb.WriteString(`<section class="section text-center"><div class="container">`)
	sb.WriteString(`<h1>Pricing</h1>`)
	sb.WriteString(`<p class="caption">Pay for what you use. Upgrade, downgrade or cancel at any time.</p>`)

	sb.WriteString(`<div class="grid grid-2" style="margin-top:var(--space-5)">`)

	sb.WriteString(`<div class="card" style="padding:var(--space-4)">`)
	sb.WriteString(`<h2 class="subhead">Free</h2>`)
	sb.WriteString(`<p class="stat-value">$0<span class="stat-unit">/month</span></p>`)
	sb.WriteString(`<p>50 requests a day</p>`)
	sb.WriteString(`<p class="caption">No credit card required.</p>`)
	sb.WriteString(`</div>`)

	sb.WriteString(`<div class="card" style="padding:var(--space-4)">`)
	sb.WriteString(`<h2 class="subhead">Pro</h2>`)
	sb.WriteString(fmt.Sprintf(`<p class="stat-value"><span data-slot="price">%s</span><span class="stat-unit">/month</span></p>`,
		html.EscapeString(plan.Price())))
	sb.WriteString(`<p>`)
	sb.WriteString(c.picker.Render())
	sb.WriteString(` requests a month</p>`)
	sb.WriteString(fmt.Sprintf(`<p class="caption"><span data-slot="per-day">%s</span> requests a day</p>`,
		html.EscapeString(pricing.FormatNumber(plan.ReqsPerDay))))
	sb.WriteString(fmt.Sprintf(`<div data-slot="checkout"><a class="btn" href="/payment?plan=%s">Buy %s</a></div>`,
		html.EscapeString(plan.ID), html.EscapeString(plan.Label())))
	sb.WriteString(`</div>`)

	sb.WriteString(`</div></div></section>`)

	sb.WriteString(pricingFAQ)

	return core.HTML(layout.Render(ctx, layout.Options{
		View:        c.Name(),
		Path:        "/pricing",
		Title:       "Pricing",
		Description: "Simple pricing for the Microlink API.",
		BaseURL:     c.deps.BaseURL,
	}, sb.String()))
}

var pricingFAQ = components.RenderFAQ(components.FAQOptions{
	ID:         "faq",
	Title:      "Frequently Asked Questions",
	Caption:    "Everything about plans and billing.",
	Background: "pinky",
	Border:     "pinkest",
	Questions: []components.FAQEntry{
		{
			Question: "How is a request counted?",
			Answer: []string{
				"Every API call counts as one request, cached or not.",
				"The quota resets every day, so unused requests do not accumulate.",
			},
		},
		{
			Question: "What happens if I exceed my plan?",
			Answer: []string{
				"Requests over the quota are answered with a 429 status code until the next reset. Nothing is charged automatically.",
			},
		},
		{
			Question: "Can I change my plan?",
			Answer: []string{
				"Yes. Upgrades apply immediately and downgrades at the end of the billing period.",
			},
		},
		{
			Question: "Other questions?",
			Answer: []string{
				`We're always available at <a href="mailto:hello@microlink.io">hello@microlink.io</a>.`,
			},
		},
	},
})
