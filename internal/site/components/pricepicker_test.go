package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linkmeta/metasite/internal/pricing"
)

func TestPricePicker(t *testing.T) {
	var got pricing.Plan
	p := NewPricePicker("plan", "plan:change", func(plan pricing.Plan) { got = plan })

	assert.Equal(t, pricing.DefaultPlan, p.Plan)

	out := p.Render()
	assert.Contains(t, out, `lv-change="plan:change"`)
	assert.Contains(t, out, `<option value="28,000" selected>28K</option>`)
	assert.Equal(t, len(pricing.Plans()), strings.Count(out, "<option"))

	require.NoError(t, p.HandleChange("140,000"))
	assert.Equal(t, "pro-5k-v3", p.Plan.ID)
	assert.Equal(t, p.Plan, got)
	assert.Contains(t, p.Render(), `<option value="140,000" selected>140K</option>`)
}

func TestPricePickerUnknownValue(t *testing.T) {
	p := NewPricePicker("plan", "", nil)

	err := p.HandleChange("42")
	assert.ErrorIs(t, err, ErrUnknownPlan)
	assert.Equal(t, pricing.DefaultPlan, p.Plan)
	assert.NotContains(t, p.Render(), "lv-change")
}
