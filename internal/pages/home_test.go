package pages

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linkmeta/metasite/internal/site/components"
	"github.com/linkmeta/metasite/pkg/core"
	lvtest "github.com/linkmeta/metasite/pkg/testing"
)

func TestHomeDefaults(t *testing.T) {
	lvtest.Mount(t, NewHome(Deps{}), lvtest.Disconnected()).
		AssertText(`data-live-view="home"`).
		AssertText(`src="/_live/live.js"`).
		AssertText("Get Started").
		AssertText(`href="/meta"`).
		AssertSlot("mql", `data-mode="preview" data-type="meta"`)
}

func TestHomeSwitchType(t *testing.T) {
	lvt := lvtest.Mount(t, NewHome(Deps{}))

	lvt.AssertText(`lv-click="mql:type" lv-value-value="pdf"`)
	lvt.Click(EventMQLType, map[string]any{"value": "pdf"}).
		AssertSlot("mql", `data-type="pdf"`).
		AssertSlot("mql", "<iframe")
}

func TestHomeRejectsUnknownValues(t *testing.T) {
	lvt := lvtest.Mount(t, NewHome(Deps{}))

	assert.ErrorIs(t, lvt.EventErr(EventMQLMode, map[string]any{"value": "xml"}), components.ErrUnknownMode)
	assert.ErrorIs(t, lvt.EventErr(EventMQLType, map[string]any{"value": "video"}), components.ErrUnknownType)
	assert.Error(t, lvt.EventErr("nope", nil))

	lvt.AssertSlot("mql", `data-mode="preview" data-type="meta"`)
}

func TestHomeParams(t *testing.T) {
	lvtest.Mount(t, NewHome(Deps{}),
		lvtest.Disconnected(),
		lvtest.WithParams(core.Params{"mode": "json", "type": "iframe"})).
		AssertSlot("mql", `data-mode="json" data-type="iframe"`).
		AssertSlot("mql", `data-language="json"`)

	// unknown params keep the defaults
	lvtest.Mount(t, NewHome(Deps{}),
		lvtest.Disconnected(),
		lvtest.WithParams(core.Params{"mode": "xml"})).
		AssertSlot("mql", `data-mode="preview"`)
}

func TestHomeCodeLanguage(t *testing.T) {
	lvt := lvtest.Mount(t, NewHome(Deps{}))

	lvt.Click(EventMQLMode, map[string]any{"value": "code"}).
		AssertSlot("mql", `data-language="bash"`)
	lvt.Click(EventMQLLanguage, map[string]any{"language": "python"}).
		AssertSlot("mql", `data-language="python"`).
		AssertSlot("mql", "import requests")
}
