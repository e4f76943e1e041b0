package pages

import (
	"testing"

	lvtest "github.com/linkmeta/metasite/pkg/testing"
)

func TestColors(t *testing.T) {
	lvtest.Mount(t, NewColors(Deps{}), lvtest.Disconnected()).
		AssertText("<title>Colors | ").
		AssertText("Other colors").
		AssertText("#343a40").
		AssertText("teal").
		AssertNoText("data-live-view").
		AssertNoText("/_live/live.js")
}
