// Package demolinks holds the sample URLs and their pre-fetched metadata
// shown by the live demo before the visitor fetches anything.
package demolinks

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/linkmeta/metasite/internal/metadata"
	"github.com/linkmeta/metasite/pkg/forms"
)

//go:embed demo-links.json
var raw []byte

// Link is a demo URL with its extracted metadata.
type Link struct {
	ID   string        `json:"id"`
	Data metadata.Data `json:"data"`
}

// URL returns the canonical URL of the link.
func (l Link) URL() string {
	return l.Data.String("url")
}

var links []Link

func init() {
	if err := json.Unmarshal(raw, &links); err != nil {
		panic(fmt.Sprintf("demolinks: %v", err))
	}
}

// All returns every demo link in file order.
func All() []Link {
	out := make([]Link, len(links))
	copy(out, links)
	return out
}

// Find returns the demo link with the given id.
func Find(id string) (Link, bool) {
	for _, l := range links {
		if l.ID == id {
			return l, true
		}
	}
	return Link{}, false
}

// Suggestions returns the humanized URLs of the given ids, skipping
// unknown ones.
func Suggestions(ids ...string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if l, ok := Find(id); ok {
			out = append(out, forms.Humanize(l.URL()))
		}
	}
	return out
}
