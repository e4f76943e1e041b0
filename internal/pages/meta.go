package pages

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/linkmeta/metasite/internal/demolinks"
	"github.com/linkmeta/metasite/internal/fetch"
	"github.com/linkmeta/metasite/internal/healthcheck"
	"github.com/linkmeta/metasite/internal/metadata"
	"github.com/linkmeta/metasite/internal/site"
	"github.com/linkmeta/metasite/internal/site/components"
	"github.com/linkmeta/metasite/internal/site/layout"
	"github.com/linkmeta/metasite/pkg/core"
	"github.com/linkmeta/metasite/pkg/forms"
	"github.com/linkmeta/metasite/pkg/logging"
)

// Meta page events.
const (
	EventURLChange = "url:change"
	EventURLFocus  = "url:focus"
	EventURLBlur   = "url:blur"
	EventSubmit    = "demo:submit"
)

const (
	// InitialSuggestion is the demo link shown before any fetch.
	InitialSuggestion = "youtube"

	// SentenceInterval is how long each timings sentence stays.
	SentenceInterval = 3500 * time.Millisecond

	// resultSendTimeout bounds how long a fetch result waits for room in
	// the view's info queue.
	resultSendTimeout = 5 * time.Second

	demoInputID = "meta-demo-url"
)

// Suggestions are the demo links offered by the input.
var Suggestions = []string{"instagram", "soundcloud", "spotify", "theverge", "youtube"}

// Sentences rotate under the timings heading.
var Sentences = []string{
	"beauty link previews",
	"native embeds",
	"builtin media player",
	"easily customizable",
	"lazy fetching",
	"mobile ready",
}

// Fields listed around the JSON payload, left then right.
var (
	propsLeft  = []string{"author", "audio", "date", "description", "iframe", "image"}
	propsRight = []string{"lang", "logo", "publisher", "title", "url", "video"}
)

type rotateSentence struct{}

// fetchExpired ends a fetch whose result never reached the view.
type fetchExpired struct {
	url string
}

type statsUpdated struct {
	snapshot healthcheck.Snapshot
}

// Meta is the live view of /meta.
type Meta struct {
	core.BaseComponent

	deps     Deps
	log      logging.Logger
	input    *components.Input
	provider *fetch.Provider
	message  string
	sentence int
	stats    healthcheck.Snapshot
	client   string

	stopTicker  func()
	cancelWatch func()
}

// NewMeta creates the meta page.
func NewMeta(deps Deps) *Meta {
	return &Meta{
		deps:     deps,
		log:      deps.logger().With(logging.String("view", "meta")),
		provider: fetch.NewProvider(),
	}
}

func (c *Meta) Name() string { return "meta" }

// Mount prefills the input from the url query parameter. Connected views
// also start the sentence ticker. Healthcheck updates arrive through
// FollowStats.
func (c *Meta) Mount(ctx context.Context, params core.Params, session core.Session) error {
	c.input = components.NewInput(components.InputProps{
		ID:          demoInputID,
		Name:        "url",
		Value:       params.Get("url"),
		Placeholder: "Enter a URL...",
		AutoFocus:   true,
		Suggestions: demolinks.Suggestions(Suggestions...),
		ChangeEvent: EventURLChange,
		FocusEvent:  EventURLFocus,
		BlurEvent:   EventURLBlur,
		Debounce:    150,
	})
	c.stats = c.deps.stats()
	c.client = session.GetString("remote_ip")

	if !c.Connected() {
		return nil
	}

	c.stopTicker = c.Socket().Every(SentenceInterval, rotateSentence{})
	return nil
}

func (c *Meta) HandleEvent(ctx context.Context, event string, payload map[string]any) error {
	switch event {
	case EventURLChange:
		c.input.Value, _ = payload["value"].(string)
		c.message = ""
	case EventURLFocus:
		c.input.HandleFocus()
	case EventURLBlur:
		c.input.HandleBlur()
	case EventSubmit:
		if v, ok := payload["url"].(string); ok {
			c.input.Value = v
		}
		c.submit(ctx)
	default:
		return fmt.Errorf("meta: unknown event %q", event)
	}
	return nil
}

// submit validates the input and starts a fetch. Invalid values never
// reach the provider.
func (c *Meta) submit(ctx context.Context) {
	if err := forms.Validate("url", c.input.Value, forms.Required(), forms.URL()); err != nil {
		var fe *forms.FieldError
		if errors.As(err, &fe) {
			c.message = fe.Message
		}
		return
	}

	url := forms.PrependHTTP(c.input.Value)
	if !forms.IsURL(url) {
		return
	}
	if c.provider.Fetching() && c.provider.URL() == url {
		return
	}

	c.message = ""
	c.provider.Start(url)

	if c.deps.Fetcher == nil || !c.Connected() {
		c.provider.Complete(fetch.Result{URL: url, Err: errors.New("fetch unavailable")})
		c.message = fetch.Message(c.provider.Err())
		return
	}

	socket := c.Socket()
	c.stopWatch()
	c.cancelWatch = socket.SendAfter(fetchExpired{url: url}, c.deps.fetchTimeout())

	log := c.log
	c.deps.Fetcher.DoFetch(fetch.WithClientKey(ctx, c.client), url, func(r fetch.Result) {
		ctx, cancel := context.WithTimeout(context.Background(), resultSendTimeout)
		defer cancel()
		if err := socket.SendInfoContext(ctx, r); err != nil {
			log.Warn("fetch result dropped", logging.String("url", r.URL), logging.Err(err))
		}
	})
}

func (c *Meta) stopWatch() {
	if c.cancelWatch != nil {
		c.cancelWatch()
		c.cancelWatch = nil
	}
}

func (c *Meta) HandleInfo(ctx context.Context, msg any) error {
	switch m := msg.(type) {
	case rotateSentence:
		c.sentence = (c.sentence + 1) % len(Sentences)
	case statsUpdated:
		c.stats = m.snapshot
	case fetch.Result:
		if c.provider.Complete(m) {
			c.stopWatch()
			c.message = fetch.Message(m.Err)
		}
	case fetchExpired:
		if c.provider.Fetching() && c.provider.URL() == m.url {
			c.provider.Complete(fetch.Result{URL: m.url, Err: context.DeadlineExceeded})
			c.cancelWatch = nil
			c.message = fetch.Message(context.DeadlineExceeded)
		}
	}
	return nil
}

func (c *Meta) Terminate(ctx context.Context, reason core.TerminateReason) error {
	if c.stopTicker != nil {
		c.stopTicker()
	}
	c.stopWatch()
	return nil
}

// Data is the payload on display: the last fetch or the initial demo link.
func (c *Meta) Data() metadata.Data {
	if d := c.provider.Data(); d != nil {
		return d
	}
	link, _ := demolinks.Find(InitialSuggestion)
	return link.Data
}

func (c *Meta) Render(ctx context.Context) core.Renderer {
	var sb strings.Builder
	sb.WriteString(c.renderLiveDemo())
	sb.WriteString(c.renderTimings())
	sb.WriteString(metaFeatures)
	sb.WriteString(metaResume)
	sb.WriteString(metaInformation)

	return core.HTML(layout.Render(ctx, layout.Options{
		View:        c.Name(),
		Path:        "/meta",
		Title:       "Meta",
		Description: "Get unified metadata from any website.",
		BaseURL:     c.deps.BaseURL,
	}, sb.String()))
}

func (c *Meta) renderLiveDemo() string {
	var sb strings.Builder

	sb.WriteString(`<section id="live-demo" class="section text-center"><div class="container">`)
	sb.WriteString(`<h1>Get unified metadata</h1>`)
	sb.WriteString(`<p class="caption container-small" style="margin:0 auto">Structured data normalized from Open Graph, JSON+LD, oEmbed &amp; HTML for any website.</p>`)
	sb.WriteString(`<div class="hero-actions">`)
	sb.WriteString(`<a class="arrow-link" href="/docs/sdk/getting-started/overview/">Get Started</a>`)
	sb.WriteString(`<a class="arrow-link" href="https://github.com/microlinkhq/sdk" target="_blank" rel="noopener noreferrer">View the API</a>`)
	sb.WriteString(`</div>`)

	sb.WriteString(`<div data-slot="demo-form">`)
	sb.WriteString(c.renderForm())
	sb.WriteString(`</div>`)

	sb.WriteString(`<div data-slot="demo-data">`)
	sb.WriteString(renderData(c.Data()))
	sb.WriteString(`</div>`)

	sb.WriteString(`</div></section>`)
	sb.WriteString("\n")
	return sb.String()
}

func (c *Meta) renderForm() string {
	var sb strings.Builder

	c.input.Icon = components.FaviconIcon(forms.Domain(c.input.Value))

	sb.WriteString(fmt.Sprintf(`<form class="demo-form" lv-submit="%s">`, EventSubmit))
	sb.WriteString(c.input.Render())
	if c.provider.Fetching() {
		sb.WriteString(`<button type="submit" class="btn loading" disabled aria-busy="true"><span class="spinner" aria-hidden="true"></span><span class="caps">Get it</span></button>`)
	} else {
		sb.WriteString(`<button type="submit" class="btn"><span class="caps">Get it</span></button>`)
	}
	sb.WriteString(`</form>`)

	if c.message != "" {
		sb.WriteString(fmt.Sprintf(`<p class="demo-error" role="alert">%s</p>`, html.EscapeString(c.message)))
	}
	return sb.String()
}

func renderData(data metadata.Data) string {
	var sb strings.Builder
	sb.WriteString(`<div class="props">`)
	sb.WriteString(renderProps(propsLeft, data))
	sb.WriteString(components.RenderCodeEditor(components.CodeEditorProps{
		Language: "json",
		Code:     components.PrettyJSON(data),
	}))
	sb.WriteString(renderProps(propsRight, data))
	sb.WriteString(`</div>`)
	return sb.String()
}

// renderProps marks each field yes when it is present and not null.
func renderProps(fields []string, data metadata.Data) string {
	var sb strings.Builder
	sb.WriteString(`<ul>`)
	for _, f := range fields {
		class, mark := "no", "✗"
		if data.Has(f) {
			class, mark = "yes", "✓"
		}
		sb.WriteString(fmt.Sprintf(`<li class="%s" data-prop="%s">%s <span aria-hidden="true">%s</span></li>`, class, f, f, mark))
	}
	sb.WriteString(`</ul>`)
	return sb.String()
}

func (c *Meta) renderTimings() string {
	var sb strings.Builder

	sb.WriteString(`<section id="timings" class="section timings"><div class="container">`)
	sb.WriteString(`<h2 class="subhead" style="color:var(--color-white)">All the data. Unified. Effortless.</h2>`)
	sb.WriteString(`<p class="caption">Open Graph, JSON+LD, oEmbed &amp; HTML.</p>`)

	sb.WriteString(`<div data-slot="sentence">`)
	sb.WriteString(fmt.Sprintf(`<p class="sentence fade-in">%s</p>`, html.EscapeString(Sentences[c.sentence])))
	sb.WriteString(`</div>`)

	sb.WriteString(`<div class="stats">`)
	sb.WriteString(renderStat(`<span data-slot="avg">`+html.EscapeString(c.stats.Avg())+`</span>`, "mseg", "avg. response time"))
	sb.WriteString(renderStat(`<span data-slot="p95">`+html.EscapeString(c.stats.P95())+`</span>`, "seg", "avg. response time"))
	sb.WriteString(renderStat("99.9", "%", "SLA guaranteed"))
	sb.WriteString(`</div>`)

	sb.WriteString(`</div></section>`)
	sb.WriteString("\n")
	return sb.String()
}

func renderStat(value, unit, label string) string {
	return fmt.Sprintf(`<div class="stat"><div class="stat-value">%s<span class="stat-unit">%s</span></div><span class="stat-label caps">%s</span></div>`,
		value, html.EscapeString(unit), html.EscapeString(label))
}

var metaFeatureList = []site.Feature{
	{Title: "Unified data", Description: "Open Graph, JSON+LD, oEmbed and HTML merged into one normalized payload."},
	{Title: "Media ready", Description: "Images, logos, videos and audio come with their dimensions, size and palette."},
	{Title: "Embeds included", Description: "Get the provider iframe for hundreds of services without writing an integration."},
	{Title: "Always fresh", Description: "Responses are cached and can be refreshed on demand with a single parameter."},
	{Title: "Lazy fetching", Description: "Previews load when they scroll into view, so pages stay fast."},
	{Title: "Plain HTTP", Description: "One GET request from any language, or the official clients for Node.js and Python."},
}

var metaFeatures = components.RenderFeatures(components.FeaturesOptions{
	ID:        "features",
	TitleHTML: `<span>You call the API,</span><br><span class="accent">we handle the rest.</span>`,
	Caption: "No more configuring auto-scaling, load balancers, or paying for capacity you don't use, " +
		"Microlink is the fastest, cost effective solution for data extraction at any scale, fully customizable via API.",
	Features: metaFeatureList,
	Columns:  3,
})

var metaResume = func() string {
	img := func(name string) string { return site.CDNURL + "/illustrations/" + name }

	var sb strings.Builder
	sb.WriteString(`<section id="resume" class="section"><div class="container">`)
	sb.WriteString(`<h2 class="text-center">Turns websites into data</h2>`)
	sb.WriteString(`<p class="caption text-center container-small" style="margin:0 auto">Microlink extracts structured data from any website. ` +
		`Enter a URL, receive information. Get relevant information from any link &amp; easily create beautiful previews.</p>`)
	sb.WriteString(components.RenderBlocks([]components.Block{
		{
			Title: "Data normalization",
			Text:  "Get normalized from multiple data sources such as Open Graph, JSON+LD, oEmbed or regular HTML in a unified way.",
			Image: img("abstract-delivery.svg"),
		},
		{
			Title: "Contextual information",
			Text:  "The values detected follow a strict data schema. Additionally, extra information is provided over the original data.",
			Image: img("robots.svg"),
		},
		{
			Title: "Easily consumable",
			Text: `Turn any link into a rich media and easily add it to your UI using <a href="/sdk">Microlink SDK</a>, ` +
				`with <a href="/docs/api/parameters/iframe/#providers-supported">+250 verified providers</a> supported.`,
			Image: img("abstract-page-is-under-construction.svg"),
		},
	}))
	sb.WriteString(`</div></section>`)
	sb.WriteString("\n")
	return sb.String()
}()

// ProductInformation is the FAQ closing the meta page.
var ProductInformation = []components.FAQEntry{
	{
		Question: "What is it?",
		Answer: []string{
			`<b>Microlink for Meta</b> is a data extraction service that take a URL as input, giving you structured data as output.`,
			`The data detected is unified and normalized from different data source providers present on the semantic markup of the target URL, such as Open Graph, JSON+LD, oEmbed, microformats or regular HTML.`,
		},
	},
	{
		Question: "How does it work?",
		Answer: []string{
			`It's a <a href="https://en.wikipedia.org/wiki/Rule-based_system">rule-based system</a> called <a href="https://metascraper.js.org">metascraper</a>, where the desired value (e.g., the title) will be searched over the content according to a series of rules.`,
			`Also, this process ensures the value extracted follows a specific data shape. So, not only the value should be present, it needs to satisfy a specific data shape as well.`,
			`In this way, if the service detects the value, you can be sure that is what it claims to be.`,
		},
	},
	{
		Question: "Why not run my own solution?",
		Answer: []string{
			`You can always run your own solution; Most of our software is <a href="/oss">Open Source</a>, so you can take them and hosted from scratch.`,
			`What we offer as part of our value proposition is a production ready solution without the headaches of running your own infrastructure.`,
			`No code to maintain, no servers to scale up, no dependencies to upgrade. Just an always ready <a href="/docs/api/getting-started/overview">API</a> ready to use.`,
		},
	},
	{
		Question: "Other questions?",
		Answer: []string{
			`We're always available at <a href="mailto:hello@microlink.io">hello@microlink.io</a>.`,
		},
	},
}

var metaInformation = components.RenderFAQ(components.FAQOptions{
	ID:         "information",
	Title:      "Product Information",
	Caption:    "All the details you need to know about the product.",
	Questions:  ProductInformation,
	Background: "pinky",
	Border:     "pinkest",
})
