package site

import (
	"fmt"
	"strings"

	"github.com/linkmeta/metasite/internal/theme"
)

// StyleOption allows customizing the generated CSS
type StyleOption func(*styleConfig)

type styleConfig struct {
	includeReset      bool
	includeAnimations bool
}

// WithReset includes a CSS reset
func WithReset(include bool) StyleOption {
	return func(cfg *styleConfig) {
		cfg.includeReset = include
	}
}

// WithAnimations includes animation definitions
func WithAnimations(include bool) StyleOption {
	return func(cfg *styleConfig) {
		cfg.includeAnimations = include
	}
}

// RenderStyles generates the stylesheet of the site.
func RenderStyles(opts ...StyleOption) string {
	cfg := &styleConfig{
		includeReset:      true,
		includeAnimations: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var sb strings.Builder

	if cfg.includeReset {
		sb.WriteString(cssReset())
	}
	sb.WriteString(theme.CSSVariables())
	sb.WriteString(fmt.Sprintf(":root{--font-sans:%s;--font-mono:%s}\n", theme.FontSans, theme.FontMono))

	sb.WriteString(cssBase())
	sb.WriteString(cssTypography())
	sb.WriteString(cssLayout())
	sb.WriteString(cssNav())
	sb.WriteString(cssButtons())
	sb.WriteString(cssInput())
	sb.WriteString(cssCards())
	sb.WriteString(cssCode())
	sb.WriteString(cssPalette())
	sb.WriteString(cssFaq())
	sb.WriteString(cssMeta())

	if cfg.includeAnimations {
		sb.WriteString(cssAnimations())
	}
	sb.WriteString(cssAccessibility())
	sb.WriteString(cssResponsive())

	return sb.String()
}

func cssReset() string {
	return `
*,*::before,*::after{box-sizing:border-box;margin:0;padding:0}
html{-webkit-text-size-adjust:100%;tab-size:2;scroll-behavior:smooth}
body{line-height:1.5;-webkit-font-smoothing:antialiased;-moz-osx-font-smoothing:grayscale}
img,picture,video,canvas,svg,iframe{display:block;max-width:100%}
input,button,textarea,select{font:inherit}
p,h1,h2,h3,h4,h5,h6{overflow-wrap:break-word}
a{color:inherit;text-decoration:none}
ul,ol{list-style:none}
`
}

func cssBase() string {
	return `
body{font-family:var(--font-sans);background:var(--color-white);color:var(--color-black);min-height:100vh}
::selection{background:var(--color-link);color:var(--color-white)}
a.link{color:var(--color-link)}
a.link:hover{text-decoration:underline}
`
}

func cssTypography() string {
	return `
h1{font-size:clamp(32px,6vw,64px);font-weight:700;letter-spacing:-0.02em;line-height:1.1}
h2{font-size:clamp(24px,4vw,48px);font-weight:700;letter-spacing:-0.01em;line-height:1.2}
h3{font-size:20px;font-weight:600;line-height:1.3}
.caption{font-size:20px;color:var(--color-black80);max-width:var(--layout-normal);margin:16px auto 0;text-align:center}
.caps{text-transform:uppercase;letter-spacing:0.05em;font-weight:600;font-size:12px}
.subhead{font-size:20px;color:var(--color-black50);font-weight:400}
.mono{font-family:var(--font-mono)}
code{font-family:var(--font-mono);font-size:0.9em}
`
}

func cssLayout() string {
	return `
.container{width:100%;max-width:var(--layout-large);margin:0 auto;padding:0 16px}
.container-small{max-width:var(--layout-small)}
.container-normal{max-width:var(--layout-normal)}
.section{padding:var(--space-5) 0}
.section-pinky{background:var(--color-pinky);border-top:1px solid var(--color-pinkest);border-bottom:1px solid var(--color-pinkest)}
.flex{display:flex}.flex-col{flex-direction:column}.flex-wrap{flex-wrap:wrap}.items-center{align-items:center}.justify-center{justify-content:center}.justify-between{justify-content:space-between}
.gap-sm{gap:var(--space-2)}.gap-md{gap:var(--space-3)}.gap-lg{gap:var(--space-4)}
.text-center{text-align:center}
.grid{display:grid;gap:var(--space-4)}
.grid-2,.grid-3{grid-template-columns:1fr}
`
}

func cssNav() string {
	return `
.nav{position:sticky;top:0;z-index:100;background:var(--color-white80);backdrop-filter:blur(8px);border-bottom:1px solid var(--color-border)}
.nav-inner{display:flex;align-items:center;justify-content:space-between;height:64px}
.logo{font-weight:700;font-size:20px}
.nav-links{display:flex;gap:var(--space-3);font-size:14px}
.nav-links a{color:var(--color-black50)}
.nav-links a:hover,.nav-links a.active{color:var(--color-black)}
.footer{border-top:1px solid var(--color-border);padding:var(--space-4) 0;font-size:14px;color:var(--color-black50)}
.footer nav{display:flex;flex-wrap:wrap;gap:var(--space-3);margin:var(--space-3) 0}
.hero{padding:var(--space-5) 0;text-align:center}
.hero-actions{display:flex;justify-content:center;align-items:center;gap:var(--space-3);margin-top:var(--space-4)}
`
}

func cssButtons() string {
	return `
.btn{display:inline-flex;align-items:center;justify-content:center;gap:8px;padding:12px 24px;font-size:16px;font-weight:600;border-radius:4px;border:0;cursor:pointer;transition:all 0.15s ease;background:var(--color-link);color:var(--color-white)}
.btn:hover{opacity:0.9}
.btn[disabled],.btn.loading{opacity:0.6;cursor:wait}
.btn-secondary{background:var(--color-secondary)}
.arrow-link{color:var(--color-link);font-weight:600}
.arrow-link::after{content:" →"}
`
}

func cssInput() string {
	focus := theme.Lighten(0.15, theme.Color("link"))
	return fmt.Sprintf(`
.input-box{display:flex;align-items:center;gap:8px;border-radius:4px;padding:0 12px;background:var(--color-white);box-shadow:inset 0 0 0 1px var(--color-border);transition:box-shadow 0.15s ease}
.input-box input{border:0;outline:0;background:transparent;padding:12px 0;font-size:16px;flex:1;min-width:0}
.input-box svg{stroke:var(--color-black50)}
.input-box.focus{box-shadow:inset 0 0 0 1px %[1]s}
.input-box.focus svg{stroke:%[1]s}
.input-icon img{width:16px;height:16px}
select.picker{border:0;border-bottom:2px solid var(--color-link);background:transparent;font-size:inherit;font-weight:600;color:var(--color-link);cursor:pointer;padding:0 4px}
`, focus)
}

func cssCards() string {
	return `
.card{background:var(--color-white);border-radius:8px;box-shadow:0 2px 8px rgba(0,0,0,0.08);overflow:hidden;transition:box-shadow 0.15s ease}
.card:hover{box-shadow:0 8px 24px rgba(0,0,0,0.12)}
.card-option{display:inline-block;background:none;border:0;cursor:pointer;padding:4px 8px;font-size:14px;text-transform:capitalize;color:var(--color-black50)}
.card-option.active{color:var(--color-black);font-weight:600;border-bottom:2px solid var(--color-link)}
.preview-card{display:flex;flex-direction:column;height:100%;color:var(--color-black)}
.preview-card .media{flex:1;min-height:0;background:var(--color-gray1) center/cover no-repeat}
.preview-card .media iframe,.preview-card .media video{width:100%;height:100%;border:0}
.preview-card .content{padding:12px 16px;border-top:1px solid var(--color-border)}
.preview-card .title{font-weight:600}
.preview-card .description{font-size:14px;color:var(--color-black50);white-space:nowrap;overflow:hidden;text-overflow:ellipsis}
.preview-card .url{font-size:12px;color:var(--color-black50)}
.feature{padding:var(--space-3)}
.feature h3{margin-bottom:var(--space-2)}
.feature p{color:var(--color-black80)}
.block{display:flex;flex-direction:column;align-items:center;gap:var(--space-4);padding:var(--space-4) 0}
.block img{width:100%;max-width:400px}
.block-text{max-width:var(--layout-small)}
.block-text p{color:var(--color-black80);margin-top:var(--space-3)}
`
}

func cssCode() string {
	return `
.code-editor{background:#0b0b0b;border-radius:8px;overflow:hidden;box-shadow:0 8px 24px rgba(0,0,0,0.2);text-align:left}
.code-header{display:flex;align-items:center;gap:8px;padding:10px 12px;background:#1a1a1a}
.code-dot{width:12px;height:12px;border-radius:50%}
.code-dot-close{background:var(--color-close)}
.code-dot-minimize{background:var(--color-minimize)}
.code-dot-fullscreen{background:var(--color-fullscreen)}
.code-title{flex:1;text-align:center;font-size:12px;color:#9a9a9a;margin-right:52px}
.code-content{padding:16px;overflow:auto;font-family:var(--font-mono);font-size:13px;line-height:1.6;color:#e6e6e6;max-height:420px}
.code-tabs{display:flex;gap:4px;padding:0 12px;background:#1a1a1a}
.code-tab{background:none;border:0;padding:8px;font-size:12px;color:#9a9a9a;cursor:pointer}
.code-tab.active{color:#ffffff;border-bottom:2px solid var(--color-link)}
.token-keyword{color:#ff79c6}
.token-string{color:#f1fa8c}
.token-comment{color:#6272a4}
.token-number{color:#bd93f9}
.token-property{color:#8be9fd}
.token-tag{color:#ff79c6}
.token-attr{color:#50fa7b}
.token-punctuation{color:#f8f8f2}
`
}

func cssPalette() string {
	return `
.palette{padding-top:var(--space-5)}
.palette h3{padding-bottom:var(--space-3);font-size:24px;font-weight:400}
.swatches{display:flex;flex-direction:column}
.swatch{display:flex;justify-content:space-between;padding:var(--space-4) var(--space-5);font-size:20px}
`
}

func cssFaq() string {
	return `
.faq{padding:var(--space-5) 0}
.faq-question h3{margin-bottom:var(--space-3)}
.faq-question h3 a:hover{text-decoration:underline}
.faq-answer p{color:var(--color-black80);margin-bottom:var(--space-3)}
.faq-answer a{color:var(--color-link)}
`
}

func cssMeta() string {
	return `
.demo-form{display:flex;flex-direction:column;gap:var(--space-2);margin:var(--space-4) auto;max-width:var(--layout-normal)}
.demo-error{color:var(--color-red7);font-size:14px}
.props{display:flex;gap:var(--space-4);justify-content:center;margin:var(--space-3) 0;font-family:var(--font-mono);font-size:14px}
.props li{display:flex;justify-content:space-between;gap:var(--space-3)}
.props .yes{color:var(--color-green7)}
.props .no{color:var(--color-black50)}
.timings{background:#3e55ff;color:var(--color-white);text-align:center}
.timings .caption{color:var(--color-white80)}
.sentence{font-size:clamp(24px,4vw,48px);font-weight:700;padding-top:var(--space-5)}
.stats{display:flex;justify-content:space-between;align-items:baseline;gap:var(--space-4);margin:var(--space-5) auto 0;max-width:var(--layout-normal)}
.stat{display:flex;flex-direction:column;align-items:center}
.stat-value{font-size:clamp(24px,4vw,48px);font-weight:700;font-variant-numeric:tabular-nums}
.stat-unit{font-size:20px;margin-left:8px}
.stat-label{color:var(--color-white80)}
.accent{color:#3e55ff}
.mql-card{width:100%;aspect-ratio:1.91/1;display:flex;flex-direction:column}
.mql-card iframe{width:100%;height:100%;border:0}
.mql-card.screenshot{background-size:cover;background-position:center;box-shadow:none}
.mql-card.embed{background:transparent;box-shadow:none;justify-content:center}
.mql-options{display:flex;justify-content:space-between;flex-wrap:wrap;padding:var(--space-4) 7px 0 15px}
`
}

func cssAnimations() string {
	return `
@keyframes fadeIn{from{opacity:0}to{opacity:1}}
.fade-in{animation:fadeIn 0.4s ease forwards}
@keyframes spin{to{transform:rotate(360deg)}}
.spinner{width:14px;height:14px;border:2px solid currentColor;border-right-color:transparent;border-radius:50%;animation:spin 0.8s linear infinite}
@media(prefers-reduced-motion:reduce){*{animation-duration:0.01ms!important;transition-duration:0.01ms!important}}
`
}

func cssAccessibility() string {
	return `
.sr-only{position:absolute;width:1px;height:1px;padding:0;margin:-1px;overflow:hidden;clip:rect(0,0,0,0);white-space:nowrap;border:0}
.skip-link{position:absolute;top:-40px;left:0;background:var(--color-link);color:var(--color-white);padding:8px 16px;z-index:1000}
.skip-link:focus{top:0}
`
}

func cssResponsive() string {
	return fmt.Sprintf(`
@media(min-width:%[1]s){
.demo-form{flex-direction:row}
.grid-2{grid-template-columns:repeat(2,1fr)}
}
@media(min-width:%[2]s){
.grid-3{grid-template-columns:repeat(3,1fr)}
.block{flex-direction:row}
.block.reverse{flex-direction:row-reverse}
.container{padding:0 24px}
}
`, theme.Breakpoints[0], theme.Breakpoints[1])
}
