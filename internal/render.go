package internal

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// Markup produces the display form of each recognised construct
type Markup struct {
	BlockMath  func(expr string) string
	InlineMath func(expr string) string
	Bold       func(text string) string
	LineBreak  string
}

// HTMLMarkup renders to the message list's HTML fragments
var HTMLMarkup = Markup{
	BlockMath:  func(expr string) string { return `<div class="math-display">` + expr + `</div>` },
	InlineMath: func(expr string) string { return `<span class="math-inline">` + expr + `</span>` },
	Bold:       func(text string) string { return "<strong>" + text + "</strong>" },
	LineBreak:  "<br>",
}

var (
	blockMathPattern  = regexp.MustCompile(`\$\$(.*?)\$\$`)
	inlineMathPattern = regexp.MustCompile(`\$(.*?)\$`)
	boldPattern       = regexp.MustCompile(`\*\*(.*?)\*\*`)
	newlinePattern    = regexp.MustCompile(`\n`)
)

// Render converts message text to markup. Block math is substituted before
// inline math so `$$` pairs are never consumed as two inline delimiters.
// Text is not HTML-escaped.
func Render(text string, m Markup) string {
	out := replaceGroup(blockMathPattern, text, m.BlockMath)
	out = replaceGroup(inlineMathPattern, out, m.InlineMath)
	out = replaceGroup(boldPattern, out, m.Bold)
	return newlinePattern.ReplaceAllLiteralString(out, m.LineBreak)
}

func replaceGroup(re *regexp.Regexp, text string, wrap func(string) string) string {
	return re.ReplaceAllStringFunc(text, func(match string) string {
		sub := re.FindStringSubmatch(match)
		return wrap(sub[1])
	})
}

// Renderer applies Render with an optional sanitising pass
type Renderer struct {
	markup   Markup
	sanitize *bluemonday.Policy
}

// NewRenderer creates a Renderer. With sanitize set, HTML in message text is
// stripped before markup is applied.
func NewRenderer(m Markup, sanitize bool) *Renderer {
	r := &Renderer{markup: m}
	if sanitize {
		r.sanitize = bluemonday.StrictPolicy()
	}
	return r
}

// Render formats text for display
func (r *Renderer) Render(text string) string {
	if r.sanitize != nil {
		text = r.sanitize.Sanitize(text)
	}
	return Render(text, r.markup)
}
