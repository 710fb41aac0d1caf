package dat

import (
	"html"
	"strings"
)

// Header is the catalog's top-level <header> block.
type Header struct {
	Manufacturer string
	ConsoleName  string
	// Name is the full declared <name> text, e.g.
	// "Nintendo - Super Nintendo Entertainment System (20251012-045317)".
	Name string
}

// header locates the <header> block and extracts the declared console name
// from its "Manufacturer - Model (...)" <name>. The cursor is left after
// </header>.
func (c *cursor) header() (Header, error) {
	start := strings.Index(c.rest(), "<header>")
	if start < 0 {
		return Header{}, malformed(c.pos, "missing <header>")
	}
	start += c.pos + len("<header>")

	stop := strings.Index(c.src[start:c.end], "</header>")
	if stop < 0 {
		return Header{}, malformed(start, "unterminated <header>")
	}
	stop += start

	block := c.src[start:stop]
	nameAt := strings.Index(block, "<name>")
	if nameAt < 0 {
		return Header{}, malformed(start, "header has no <name>")
	}
	nameAt += len("<name>")
	nameEnd := strings.Index(block[nameAt:], "</name>")
	if nameEnd < 0 {
		return Header{}, malformed(start+nameAt, "unterminated header <name>")
	}

	raw := block[nameAt : nameAt+nameEnd]
	manufacturer, model, ok := strings.Cut(raw, "-")
	if !ok {
		return Header{}, malformed(start+nameAt, "header name %q is not \"manufacturer - model\"", raw)
	}
	if i := strings.IndexByte(model, '('); i >= 0 {
		model = model[:i]
	}
	model = strings.TrimSpace(html.UnescapeString(model))
	if model == "" {
		return Header{}, malformed(start+nameAt, "header name %q has an empty model", raw)
	}

	c.pos = stop + len("</header>")
	return Header{
		Manufacturer: strings.TrimSpace(html.UnescapeString(manufacturer)),
		ConsoleName:  model,
		Name:         strings.TrimSpace(html.UnescapeString(raw)),
	}, nil
}
