package dat

import "strings"

// Attrs maps attribute names to their raw, still entity-encoded values.
type Attrs map[string]string

// cursor walks src[pos:end]. Offsets handed out are always absolute in src so
// errors point at the right place in the file even inside a sub-block.
type cursor struct {
	src string
	pos int
	end int
}

func newCursor(src string) *cursor {
	return &cursor{src: src, end: len(src)}
}

func (c *cursor) rest() string { return c.src[c.pos:c.end] }

// bounded returns a cursor over [c.pos, end) sharing the same source.
func (c *cursor) bounded(end int) *cursor {
	if end > c.end {
		end = c.end
	}
	return &cursor{src: c.src, pos: c.pos, end: end}
}

// find returns the absolute offset of the next "<name" tag opening, skipping
// longer tag names that merely share the prefix. It returns c.end if none.
func (c *cursor) find(name string) int {
	open := "<" + name
	from := c.pos
	for from < c.end {
		i := strings.Index(c.src[from:c.end], open)
		if i < 0 {
			return c.end
		}
		at := from + i
		next := at + len(open)
		if next >= c.end || isTagBoundary(c.src[next]) {
			return at
		}
		from = next
	}
	return c.end
}

// seek moves past the next "<name" opening and reports where the tag started.
func (c *cursor) seek(name string) (int, bool) {
	at := c.find(name)
	if at >= c.end {
		return 0, false
	}
	c.pos = at + 1 + len(name)
	return at, true
}

// attributes parses key="value" pairs up to ">" or "/>".
func (c *cursor) attributes() (Attrs, error) {
	attrs := make(Attrs)
	for {
		c.skipSpace()
		if c.pos >= c.end {
			return nil, malformed(c.pos, "unterminated tag")
		}
		rest := c.rest()
		switch {
		case strings.HasPrefix(rest, "/>"):
			c.pos += 2
			return attrs, nil
		case rest[0] == '>':
			c.pos++
			return attrs, nil
		}

		start := c.pos
		for c.pos < c.end && isKeyChar(c.src[c.pos]) {
			c.pos++
		}
		if c.pos == start {
			return nil, malformed(c.pos, "expected attribute name, found %q", c.src[c.pos])
		}
		key := c.src[start:c.pos]

		c.skipSpace()
		if c.pos >= c.end || c.src[c.pos] != '=' {
			return nil, malformed(c.pos, "expected '=' after attribute %q", key)
		}
		c.pos++
		c.skipSpace()
		if c.pos >= c.end || c.src[c.pos] != '"' {
			return nil, malformed(c.pos, "expected quoted value for attribute %q", key)
		}
		c.pos++

		closing := strings.IndexByte(c.rest(), '"')
		if closing < 0 {
			return nil, malformed(c.pos, "unterminated value for attribute %q", key)
		}
		attrs[key] = c.src[c.pos : c.pos+closing]
		c.pos += closing + 1
	}
}

func (c *cursor) skipSpace() {
	for c.pos < c.end && isSpace(c.src[c.pos]) {
		c.pos++
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isTagBoundary(b byte) bool {
	return isSpace(b) || b == '>' || b == '/'
}

func isKeyChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_' || b == '-' || b == ':'
}
