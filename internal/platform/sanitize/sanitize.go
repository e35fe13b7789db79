// Copyright (c) 2026 Hellomouse. All rights reserved.

/*
Package sanitize compiles the HTML allow-list ruleset used to clean pin
content on write.

The allow-list keeps formatting and structural tags, `style`/`script`/`object`
and similar are stripped outright, and `<a href>` rejects anything starting
with a `javascript:`-style scheme.
*/
package sanitize

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// hrefPattern matches any href of at least two characters whose first
// character is neither a lowercase "j" nor whitespace. It rejects
// "javascript:..." and also every other href beginning with "j", and
// single-character hrefs such as "/".
var hrefPattern = regexp.MustCompile(`^[^j\s].+?$`)

// Policy is the process-wide, read-only HTML sanitizer ruleset. It is
// built once at startup and reused for every pin write.
type Policy struct {
	policy *bluemonday.Policy
}

// NewPolicy compiles the allow-list ruleset.
func NewPolicy() *Policy {
	p := bluemonday.NewPolicy()

	textTags := []string{
		"p", "ol", "ul", "li",
		"b", "strong", "i", "em", "mark", "small", "del", "ins", "sub", "sup", "br",
		"h1", "h2", "h3", "h4", "h5",
		"span", "div", "code", "pre",
		"table", "tr", "td", "thead", "tbody",
	}
	p.AllowElements(textTags...)
	p.AllowAttrs("style", "class").OnElements(textTags...)

	p.AllowAttrs("style", "class", "rel", "target").OnElements("a")
	p.AllowAttrs("href").Matching(hrefPattern).OnElements("a")

	p.AllowAttrs("style", "class", "src", "width", "height").OnElements("img")
	p.AllowElements("a", "img")

	// script/object/iframe/etc are absent from the allow-list, so bluemonday
	// strips them along with their contents by default; comments are
	// dropped too (bluemonday never keeps them unless AllowComments is
	// called).

	return &Policy{policy: p}
}

// Clean sanitizes input HTML against the compiled allow-list.
func (policy *Policy) Clean(input string) string {
	return policy.policy.Sanitize(input)
}
