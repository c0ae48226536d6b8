package formset

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attributes that carry slot-qualified names and therefore move with the
// slot when it is renumbered.
var slotAttributes = map[string]struct{}{
	"name":             {},
	"id":               {},
	"for":              {},
	"aria-controls":    {},
	"aria-labelledby":  {},
	"aria-describedby": {},
}

// slotIndexAttr carries the bare slot number read by removal controls.
const slotIndexAttr = "data-index"

var leadingTag = regexp.MustCompile(`^\s*<([a-zA-Z][a-zA-Z0-9]*)`)

// setFieldValue sets the value attribute of the element named name.
func setFieldValue(markup, name, value string) (string, error) {
	return rewriteFragment(markup, func(n *html.Node) bool {
		if n.Type != html.ElementNode || attr(n, "name") != name {
			return false
		}
		setAttr(n, "value", value)
		return true
	})
}

// setChecked toggles the checked attribute of the checkbox named name.
func setChecked(markup, name string, checked bool) (string, error) {
	return rewriteFragment(markup, func(n *html.Node) bool {
		if n.Type != html.ElementNode || attr(n, "name") != name {
			return false
		}
		if checked {
			if hasAttr(n, "checked") {
				return false
			}
			setAttr(n, "checked", "checked")
			return true
		}
		return removeAttr(n, "checked")
	})
}

// renumberMarkup moves every slot-qualified attribute from index from to
// index to. data-index attributes hold the bare slot number and move when
// their whole value equals from.
func renumberMarkup(markup, prefix string, from, to int) (string, error) {
	if from == to {
		return markup, nil
	}
	oldSlot := slotPrefix(prefix, from)
	newSlot := slotPrefix(prefix, to)
	oldIndex := strconv.Itoa(from)
	newIndex := strconv.Itoa(to)
	if !strings.Contains(markup, oldSlot) && !strings.Contains(markup, slotIndexAttr) {
		return markup, nil
	}
	return rewriteFragment(markup, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		changed := false
		for i := range n.Attr {
			a := &n.Attr[i]
			if a.Key == slotIndexAttr {
				if strings.TrimSpace(a.Val) == oldIndex {
					a.Val = newIndex
					changed = true
				}
				continue
			}
			if _, ok := slotAttributes[a.Key]; !ok {
				continue
			}
			if val, ok := replaceSlot(a.Val, oldSlot, newSlot); ok {
				a.Val = val
				changed = true
			}
		}
		return changed
	})
}

// replaceSlot replaces occurrences of oldSlot that start a name token: the
// start of the value, right after an id_ prefix, or after a separator such
// as a space. Longer names that merely end in the prefix are left alone.
func replaceSlot(val, oldSlot, newSlot string) (string, bool) {
	var (
		b       strings.Builder
		changed bool
		rest    = val
		offset  = 0
	)
	for {
		i := strings.Index(rest, oldSlot)
		if i < 0 {
			break
		}
		at := offset + i
		if slotBoundary(val, at) {
			b.WriteString(val[offset:at])
			b.WriteString(newSlot)
			changed = true
		} else {
			b.WriteString(val[offset : at+len(oldSlot)])
		}
		offset = at + len(oldSlot)
		rest = val[offset:]
	}
	if !changed {
		return val, false
	}
	b.WriteString(val[offset:])
	return b.String(), true
}

func slotBoundary(val string, at int) bool {
	if at == 0 || !isNameByte(val[at-1]) {
		return true
	}
	if at >= len(idPrefix) && val[at-len(idPrefix):at] == idPrefix {
		start := at - len(idPrefix)
		return start == 0 || !isNameByte(val[start-1])
	}
	return false
}

func isNameByte(c byte) bool {
	return c == '_' || c == '-' ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// SetHidden adds or removes the hidden attribute on the top-level elements
// of an entry's markup so soft-deleted entries stay in the submitted form
// without being shown.
func SetHidden(markup string, hidden bool) (string, error) {
	return rewriteFragment(markup, func(n *html.Node) bool {
		if n.Type != html.ElementNode || n.Parent != nil {
			return false
		}
		if hidden {
			if hasAttr(n, "hidden") {
				return false
			}
			setAttr(n, "hidden", "")
			return true
		}
		return removeAttr(n, "hidden")
	})
}

// rewriteFragment parses markup as an HTML fragment, applies visit to every
// node and re-renders it when visit reported a change. Unchanged markup is
// returned verbatim.
func rewriteFragment(markup string, visit func(*html.Node) bool) (string, error) {
	if strings.TrimSpace(markup) == "" {
		return markup, nil
	}

	nodes, err := html.ParseFragment(strings.NewReader(markup), fragmentContext(markup))
	if err != nil {
		return "", err
	}

	changed := false
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if visit(n) {
			changed = true
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, node := range nodes {
		walk(node)
	}
	if !changed {
		return markup, nil
	}

	var buf bytes.Buffer
	for _, node := range nodes {
		if err := html.Render(&buf, node); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// fragmentContext picks the parent element the fragment parser should assume
// so table rows and cells survive parsing.
func fragmentContext(markup string) *html.Node {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	match := leadingTag.FindStringSubmatch(markup)
	if len(match) < 2 {
		return ctx
	}
	switch strings.ToLower(match[1]) {
	case "tr":
		ctx.Data, ctx.DataAtom = "tbody", atom.Tbody
	case "td", "th":
		ctx.Data, ctx.DataAtom = "tr", atom.Tr
	case "li":
		ctx.Data, ctx.DataAtom = "ul", atom.Ul
	case "option":
		ctx.Data, ctx.DataAtom = "select", atom.Select
	}
	return ctx
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, key, value string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

func removeAttr(n *html.Node, key string) bool {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return true
		}
	}
	return false
}
