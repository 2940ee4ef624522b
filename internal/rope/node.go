package rope

import (
	"strings"
	"unicode/utf8"
)

// Tree structure constants.
const (
	// maxChildren is the maximum children per internal node.
	maxChildren = 8

	// maxLeafBytes is the target byte size of a leaf chunk. Leaves may
	// temporarily exceed it after a concat; splits restore it.
	maxLeafBytes = 512
)

// summary holds aggregated metrics for a subtree. All rope seeking is
// done against summaries so that index operations stay O(log n).
type summary struct {
	bytes  int
	chars  int
	breaks int // newline count
}

func (s summary) add(o summary) summary {
	return summary{
		bytes:  s.bytes + o.bytes,
		chars:  s.chars + o.chars,
		breaks: s.breaks + o.breaks,
	}
}

func summarize(chunk string) summary {
	return summary{
		bytes:  len(chunk),
		chars:  utf8.RuneCountInString(chunk),
		breaks: strings.Count(chunk, "\n"),
	}
}

// node is a node in the rope tree. Leaf nodes (height 0) hold a text
// chunk; internal nodes hold children. Nodes are immutable after
// construction: edits build new nodes along the touched spine.
type node struct {
	height   int
	sum      summary
	children []*node // internal nodes only
	chunk    string  // leaf nodes only
}

func newLeaf(chunk string) *node {
	return &node{sum: summarize(chunk), chunk: chunk}
}

func newInternal(children []*node) *node {
	if len(children) == 0 {
		return newLeaf("")
	}
	n := &node{
		height:   children[0].height + 1,
		children: children,
	}
	for _, c := range children {
		n.sum = n.sum.add(c.sum)
	}
	return n
}

func (n *node) isLeaf() bool {
	return n.height == 0
}

// splitChunk splits a string at a character offset without breaking a
// codepoint: the split point is located by stepping whole runes.
func splitChunk(chunk string, chars int) (string, string) {
	b := 0
	for i := 0; i < chars && b < len(chunk); i++ {
		_, size := utf8.DecodeRuneInString(chunk[b:])
		b += size
	}
	return chunk[:b], chunk[b:]
}

// split divides the subtree at a character offset. Left holds
// [0, chars), right holds [chars, end).
func (n *node) split(chars int) (*node, *node) {
	if chars <= 0 {
		return newLeaf(""), n
	}
	if chars >= n.sum.chars {
		return n, newLeaf("")
	}

	if n.isLeaf() {
		l, r := splitChunk(n.chunk, chars)
		return newLeaf(l), newLeaf(r)
	}

	var left, right []*node
	offset := 0
	for _, child := range n.children {
		childChars := child.sum.chars
		switch {
		case offset+childChars <= chars:
			left = append(left, child)
		case offset >= chars:
			right = append(right, child)
		default:
			cl, cr := child.split(chars - offset)
			if cl.sum.bytes > 0 {
				left = append(left, cl)
			}
			if cr.sum.bytes > 0 {
				right = append(right, cr)
			}
		}
		offset += childChars
	}
	return buildFromNodes(left), buildFromNodes(right)
}

// buildFromNodes assembles a balanced tree from nodes of mixed heights
// produced by a split. Nodes arrive in text order.
func buildFromNodes(nodes []*node) *node {
	switch len(nodes) {
	case 0:
		return newLeaf("")
	case 1:
		return nodes[0]
	}
	root := nodes[0]
	for _, n := range nodes[1:] {
		root = concat(root, n)
	}
	return root
}

// concat joins two subtrees, keeping the result balanced by wrapping
// the shorter tree until heights match and then merging at that level.
func concat(left, right *node) *node {
	if left == nil || left.sum.bytes == 0 {
		if right == nil {
			return newLeaf("")
		}
		return right
	}
	if right == nil || right.sum.bytes == 0 {
		return left
	}

	if left.isLeaf() && right.isLeaf() {
		if left.sum.bytes+right.sum.bytes <= maxLeafBytes {
			return newLeaf(left.chunk + right.chunk)
		}
		return newInternal([]*node{left, right})
	}

	for left.height < right.height {
		left = newInternal([]*node{left})
	}
	for right.height < left.height {
		right = newInternal([]*node{right})
	}

	merged := make([]*node, 0, len(left.children)+len(right.children))
	if left.isLeaf() {
		merged = append(merged, left, right)
	} else {
		merged = append(merged, left.children...)
		merged = append(merged, right.children...)
	}
	if len(merged) <= maxChildren {
		return newInternal(merged)
	}
	var parents []*node
	for i := 0; i < len(merged); i += maxChildren {
		end := i + maxChildren
		if end > len(merged) {
			end = len(merged)
		}
		parents = append(parents, newInternal(merged[i:end]))
	}
	return buildFromNodes(parents)
}

// charToLine counts the newlines in [0, chars).
func (n *node) charToLine(chars int) int {
	if chars <= 0 {
		return 0
	}
	if chars >= n.sum.chars {
		return n.sum.breaks
	}
	if n.isLeaf() {
		breaks := 0
		i := 0
		for _, r := range n.chunk {
			if i >= chars {
				break
			}
			if r == '\n' {
				breaks++
			}
			i++
		}
		return breaks
	}
	breaks := 0
	for _, child := range n.children {
		if chars < child.sum.chars {
			return breaks + child.charToLine(chars)
		}
		chars -= child.sum.chars
		breaks += child.sum.breaks
	}
	return breaks
}

// lineToChar returns the character offset of the start of the given
// line: the position just after the line-th newline.
func (n *node) lineToChar(line int) int {
	if line <= 0 {
		return 0
	}
	if line > n.sum.breaks {
		return n.sum.chars
	}
	if n.isLeaf() {
		breaks := 0
		i := 0
		for _, r := range n.chunk {
			i++
			if r == '\n' {
				breaks++
				if breaks == line {
					return i
				}
			}
		}
		return i
	}
	chars := 0
	for _, child := range n.children {
		if line <= child.sum.breaks {
			return chars + child.lineToChar(line)
		}
		line -= child.sum.breaks
		chars += child.sum.chars
	}
	return chars
}

// appendTo writes the subtree's text to the builder.
func (n *node) appendTo(sb *strings.Builder) {
	if n.isLeaf() {
		sb.WriteString(n.chunk)
		return
	}
	for _, child := range n.children {
		child.appendTo(sb)
	}
}

// appendRange writes the text in the character range [start, end).
func (n *node) appendRange(sb *strings.Builder, start, end int) {
	if start >= end {
		return
	}
	if n.isLeaf() {
		_, rest := splitChunk(n.chunk, start)
		mid, _ := splitChunk(rest, end-start)
		sb.WriteString(mid)
		return
	}
	offset := 0
	for _, child := range n.children {
		childChars := child.sum.chars
		childEnd := offset + childChars
		if childEnd <= start {
			offset = childEnd
			continue
		}
		if offset >= end {
			break
		}
		cs := 0
		if start > offset {
			cs = start - offset
		}
		ce := childChars
		if end < childEnd {
			ce = end - offset
		}
		child.appendRange(sb, cs, ce)
		offset = childEnd
	}
}
