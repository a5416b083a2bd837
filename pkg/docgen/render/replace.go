package render

import (
	"strings"

	"github.com/benjaminschreck/go-docgen/pkg/docgen/xml"
)

// span locates an occurrence in the concatenated paragraph text
type span struct {
	start, end int
}

// ReplaceText replaces every occurrence of old in the paragraph's visible
// text with repl, including occurrences that Word split across several runs.
// The replacement lands in the run holding the first character of the
// occurrence, so it takes that run's formatting. Runs that are emptied keep
// their place. It returns the number of occurrences replaced.
//
// The resulting paragraph text always equals
// strings.ReplaceAll(para.GetText(), old, repl).
func ReplaceText(para *xml.Paragraph, old, repl string) int {
	if old == "" {
		return 0
	}
	nodes := para.TextNodes()
	if len(nodes) == 0 {
		return 0
	}

	// offsets[i] is the position of nodes[i] in the concatenated text
	offsets := make([]int, len(nodes))
	var sb strings.Builder
	for i, n := range nodes {
		offsets[i] = sb.Len()
		sb.WriteString(n.Value)
	}
	full := sb.String()

	var matches []span
	for pos := 0; ; {
		i := strings.Index(full[pos:], old)
		if i < 0 {
			break
		}
		start := pos + i
		matches = append(matches, span{start: start, end: start + len(old)})
		pos = start + len(old)
	}
	if len(matches) == 0 {
		return 0
	}

	// Right to left, so earlier offsets stay valid while editing
	for m := len(matches) - 1; m >= 0; m-- {
		replaceSpan(nodes, offsets, matches[m], repl)
	}
	return len(matches)
}

// replaceSpan rewrites the nodes covered by s. The first covered node keeps
// its text before the match followed by repl, inner nodes are emptied and
// the last covered node keeps its text after the match.
func replaceSpan(nodes []*xml.Text, offsets []int, s span, repl string) {
	first, last := -1, -1
	for i, n := range nodes {
		nodeStart, nodeEnd := offsets[i], offsets[i]+len(n.Value)
		if first < 0 && s.start >= nodeStart && s.start < nodeEnd {
			first = i
		}
		if s.end > nodeStart && s.end <= nodeEnd {
			last = i
			break
		}
	}
	if first < 0 || last < 0 {
		return
	}

	if first == last {
		n := nodes[first]
		local := s.start - offsets[first]
		n.Set(n.Value[:local] + repl + n.Value[local+(s.end-s.start):])
		return
	}

	head := nodes[first]
	head.Set(head.Value[:s.start-offsets[first]] + repl)
	for i := first + 1; i < last; i++ {
		nodes[i].Set("")
	}
	tail := nodes[last]
	tail.Set(tail.Value[s.end-offsets[last]:])
}

// ContainsText reports whether old occurs in the paragraph's visible text
func ContainsText(para *xml.Paragraph, old string) bool {
	return old != "" && strings.Contains(para.GetText(), old)
}
