package router

import (
	"fmt"
	"strings"
)

// Trie resolves [method, path segments...] keys to cached routes.
//
// The structure is write-once: Register is only called during
// single-threaded startup, after which lookups are lock-free. Literal
// children win over a parameter child, which wins over a catch-all.
type Trie struct {
	methods         map[string]*trieNode
	caseInsensitive bool
}

// trieNode is one level of the segment trie.
type trieNode struct {
	children map[string]*trieNode
	param    *paramEdge
	catchAll *catchAllEdge
	cached   *CachedRoute
}

// paramEdge is a single-segment parameter child.
type paramEdge struct {
	name string
	node *trieNode
}

// catchAllEdge terminates a pattern by matching all remaining segments.
type catchAllEdge struct {
	name   string
	cached *CachedRoute
}

// NewTrie creates an empty trie. When caseInsensitive is true, literal
// segments compare case-insensitively; the option applies to the whole
// trie, not per route.
func NewTrie(caseInsensitive bool) *Trie {
	return &Trie{
		methods:         make(map[string]*trieNode),
		caseInsensitive: caseInsensitive,
	}
}

// Register stores a cached route under [method, segments...]. A later
// registration for the same key overwrites the earlier one (last write
// wins). A parameter at a position where another route already declared
// a parameter under a different name is rejected: the edge carries a
// single binding name, so accepting both would silently bind the later
// route's values under the earlier name. Segments after a catch-all are
// unreachable and must not be passed; the registry validates patterns
// before calling Register.
func (t *Trie) Register(method string, segments []Segment, cached *CachedRoute) error {
	method = strings.ToUpper(method)
	node := t.methods[method]
	if node == nil {
		node = newTrieNode()
		t.methods[method] = node
	}

	for _, seg := range segments {
		switch seg.Kind {
		case SegmentParam:
			if node.param == nil {
				node.param = &paramEdge{name: seg.Value, node: newTrieNode()}
			} else if node.param.name != seg.Value {
				return fmt.Errorf("parameter %q conflicts with %q declared at the same position",
					seg.Value, node.param.name)
			}
			node = node.param.node

		case SegmentCatchAll:
			node.catchAll = &catchAllEdge{name: seg.Value, cached: cached}
			return nil

		default:
			key := t.fold(seg.Value)
			child := node.children[key]
			if child == nil {
				child = newTrieNode()
				node.children[key] = child
			}
			node = child
		}
	}

	node.cached = cached
	return nil
}

// Lookup resolves a method and literal path segments to a cached route,
// writing any extracted parameter bindings into the caller-supplied
// request. Lookup never mutates the trie; a failed lookup leaves the
// request's bindings untouched.
func (t *Trie) Lookup(method string, parts []string, req *Request) *CachedRoute {
	root := t.methods[strings.ToUpper(method)]
	if root == nil {
		return nil
	}

	var bindings []paramBinding
	cached := t.lookup(root, parts, 0, &bindings)
	if cached == nil {
		return nil
	}

	for _, b := range bindings {
		req.setParam(b.name, b.value)
	}
	return cached
}

// paramBinding is a parameter extracted during trie traversal. Bindings
// accumulate during the recursive walk and are discarded on backtrack,
// so only the winning match's bindings reach the request.
type paramBinding struct {
	name  string
	value string
}

// lookup walks the trie recursively, trying literal, parameter, and
// catch-all children in precedence order with backtracking.
func (t *Trie) lookup(n *trieNode, parts []string, idx int, bindings *[]paramBinding) *CachedRoute {
	if idx == len(parts) {
		if n.cached != nil {
			return n.cached
		}
		// A catch-all also matches zero remaining segments.
		if n.catchAll != nil {
			*bindings = append(*bindings, paramBinding{name: n.catchAll.name})
			return n.catchAll.cached
		}
		return nil
	}

	segment := parts[idx]

	if child := n.children[t.fold(segment)]; child != nil {
		if cached := t.lookup(child, parts, idx+1, bindings); cached != nil {
			return cached
		}
	}

	if n.param != nil {
		*bindings = append(*bindings, paramBinding{name: n.param.name, value: segment})
		if cached := t.lookup(n.param.node, parts, idx+1, bindings); cached != nil {
			return cached
		}
		*bindings = (*bindings)[:len(*bindings)-1]
	}

	if n.catchAll != nil {
		*bindings = append(*bindings, paramBinding{
			name:  n.catchAll.name,
			value: strings.Join(parts[idx:], "/"),
		})
		return n.catchAll.cached
	}

	return nil
}

// fold normalizes a literal segment according to the trie's case mode.
func (t *Trie) fold(segment string) string {
	if t.caseInsensitive {
		return strings.ToLower(segment)
	}
	return segment
}

func newTrieNode() *trieNode {
	return &trieNode{children: make(map[string]*trieNode)}
}
