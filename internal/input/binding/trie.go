package binding

import (
	"sort"

	"filephile/internal/input/action"
	"filephile/internal/input/key"
)

// trie indexes bindings by the canonical spelling of each key
type trie struct {
	root *trieNode
}

type trieNode struct {
	children map[string]*trieNode
	binding  *Binding
}

func newTrie() *trie {
	return &trie{root: &trieNode{children: make(map[string]*trieNode)}}
}

func (t *trie) insert(b *Binding) {
	node := t.root
	for _, ev := range b.Keys {
		k := ev.String()
		child, ok := node.children[k]
		if !ok {
			child = &trieNode{children: make(map[string]*trieNode)}
			node.children[k] = child
		}
		node = child
	}
	node.binding = b
}

func (t *trie) find(seq key.Sequence) *trieNode {
	node := t.root
	for _, ev := range seq {
		child, ok := node.children[ev.String()]
		if !ok {
			return nil
		}
		node = child
	}
	return node
}

// lookup returns the binding for exactly seq and whether a longer binding
// starts with seq
func (t *trie) lookup(seq key.Sequence) (exact *Binding, longer bool) {
	node := t.find(seq)
	if node == nil {
		return nil, false
	}
	return node.binding, len(node.children) > 0
}

// conflicts reports a binding that seq is a prefix of, or that is a prefix of seq
func (t *trie) conflicts(seq key.Sequence) *Binding {
	node := t.root
	for _, ev := range seq {
		if node.binding != nil {
			return node.binding
		}
		child, ok := node.children[ev.String()]
		if !ok {
			return nil
		}
		node = child
	}
	var found *Binding
	node.walk(func(b *Binding) {
		if found == nil && !b.Keys.Equal(seq) {
			found = b
		}
	})
	return found
}

func (n *trieNode) walk(fn func(*Binding)) {
	if n.binding != nil {
		fn(n.binding)
	}
	keys := make([]string, 0, len(n.children))
	for k := range n.children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n.children[k].walk(fn)
	}
}

func (t *trie) all() []Binding {
	var out []Binding
	t.root.walk(func(b *Binding) { out = append(out, *b) })
	return out
}

// Binding maps a key sequence in a mode, or globally, to an action
type Binding struct {
	Mode   action.Mode
	Global bool
	Keys   key.Sequence
	Action action.Action
	// Chain marks a binding that is allowed to share a prefix with another
	// binding when prefix conflicts are rejected
	Chain bool
	// Description is shown in the help view
	Description string
}

// Scope returns the mode name or "global"
func (b Binding) Scope() string {
	if b.Global {
		return "global"
	}
	return b.Mode.String()
}
