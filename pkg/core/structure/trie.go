package structure

// trieNode owns its children and the values whose key ends exactly here.
type trieNode[T comparable] struct {
	children map[rune]*trieNode[T]
	values   []T
}

func newTrieNode[T comparable]() *trieNode[T] {
	return &trieNode[T]{children: make(map[rune]*trieNode[T])}
}

func (n *trieNode[T]) dead() bool {
	return len(n.values) == 0 && len(n.children) == 0
}

func (n *trieNode[T]) indexOf(v T) int {
	for i, x := range n.values {
		if x == v {
			return i
		}
	}
	return -1
}

// PrefixTree maps string keys, one rune per edge, to sets of values.
// Several values may share a key and the same value may live under several keys.
// Not safe for concurrent use.
type PrefixTree[T comparable] struct {
	root  *trieNode[T]
	size  int
	nodes int
}

func NewPrefixTree[T comparable]() *PrefixTree[T] {
	return &PrefixTree[T]{root: newTrieNode[T](), nodes: 1}
}

// Insert stores v under key. Inserting the same (key, v) pair twice is a no-op.
// The empty key stores v at the root.
func (t *PrefixTree[T]) Insert(key string, v T) {
	node := t.root
	for _, ch := range key {
		child, ok := node.children[ch]
		if !ok {
			child = newTrieNode[T]()
			node.children[ch] = child
			t.nodes++
		}
		node = child
	}
	if node.indexOf(v) >= 0 {
		return
	}
	node.values = append(node.values, v)
	t.size++
}

// Remove deletes v from key's terminal node and detaches every node left
// without values and children, walking back toward the root. The root is
// never detached. Missing keys are ignored. Reports whether v was removed.
func (t *PrefixTree[T]) Remove(key string, v T) bool {
	type step struct {
		parent *trieNode[T]
		edge   rune
	}
	path := make([]step, 0, len(key))

	node := t.root
	for _, ch := range key {
		child, ok := node.children[ch]
		if !ok {
			return false
		}
		path = append(path, step{parent: node, edge: ch})
		node = child
	}

	i := node.indexOf(v)
	if i < 0 {
		return false
	}
	last := len(node.values) - 1
	copy(node.values[i:], node.values[i+1:])
	var zero T
	node.values[last] = zero
	node.values = node.values[:last]
	t.size--

	for j := len(path) - 1; j >= 0 && node.dead(); j-- {
		parent := path[j].parent
		delete(parent.children, path[j].edge)
		t.nodes--
		node = parent
	}
	return true
}

// SearchPrefix returns every value stored under a key that starts with prefix,
// including values stored under prefix itself. Order is unspecified.
func (t *PrefixTree[T]) SearchPrefix(prefix string) []T {
	node := t.root
	for _, ch := range prefix {
		child, ok := node.children[ch]
		if !ok {
			return nil
		}
		node = child
	}

	var out []T
	stack := []*trieNode[T]{node}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n.values...)
		for _, child := range n.children {
			stack = append(stack, child)
		}
	}
	return out
}

// Len returns the number of stored (key, value) pairs.
func (t *PrefixTree[T]) Len() int { return t.size }

// NodeCount returns the number of nodes, root included.
func (t *PrefixTree[T]) NodeCount() int { return t.nodes }
