package structure

// ListNode links one value into a List. Nodes are only created by PushBack.
type ListNode[T any] struct {
	Value T
	prev  *ListNode[T]
	next  *ListNode[T]
	list  *List[T]
}

// List is a doubly linked list preserving insertion order.
type List[T any] struct {
	head *ListNode[T]
	tail *ListNode[T]
	len  int
}

func NewList[T any]() *List[T] {
	return &List[T]{}
}

// PushBack appends v after the current tail in O(1).
func (l *List[T]) PushBack(v T) *ListNode[T] {
	n := &ListNode[T]{Value: v, list: l}
	if l.tail == nil {
		l.head = n
		l.tail = n
	} else {
		n.prev = l.tail
		l.tail.next = n
		l.tail = n
	}
	l.len++
	return n
}

// Remove unlinks n in O(1). Nodes that belong to another list, or were
// already removed, are ignored.
func (l *List[T]) Remove(n *ListNode[T]) bool {
	if n == nil || n.list != l {
		return false
	}
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next, n.list = nil, nil, nil
	l.len--
	return true
}

func (l *List[T]) Len() int { return l.len }

// Each walks the list head to tail until fn returns false.
func (l *List[T]) Each(fn func(v T) bool) {
	for n := l.head; n != nil; n = n.next {
		if !fn(n.Value) {
			return
		}
	}
}
