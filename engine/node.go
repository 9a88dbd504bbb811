package engine

import "github.com/lysgoup/adaptived/policy"

// node is an intrusive doubly linked list element owned by exactly one
// policy queue. It carries the host page handle and all per-page metadata;
// the metadata store maps PageID to this struct, so "one metadata entry"
// and "one queue node" are the same allocation.
type node struct {
	page Page
	meta policy.Meta

	// Intrusive queue links.
	prev *node
	next *node

	// owner is the queue this node currently resides in; nil while
	// detached. Maintained by the queue operations only.
	owner *queue

	// assigned names the policy whose kernel admitted the node. It
	// stays fixed across controller switches: resident pages remain in
	// their admitting kernel's queue.
	assigned policy.ID
}

// Page returns the host page handle (part of policy.Node).
func (n *node) Page() policy.Page { return n.page }

// Meta returns the mutable per-page metadata (part of policy.Node).
func (n *node) Meta() *policy.Meta { return &n.meta }
