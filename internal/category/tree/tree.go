// Package tree holds an in-memory category forest built from one snapshot.
// Nodes live in a slice and refer to each other by index; ids are only used
// at the edges.
package tree

import (
	"sort"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/internal/model"
)

const none = -1

type node struct {
	cat      model.Category
	parent   int
	children []int
	level    int
}

type Tree struct {
	nodes []node
	index map[string]int
	roots []int
}

// Counts is the product count of one category.
type Counts struct {
	Direct     int `json:"direct_product_count"`
	Cumulative int `json:"cumulative_product_count"`
}

// Entry is one row of a pre-order listing.
type Entry struct {
	Category model.Category
	Level    int
	HasChild bool
	Counts   Counts
}

// Build links categories into a forest. A parent id that is not in the
// snapshot is a dangling reference; nodes that never reach a root form a cycle.
func Build(categories []model.Category) (*Tree, error) {
	t := &Tree{
		nodes: make([]node, len(categories)),
		index: make(map[string]int, len(categories)),
	}
	for i, c := range categories {
		t.nodes[i] = node{cat: c, parent: none}
		t.index[c.ID] = i
	}

	for i := range t.nodes {
		pid := t.nodes[i].cat.ParentID
		if pid == nil || *pid == "" {
			t.roots = append(t.roots, i)
			continue
		}
		p, ok := t.index[*pid]
		if !ok {
			return nil, apperror.DanglingReference("parent category", *pid)
		}
		t.nodes[i].parent = p
		t.nodes[p].children = append(t.nodes[p].children, i)
	}

	t.sortByName(t.roots)
	for i := range t.nodes {
		t.sortByName(t.nodes[i].children)
	}

	reached := 0
	for _, r := range t.roots {
		t.walk(r, func(i int) {
			reached++
			if p := t.nodes[i].parent; p != none {
				t.nodes[i].level = t.nodes[p].level + 1
			}
			t.nodes[i].cat.Level = t.nodes[i].level
		})
	}
	if reached != len(t.nodes) {
		return nil, apperror.Validation("category parents form a cycle", nil)
	}
	return t, nil
}

func (t *Tree) Len() int {
	return len(t.index)
}

func (t *Tree) Get(id string) (model.Category, bool) {
	i, ok := t.index[id]
	if !ok {
		return model.Category{}, false
	}
	return t.nodes[i].cat, true
}

// Children returns direct children ordered by name.
func (t *Tree) Children(id string) []model.Category {
	i, ok := t.index[id]
	if !ok {
		return nil
	}
	out := make([]model.Category, 0, len(t.nodes[i].children))
	for _, c := range t.nodes[i].children {
		out = append(out, t.nodes[c].cat)
	}
	return out
}

func (t *Tree) Roots() []model.Category {
	out := make([]model.Category, 0, len(t.roots))
	for _, r := range t.roots {
		out = append(out, t.nodes[r].cat)
	}
	return out
}

func (t *Tree) HasChildren(id string) bool {
	i, ok := t.index[id]
	return ok && len(t.nodes[i].children) > 0
}

// Ancestors returns the parent chain, root first.
func (t *Tree) Ancestors(id string) []model.Category {
	i, ok := t.index[id]
	if !ok {
		return nil
	}
	var chain []model.Category
	for p := t.nodes[i].parent; p != none; p = t.nodes[p].parent {
		chain = append(chain, t.nodes[p].cat)
	}
	for l, r := 0, len(chain)-1; l < r; l, r = l+1, r-1 {
		chain[l], chain[r] = chain[r], chain[l]
	}
	return chain
}

// Descendants returns the ids below id in pre-order, id itself excluded.
func (t *Tree) Descendants(id string) []string {
	i, ok := t.index[id]
	if !ok {
		return nil
	}
	var out []string
	t.walk(i, func(j int) {
		if j != i {
			out = append(out, t.nodes[j].cat.ID)
		}
	})
	return out
}

// DescendantSets maps every category to itself plus all of its descendants,
// computed in one bottom-up pass.
func (t *Tree) DescendantSets() map[string][]string {
	sets := make(map[string][]string, len(t.index))
	for _, i := range t.postOrder() {
		id := t.nodes[i].cat.ID
		set := []string{id}
		for _, c := range t.nodes[i].children {
			set = append(set, sets[t.nodes[c].cat.ID]...)
		}
		sets[id] = set
	}
	return sets
}

// Aggregate combines per-category direct counts into direct and cumulative
// counts for every node. Counts for ids outside the tree are ignored.
func (t *Tree) Aggregate(direct map[string]int) map[string]Counts {
	out := make(map[string]Counts, len(t.index))
	for _, i := range t.postOrder() {
		id := t.nodes[i].cat.ID
		c := Counts{Direct: direct[id]}
		c.Cumulative = c.Direct
		for _, ch := range t.nodes[i].children {
			c.Cumulative += out[t.nodes[ch].cat.ID].Cumulative
		}
		out[id] = c
	}
	return out
}

// Flatten lists the forest depth-first in pre-order, siblings by name.
func (t *Tree) Flatten(counts map[string]Counts) []Entry {
	out := make([]Entry, 0, len(t.index))
	for _, r := range t.roots {
		t.walk(r, func(i int) {
			n := t.nodes[i]
			out = append(out, Entry{
				Category: n.cat,
				Level:    n.level,
				HasChild: len(n.children) > 0,
				Counts:   counts[n.cat.ID],
			})
		})
	}
	return out
}

// Move re-parents id under newParentID ("" makes it a root) and returns the
// moved subtree with recomputed levels.
func (t *Tree) Move(id, newParentID string) ([]model.Category, error) {
	i, ok := t.index[id]
	if !ok {
		return nil, apperror.NotFound("category")
	}

	np := none
	if newParentID != "" {
		p, ok := t.index[newParentID]
		if !ok {
			return nil, apperror.DanglingReference("parent category", newParentID)
		}
		for a := p; a != none; a = t.nodes[a].parent {
			if a == i {
				return nil, apperror.FieldInvalid("parent_id", "a category cannot be moved under itself or its descendants")
			}
		}
		np = p
	}

	t.detach(i)
	t.nodes[i].parent = np
	if np == none {
		t.nodes[i].cat.ParentID = nil
		t.roots = append(t.roots, i)
		t.sortByName(t.roots)
	} else {
		pid := t.nodes[np].cat.ID
		t.nodes[i].cat.ParentID = &pid
		t.nodes[np].children = append(t.nodes[np].children, i)
		t.sortByName(t.nodes[np].children)
	}

	var moved []model.Category
	t.walk(i, func(j int) {
		level := 0
		if p := t.nodes[j].parent; p != none {
			level = t.nodes[p].level + 1
		}
		t.nodes[j].level = level
		t.nodes[j].cat.Level = level
		moved = append(moved, t.nodes[j].cat)
	})
	return moved, nil
}

// Rename changes the display name and keeps sibling order by name.
func (t *Tree) Rename(id, name string) bool {
	i, ok := t.index[id]
	if !ok {
		return false
	}
	t.nodes[i].cat.Name = name
	if p := t.nodes[i].parent; p != none {
		t.sortByName(t.nodes[p].children)
	} else {
		t.sortByName(t.roots)
	}
	return true
}

// Subtree returns id and all of its descendants, children before parents.
func (t *Tree) Subtree(id string) []string {
	i, ok := t.index[id]
	if !ok {
		return nil
	}
	var out []string
	t.postOrderFrom(i, func(j int) {
		out = append(out, t.nodes[j].cat.ID)
	})
	return out
}

// Remove deletes id and its whole subtree from the arena and returns the
// removed ids, children before parents.
func (t *Tree) Remove(id string) []string {
	i, ok := t.index[id]
	if !ok {
		return nil
	}
	removed := t.Subtree(id)
	t.detach(i)
	for _, rid := range removed {
		j := t.index[rid]
		t.nodes[j].children = nil
		delete(t.index, rid)
	}
	return removed
}

func (t *Tree) detach(i int) {
	p := t.nodes[i].parent
	if p == none {
		t.roots = without(t.roots, i)
		return
	}
	t.nodes[p].children = without(t.nodes[p].children, i)
}

func (t *Tree) walk(i int, visit func(int)) {
	stack := []int{i}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(n)
		ch := t.nodes[n].children
		for k := len(ch) - 1; k >= 0; k-- {
			stack = append(stack, ch[k])
		}
	}
}

func (t *Tree) postOrderFrom(i int, visit func(int)) {
	for _, c := range t.nodes[i].children {
		t.postOrderFrom(c, visit)
	}
	visit(i)
}

func (t *Tree) postOrder() []int {
	out := make([]int, 0, len(t.index))
	for _, r := range t.roots {
		t.postOrderFrom(r, func(i int) { out = append(out, i) })
	}
	return out
}

func (t *Tree) sortByName(ids []int) {
	sort.SliceStable(ids, func(a, b int) bool {
		na, nb := t.nodes[ids[a]].cat, t.nodes[ids[b]].cat
		if na.Name != nb.Name {
			return na.Name < nb.Name
		}
		return na.ID < nb.ID
	})
}

func without(ids []int, v int) []int {
	out := ids[:0]
	for _, id := range ids {
		if id != v {
			out = append(out, id)
		}
	}
	return out
}
