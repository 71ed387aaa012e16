// Package criteriatree indexes the criteria of one version by alias.
//
// Nodes live in a slice and refer to their parent by alias. The index keeps
// aliases unique, makes every parent alias resolve to a node of the same
// version and rejects parent chains that loop back on themselves.
package criteriatree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pwannenmacher/criteria-settings/internal/models"
)

var (
	ErrEmptyAlias     = errors.New("alias must not be empty")
	ErrDuplicateAlias = errors.New("alias already exists in this version")
	ErrUnknownParent  = errors.New("parent alias does not exist in this version")
	ErrCycle          = errors.New("parent alias creates a cycle")
	ErrUnknownAlias   = errors.New("alias does not exist in this version")
)

// AliasError ties a tree error to the offending field and alias
type AliasError struct {
	Field string
	Alias string
	Err   error
}

func (e *AliasError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Field, e.Alias, e.Err)
}

func (e *AliasError) Unwrap() error {
	return e.Err
}

// Index is an alias index over the criteria of a single version
type Index struct {
	nodes   []models.Criteria
	byAlias map[string]int
}

// New returns an empty index
func New() *Index {
	return &Index{byAlias: make(map[string]int)}
}

// Build indexes criteria in any order and validates the whole tree
func Build(criteria []models.Criteria) (*Index, error) {
	ix := New()
	for _, c := range criteria {
		alias := strings.TrimSpace(c.Alias)
		if alias == "" {
			return nil, &AliasError{Field: "alias", Alias: c.Alias, Err: ErrEmptyAlias}
		}
		if _, ok := ix.byAlias[alias]; ok {
			return nil, &AliasError{Field: "alias", Alias: alias, Err: ErrDuplicateAlias}
		}
		c.Alias = alias
		ix.byAlias[alias] = len(ix.nodes)
		ix.nodes = append(ix.nodes, c)
	}

	for _, c := range ix.nodes {
		if p := parentOf(c); p != "" {
			if _, ok := ix.byAlias[p]; !ok {
				return nil, &AliasError{Field: "parent_alias", Alias: p, Err: ErrUnknownParent}
			}
		}
	}

	for _, c := range ix.nodes {
		if ix.loops(c.Alias) {
			return nil, &AliasError{Field: "parent_alias", Alias: parentOf(c), Err: ErrCycle}
		}
	}
	return ix, nil
}

// Add validates c against the index and appends it
func (ix *Index) Add(c models.Criteria) error {
	alias := strings.TrimSpace(c.Alias)
	if alias == "" {
		return &AliasError{Field: "alias", Alias: c.Alias, Err: ErrEmptyAlias}
	}
	if _, ok := ix.byAlias[alias]; ok {
		return &AliasError{Field: "alias", Alias: alias, Err: ErrDuplicateAlias}
	}

	c.Alias = alias
	if p := parentOf(c); p != "" {
		if p == alias {
			return &AliasError{Field: "parent_alias", Alias: p, Err: ErrCycle}
		}
		if _, ok := ix.byAlias[p]; !ok {
			return &AliasError{Field: "parent_alias", Alias: p, Err: ErrUnknownParent}
		}
	}

	ix.byAlias[alias] = len(ix.nodes)
	ix.nodes = append(ix.nodes, c)
	return nil
}

// Has reports whether alias is indexed
func (ix *Index) Has(alias string) bool {
	_, ok := ix.byAlias[alias]
	return ok
}

// Get returns the node with the given alias
func (ix *Index) Get(alias string) (models.Criteria, bool) {
	i, ok := ix.byAlias[alias]
	if !ok {
		return models.Criteria{}, false
	}
	return ix.nodes[i], true
}

// Parent returns the parent node of alias, if any
func (ix *Index) Parent(alias string) (models.Criteria, bool) {
	c, ok := ix.Get(alias)
	if !ok {
		return models.Criteria{}, false
	}
	return ix.Get(parentOf(c))
}

// Children returns the direct children of alias in insertion order
func (ix *Index) Children(alias string) []models.Criteria {
	var out []models.Criteria
	for _, c := range ix.nodes {
		if parentOf(c) == alias {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of indexed nodes
func (ix *Index) Len() int {
	return len(ix.nodes)
}

// ValidateRelationship checks that both ends of a relationship are indexed
func (ix *Index) ValidateRelationship(from, to string) error {
	if !ix.Has(from) {
		return &AliasError{Field: "from_alias", Alias: from, Err: ErrUnknownAlias}
	}
	if !ix.Has(to) {
		return &AliasError{Field: "to_alias", Alias: to, Err: ErrUnknownAlias}
	}
	return nil
}

// loops walks the parent chain from alias and reports whether it revisits a node
func (ix *Index) loops(alias string) bool {
	seen := make(map[string]bool, len(ix.nodes))
	for cur := alias; cur != ""; {
		if seen[cur] {
			return true
		}
		seen[cur] = true

		i, ok := ix.byAlias[cur]
		if !ok {
			return false
		}
		cur = parentOf(ix.nodes[i])
	}
	return false
}

func parentOf(c models.Criteria) string {
	if c.ParentAlias == nil {
		return ""
	}
	return strings.TrimSpace(*c.ParentAlias)
}
