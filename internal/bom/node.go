package bom

import (
	"context"
)

// Product is the identity of a component as served by the ERP. ID is the
// stable record id; Reference is the human-facing internal reference and
// may be empty.
type Product struct {
	ID        int
	Reference string
	Name      string
}

// Component is one BOM line: a direct child of an assembly.
type Component struct {
	ProductID int
	Reference string
	Name      string
	Quantity  float64 // nominal quantity per one parent
}

// Source is the remote BOM-lookup capability. Lookups must be idempotent
// per call; errors are transport failures and abort the resolution.
type Source interface {
	// Product resolves a component's identity by its internal reference.
	Product(ctx context.Context, reference string) (*Product, error)
	// Components returns the direct children of the assembly identified
	// by product id, in BOM order. An empty result means a leaf part.
	Components(ctx context.Context, productID int) ([]Component, error)
}

// Node is one resolved component in the BOM tree. The root has level 0
// and quantity 1; a child's level is its parent's level plus one, and its
// quantity is its line quantity multiplied along the ancestor chain (with
// the bulk-item adjustment applied for display).
type Node struct {
	Reference string
	Name      string
	Quantity  float64
	Level     int

	// Truncated marks a leaf placed where an ancestor reference
	// re-occurred; the subtree is cut there instead of recursing.
	Truncated bool

	Children []*Node
}
