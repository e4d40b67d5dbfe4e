package bom

import (
	"context"
	"fmt"
	"log/slog"

	mapset "github.com/deckarep/golang-set/v2"
)

// Cycle records one detected ancestor-chain re-occurrence. Path is the
// chain from the root down to the node that referenced an ancestor
// again; entries are internal references, or product names where the
// reference is blank.
type Cycle struct {
	Reference string
	Path      []string
}

// Report collects everything recovered during a resolution: detected
// cycles and components dropped by the exclusion filter. Transport
// failures are not in here; those abort the resolution.
type Report struct {
	Cycles   []Cycle
	Excluded []string
}

func (r *Report) HasCycles() bool {
	return len(r.Cycles) > 0
}

// Resolver builds a BOM tree from a remote lookup capability. Exclusion
// and quantity correction apply per child; cycles truncate the affected
// branch only.
type Resolver struct {
	source  Source
	exclude *KeywordFilter
	adjust  Adjuster
}

func NewResolver(source Source, exclude *KeywordFilter, adjust Adjuster) *Resolver {
	if exclude == nil {
		exclude = NewKeywordFilter(nil)
	}
	if adjust == nil {
		adjust = IdentityAdjuster
	}
	return &Resolver{
		source:  source,
		exclude: exclude,
		adjust:  adjust,
	}
}

// Resolve materializes the full component tree rooted at reference.
// The root is resolved at level 0 with quantity 1; children preserve
// lookup order.
func (r *Resolver) Resolve(ctx context.Context, reference string) (*Node, *Report, error) {
	product, err := r.source.Product(ctx, reference)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve root %s: %w", reference, err)
	}

	root := &Node{
		Reference: product.Reference,
		Name:      product.Name,
		Quantity:  1,
		Level:     0,
	}

	report := &Report{}
	visited := mapset.NewThreadUnsafeSet[int]()
	if err := r.descend(ctx, root, product.ID, 1, visited, []string{label(root.Reference, root.Name)}, report); err != nil {
		return nil, nil, err
	}

	return root, report, nil
}

// label is the human-facing identity of a node in cycle paths and logs.
// References can be empty on the ERP side, so the name backs them up.
func label(reference, name string) string {
	if reference != "" {
		return reference
	}
	return name
}

// descend fetches node's direct children and recurses. Identity is the
// ERP product id, never the reference, which may be empty or duplicated.
// rawQty is the unadjusted cumulative quantity of node, used to scale
// child lines; the adjusted value is what the node itself displays.
// visited holds the active ancestor chain and is popped before
// returning, so a product resolved on one branch does not block a
// sibling branch.
func (r *Resolver) descend(ctx context.Context, node *Node, productID int, rawQty float64, visited mapset.Set[int], path []string, report *Report) error {
	visited.Add(productID)
	defer visited.Remove(productID)

	components, err := r.source.Components(ctx, productID)
	if err != nil {
		return fmt.Errorf("lookup components of %s: %w", label(node.Reference, node.Name), err)
	}

	for _, c := range components {
		if r.exclude.Excluded(c.Name) {
			slog.Debug("component excluded", "reference", c.Reference, "name", c.Name)
			report.Excluded = append(report.Excluded, label(c.Reference, c.Name))
			continue
		}

		childRaw := c.Quantity * rawQty
		child := &Node{
			Reference: c.Reference,
			Name:      c.Name,
			Quantity:  r.adjust(c.Name, childRaw),
			Level:     node.Level + 1,
		}
		node.Children = append(node.Children, child)

		childLabel := label(c.Reference, c.Name)
		if visited.Contains(c.ProductID) {
			child.Truncated = true
			cyclePath := append(append([]string{}, path...), childLabel)
			report.Cycles = append(report.Cycles, Cycle{Reference: childLabel, Path: cyclePath})
			slog.Warn("cycle detected, truncating branch", "reference", childLabel, "path", cyclePath)
			continue
		}

		childPath := append(append([]string{}, path...), childLabel)
		if err := r.descend(ctx, child, c.ProductID, childRaw, visited, childPath, report); err != nil {
			return err
		}
	}

	return nil
}
