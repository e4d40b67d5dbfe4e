package bom

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeERP serves a component graph from memory. Products are identified
// by record id; references are optional, as on the real ERP side.
type fakeERP struct {
	byID     map[int]Product
	byRef    map[string]int
	children map[int][]Component
	prodErr  error
	compErr  map[int]error
	nextID   int
}

func newFakeERP() *fakeERP {
	return &fakeERP{
		byID:     make(map[int]Product),
		byRef:    make(map[string]int),
		children: make(map[int][]Component),
		compErr:  make(map[int]error),
	}
}

func (f *fakeERP) part(ref, name string) int {
	f.nextID++
	id := f.nextID
	f.byID[id] = Product{ID: id, Reference: ref, Name: name}
	if ref != "" {
		f.byRef[ref] = id
	}
	return id
}

func (f *fakeERP) line(parent, child int, qty float64) {
	p := f.byID[child]
	f.children[parent] = append(f.children[parent], Component{
		ProductID: child,
		Reference: p.Reference,
		Name:      p.Name,
		Quantity:  qty,
	})
}

func (f *fakeERP) Product(_ context.Context, ref string) (*Product, error) {
	if f.prodErr != nil {
		return nil, f.prodErr
	}
	id, ok := f.byRef[ref]
	if !ok {
		return nil, errors.New("product not found: " + ref)
	}
	product := f.byID[id]
	return &product, nil
}

func (f *fakeERP) Components(_ context.Context, id int) ([]Component, error) {
	if err := f.compErr[id]; err != nil {
		return nil, err
	}
	return f.children[id], nil
}

func find(node *Node, ref string) *Node {
	if node.Reference == ref {
		return node
	}
	for _, child := range node.Children {
		if found := find(child, ref); found != nil {
			return found
		}
	}
	return nil
}

func TestResolve_SimpleTree(t *testing.T) {
	erp := newFakeERP()
	a := erp.part("A", "Assembly A")
	b := erp.part("B", "Subassembly B")
	c := erp.part("C", "Part C")
	erp.line(a, b, 2)
	erp.line(b, c, 3)

	r := NewResolver(erp, nil, nil)
	root, report, err := r.Resolve(context.Background(), "A")
	require.NoError(t, err)
	assert.False(t, report.HasCycles())

	assert.Equal(t, "Assembly A", root.Name)
	assert.Equal(t, 0, root.Level)
	assert.Equal(t, 1.0, root.Quantity)

	require.Len(t, root.Children, 1)
	sub := root.Children[0]
	assert.Equal(t, "B", sub.Reference)
	assert.Equal(t, 1, sub.Level)
	assert.Equal(t, 2.0, sub.Quantity)

	require.Len(t, sub.Children, 1)
	leaf := sub.Children[0]
	assert.Equal(t, 2, leaf.Level)
	// cumulative: 2 * 3
	assert.Equal(t, 6.0, leaf.Quantity)
}

func TestResolve_CycleTruncatesBranch(t *testing.T) {
	erp := newFakeERP()
	a := erp.part("A", "Assembly A")
	b := erp.part("B", "Subassembly B")
	c := erp.part("C", "Subassembly C")
	erp.line(a, b, 1)
	erp.line(b, c, 1)
	erp.line(c, a, 1) // back-reference to the root

	r := NewResolver(erp, nil, nil)
	root, report, err := r.Resolve(context.Background(), "A")
	require.NoError(t, err)

	sub := find(root, "C")
	require.NotNil(t, sub)
	require.Len(t, sub.Children, 1)

	marker := sub.Children[0]
	assert.Equal(t, "A", marker.Reference)
	assert.True(t, marker.Truncated)
	assert.Empty(t, marker.Children)

	require.Len(t, report.Cycles, 1)
	assert.Equal(t, "A", report.Cycles[0].Reference)
	assert.Equal(t, []string{"A", "B", "C", "A"}, report.Cycles[0].Path)
}

// A product resolved on one branch must not block a sibling branch:
// only an ancestor-chain re-occurrence is a cycle.
func TestResolve_SharedComponentAcrossSiblings(t *testing.T) {
	erp := newFakeERP()
	a := erp.part("A", "Assembly A")
	b := erp.part("B", "Subassembly B")
	c := erp.part("C", "Subassembly C")
	d := erp.part("D", "Shared Part D")
	erp.line(a, b, 1)
	erp.line(a, c, 1)
	erp.line(b, d, 1)
	erp.line(c, d, 1)

	r := NewResolver(erp, nil, nil)
	root, report, err := r.Resolve(context.Background(), "A")
	require.NoError(t, err)
	assert.False(t, report.HasCycles())

	require.Len(t, root.Children, 2)
	for _, sub := range root.Children {
		require.Len(t, sub.Children, 1, "both branches must contain D")
		assert.Equal(t, "D", sub.Children[0].Reference)
		assert.False(t, sub.Children[0].Truncated)
	}
}

// Products without an internal reference still resolve: identity is the
// record id, so a blank-reference subassembly recurses normally and two
// distinct blank-reference products on one path are not a cycle.
func TestResolve_BlankReferenceChildren(t *testing.T) {
	erp := newFakeERP()
	a := erp.part("A", "Assembly A")
	anon1 := erp.part("", "Unlabelled Bracket")
	anon2 := erp.part("", "Unlabelled Plate")
	c := erp.part("C", "Part C")
	erp.line(a, anon1, 1)
	erp.line(anon1, anon2, 2)
	erp.line(anon2, c, 3)

	r := NewResolver(erp, nil, nil)
	root, report, err := r.Resolve(context.Background(), "A")
	require.NoError(t, err)
	assert.False(t, report.HasCycles(), "distinct blank references are not a cycle")

	require.Len(t, root.Children, 1)
	bracket := root.Children[0]
	assert.Equal(t, "", bracket.Reference)
	assert.Equal(t, "Unlabelled Bracket", bracket.Name)
	assert.False(t, bracket.Truncated)

	require.Len(t, bracket.Children, 1)
	plate := bracket.Children[0]
	assert.Equal(t, "Unlabelled Plate", plate.Name)

	require.Len(t, plate.Children, 1)
	leaf := plate.Children[0]
	assert.Equal(t, "C", leaf.Reference)
	assert.Equal(t, 6.0, leaf.Quantity)
}

// Cycle paths fall back to names where references are blank.
func TestResolve_BlankReferenceCycle(t *testing.T) {
	erp := newFakeERP()
	a := erp.part("A", "Assembly A")
	anon := erp.part("", "Unlabelled Bracket")
	erp.line(a, anon, 1)
	erp.line(anon, anon, 1)

	r := NewResolver(erp, nil, nil)
	root, report, err := r.Resolve(context.Background(), "A")
	require.NoError(t, err)

	require.Len(t, report.Cycles, 1)
	assert.Equal(t, "Unlabelled Bracket", report.Cycles[0].Reference)
	assert.Equal(t, []string{"A", "Unlabelled Bracket", "Unlabelled Bracket"}, report.Cycles[0].Path)

	marker := root.Children[0].Children[0]
	assert.True(t, marker.Truncated)
}

func TestResolve_ExclusionDropsSubtree(t *testing.T) {
	erp := newFakeERP()
	a := erp.part("A", "Assembly A")
	b := erp.part("B", "Cardboard Box B")
	c := erp.part("C", "Part C")
	erp.line(a, b, 1)
	erp.line(b, c, 1)

	r := NewResolver(erp, NewKeywordFilter([]string{"cardboard"}), nil)
	root, report, err := r.Resolve(context.Background(), "A")
	require.NoError(t, err)

	assert.Nil(t, find(root, "B"))
	assert.Nil(t, find(root, "C"), "excluded subtree is omitted entirely")
	assert.Equal(t, []string{"B"}, report.Excluded)
}

func TestResolve_QuantityAdjustment(t *testing.T) {
	erp := newFakeERP()
	a := erp.part("A", "Assembly A")
	s := erp.part("S", "Screw Pack")
	erp.line(a, s, 20)

	r := NewResolver(erp, nil, ThresholdAdjuster(DefaultSteps))
	root, _, err := r.Resolve(context.Background(), "A")
	require.NoError(t, err)

	require.Len(t, root.Children, 1)
	assert.Equal(t, 18.0, root.Children[0].Quantity)
}

func TestResolve_TransportErrorAborts(t *testing.T) {
	erp := newFakeERP()
	a := erp.part("A", "Assembly A")
	b := erp.part("B", "Subassembly B")
	erp.line(a, b, 1)
	erp.compErr[b] = errors.New("connection reset")

	r := NewResolver(erp, nil, nil)
	_, _, err := r.Resolve(context.Background(), "A")
	assert.ErrorContains(t, err, "connection reset")
}

func TestResolve_UnknownRootFails(t *testing.T) {
	r := NewResolver(newFakeERP(), nil, nil)
	_, _, err := r.Resolve(context.Background(), "NOPE")
	assert.Error(t, err)
}
