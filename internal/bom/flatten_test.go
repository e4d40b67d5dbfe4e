package bom

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func threeLevelTree() *Node {
	//  A
	//  ├── B
	//  │   ├── D
	//  │   └── E
	//  └── C
	return &Node{
		Reference: "A", Name: "Assembly A", Quantity: 1, Level: 0,
		Children: []*Node{
			{
				Reference: "B", Name: "Sub B", Quantity: 2, Level: 1,
				Children: []*Node{
					{Reference: "D", Name: "Part D", Quantity: 4, Level: 2},
					{Reference: "E", Name: "Part E", Quantity: 2, Level: 2},
				},
			},
			{Reference: "C", Name: "Part C", Quantity: 1, Level: 1},
		},
	}
}

func TestFlatten_PreOrder(t *testing.T) {
	rows := Flatten(threeLevelTree())

	refs := make([]string, len(rows))
	for i, row := range rows {
		refs[i] = row.Reference
	}
	assert.Equal(t, []string{"A", "B", "D", "E", "C"}, refs)
}

func TestFlatten_LevelsAndParents(t *testing.T) {
	rows := Flatten(threeLevelTree())
	require.Len(t, rows, 5)

	assert.Equal(t, 0, rows[0].Level)
	assert.Empty(t, rows[0].ParentReference)
	assert.Empty(t, rows[0].ParentName)
	assert.True(t, rows[0].HasChildren)

	// levels step down by at most one when entering a subtree and may
	// drop back to any ancestor level on exit
	for i := 1; i < len(rows); i++ {
		assert.LessOrEqual(t, rows[i].Level, rows[i-1].Level+1, "row %d", i)
		assert.GreaterOrEqual(t, rows[i].Level, 1, "only the root is level 0")
	}

	byRef := map[string]Row{}
	for _, row := range rows {
		byRef[row.Reference] = row
	}
	assert.Equal(t, "A", byRef["B"].ParentReference)
	assert.Equal(t, "Assembly A", byRef["B"].ParentName)
	assert.Equal(t, "B", byRef["D"].ParentReference)
	assert.Equal(t, "A", byRef["C"].ParentReference)
	assert.False(t, byRef["C"].HasChildren)
}

func TestFlatten_TruncatedMarkerCountsAsAssembly(t *testing.T) {
	root := &Node{
		Reference: "A", Name: "A", Quantity: 1, Level: 0,
		Children: []*Node{
			{Reference: "A", Name: "A", Quantity: 1, Level: 1, Truncated: true},
		},
	}

	rows := Flatten(root)
	require.Len(t, rows, 2)
	assert.True(t, rows[1].HasChildren)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Flatten(threeLevelTree())))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "level,component_reference,component_name,component_quantity,parent_bom_reference,parent_bom_name,has_child_bom", lines[0])
	assert.Equal(t, "0,A,Assembly A,1.00,,,true", lines[1])
	assert.Equal(t, "1,B,Sub B,2.00,A,Assembly A,true", lines[2])
}
