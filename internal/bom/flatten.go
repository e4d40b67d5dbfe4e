package bom

// Row is one flattened BOM line, suitable for tabular export.
type Row struct {
	Level           int
	Reference       string
	Name            string
	Quantity        float64
	ParentReference string
	ParentName      string
	HasChildren     bool
}

// Flatten converts a resolved tree into rows in depth-first pre-order:
// root first, then each subtree fully before the next sibling. The root
// row has empty parent fields. Truncated markers count as assemblies
// since their subtree exists remotely.
func Flatten(root *Node) []Row {
	rows := make([]Row, 0, 16)
	walk(root, nil, &rows)
	return rows
}

func walk(node *Node, parent *Node, rows *[]Row) {
	row := Row{
		Level:       node.Level,
		Reference:   node.Reference,
		Name:        node.Name,
		Quantity:    node.Quantity,
		HasChildren: len(node.Children) > 0 || node.Truncated,
	}
	if parent != nil {
		row.ParentReference = parent.Reference
		row.ParentName = parent.Name
	}
	*rows = append(*rows, row)

	for _, child := range node.Children {
		walk(child, node, rows)
	}
}
