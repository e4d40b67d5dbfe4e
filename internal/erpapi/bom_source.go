package erpapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/bricolab/fabsync/internal/bom"
)

// odooProduct is a product.product record. Odoo serializes empty char
// fields as false, so default_code needs a loose type.
type odooProduct struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	DefaultCode   any    `json:"default_code"`
	ProductTmplID any    `json:"product_tmpl_id"`
}

type odooTemplate struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	ProductVariantIDs []int  `json:"product_variant_ids"`
}

type odooBOM struct {
	ID int `json:"id"`
}

type odooBOMLine struct {
	ProductID  any     `json:"product_id"` // many2one: [id, display_name]
	ProductQty float64 `json:"product_qty"`
}

// asString unwraps a char field that may be false.
func asString(v any) string {
	s, _ := v.(string)
	return s
}

// relID unwraps a many2one field ([id, display_name], or false).
func relID(v any) (int, bool) {
	pair, ok := v.([]any)
	if !ok || len(pair) == 0 {
		return 0, false
	}
	id, ok := pair[0].(float64)
	if !ok {
		return 0, false
	}
	return int(id), true
}

// cleanName strips the duplicate-record suffix Odoo appends on copy.
func cleanName(name string) string {
	return strings.TrimSuffix(name, " (copy)")
}

// Product resolves a component's identity by internal reference, falling
// back to the product template and its first variant when no product
// matches directly.
func (c *Client) Product(ctx context.Context, reference string) (*bom.Product, error) {
	product, err := c.productByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	return &bom.Product{
		ID:        product.ID,
		Reference: reference,
		Name:      cleanName(product.Name),
	}, nil
}

// Components returns the direct BOM lines of the assembly identified by
// product id, in BOM order. A product without an active BOM is a leaf.
// Child products keep their record id as identity since their internal
// reference can be blank.
func (c *Client) Components(ctx context.Context, productID int) ([]bom.Component, error) {
	product, err := c.productByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	bomID, err := c.bomForProduct(ctx, product)
	if err != nil {
		return nil, err
	}
	if bomID == 0 {
		return nil, nil
	}

	var lines []odooBOMLine
	if err := c.searchRead(ctx, "mrp.bom.line",
		[]any{[]any{"bom_id", "=", bomID}},
		[]string{"product_id", "product_qty"}, &lines); err != nil {
		return nil, err
	}

	components := make([]bom.Component, 0, len(lines))
	for _, line := range lines {
		childID, ok := relID(line.ProductID)
		if !ok {
			continue
		}

		var details []odooProduct
		if err := c.searchRead(ctx, "product.product",
			[]any{[]any{"id", "=", childID}},
			[]string{"id", "default_code", "name"}, &details); err != nil {
			return nil, err
		}
		if len(details) == 0 {
			continue
		}

		components = append(components, bom.Component{
			ProductID: childID,
			Reference: asString(details[0].DefaultCode),
			Name:      cleanName(details[0].Name),
			Quantity:  line.ProductQty,
		})
	}

	return components, nil
}

func (c *Client) productByReference(ctx context.Context, reference string) (*odooProduct, error) {
	var products []odooProduct
	if err := c.searchRead(ctx, "product.product",
		[]any{[]any{"default_code", "=", reference}},
		[]string{"id", "name", "default_code", "product_tmpl_id"}, &products); err != nil {
		return nil, err
	}
	if len(products) > 0 {
		return &products[0], nil
	}

	// template fallback: some references only exist on the template
	var templates []odooTemplate
	if err := c.searchRead(ctx, "product.template",
		[]any{[]any{"default_code", "=", reference}},
		[]string{"id", "name", "product_variant_ids"}, &templates); err != nil {
		return nil, err
	}
	if len(templates) > 0 && len(templates[0].ProductVariantIDs) > 0 {
		if err := c.searchRead(ctx, "product.product",
			[]any{[]any{"id", "=", templates[0].ProductVariantIDs[0]}},
			[]string{"id", "name", "default_code", "product_tmpl_id"}, &products); err != nil {
			return nil, err
		}
		if len(products) > 0 {
			return &products[0], nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrProductNotFound, reference)
}

func (c *Client) productByID(ctx context.Context, id int) (*odooProduct, error) {
	var products []odooProduct
	if err := c.searchRead(ctx, "product.product",
		[]any{[]any{"id", "=", id}},
		[]string{"id", "name", "default_code", "product_tmpl_id"}, &products); err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("%w: id %d", ErrProductNotFound, id)
	}
	return &products[0], nil
}

// bomForProduct finds the active BOM for a product, trying the variant
// first and the template second. Returns 0 when the product has none.
func (c *Client) bomForProduct(ctx context.Context, product *odooProduct) (int, error) {
	var boms []odooBOM
	if err := c.searchRead(ctx, "mrp.bom",
		[]any{
			[]any{"product_id", "=", product.ID},
			[]any{"active", "=", true},
		},
		[]string{"id"}, &boms); err != nil {
		return 0, err
	}
	if len(boms) > 0 {
		return boms[0].ID, nil
	}

	tmplID, ok := relID(product.ProductTmplID)
	if !ok {
		return 0, nil
	}

	if err := c.searchRead(ctx, "mrp.bom",
		[]any{
			[]any{"product_tmpl_id", "=", tmplID},
			[]any{"active", "=", true},
			"|",
			[]any{"product_id", "=", false},
			[]any{"product_id", "=", product.ID},
		},
		[]string{"id"}, &boms); err != nil {
		return 0, err
	}
	if len(boms) > 0 {
		return boms[0].ID, nil
	}
	return 0, nil
}
