package bom

// Adjuster corrects a component's effective quantity. Bulk items are
// counted in nominal units on the BOM but consumed as fewer per assembly;
// the adjuster returns the corrected display quantity.
type Adjuster func(name string, quantity float64) float64

// IdentityAdjuster performs no correction.
func IdentityAdjuster(_ string, quantity float64) float64 {
	return quantity
}

// ThresholdStep subtracts a fixed amount from quantities at or above Min.
type ThresholdStep struct {
	Min      float64
	Subtract float64
}

// DefaultSteps is the bulk-item correction in production use.
var DefaultSteps = []ThresholdStep{
	{Min: 11, Subtract: 2},
	{Min: 50, Subtract: 4},
	{Min: 100, Subtract: 10},
}

// ThresholdAdjuster builds an Adjuster from subtraction steps. The step
// with the highest matching Min applies; quantities below every step pass
// through unchanged, and results never go below zero.
func ThresholdAdjuster(steps []ThresholdStep) Adjuster {
	return func(_ string, quantity float64) float64 {
		best := -1
		for i, step := range steps {
			if quantity >= step.Min && (best < 0 || step.Min > steps[best].Min) {
				best = i
			}
		}
		if best < 0 {
			return quantity
		}
		if adjusted := quantity - steps[best].Subtract; adjusted > 0 {
			return adjusted
		}
		return 0
	}
}
