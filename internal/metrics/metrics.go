// Package metrics computes class cohesion scores from method attribute sets.
package metrics

import (
	"strconv"
)

// MethodAttributes maps each method of one class to the set of instance
// attributes its body accesses. Methods keep their first-appearance order and
// a method that touches no attribute still has an (empty) entry.
type MethodAttributes struct {
	order []string
	sets  map[string]map[string]struct{}
}

// NewMethodAttributes returns an empty map.
func NewMethodAttributes() *MethodAttributes {
	return &MethodAttributes{sets: make(map[string]map[string]struct{})}
}

// AddMethod registers a method. Registering a name twice keeps one entry.
func (m *MethodAttributes) AddMethod(method string) {
	if _, ok := m.sets[method]; ok {
		return
	}
	m.order = append(m.order, method)
	m.sets[method] = make(map[string]struct{})
}

// Add records that method accesses attr, registering the method if needed.
func (m *MethodAttributes) Add(method, attr string) {
	m.AddMethod(method)
	m.sets[method][attr] = struct{}{}
}

// Methods returns the method names in first-appearance order.
func (m *MethodAttributes) Methods() []string {
	return m.order
}

// Attributes returns the attribute set of method (nil if unknown).
func (m *MethodAttributes) Attributes(method string) map[string]struct{} {
	return m.sets[method]
}

// Len returns the number of distinct methods.
func (m *MethodAttributes) Len() int {
	return len(m.order)
}

// Pairs walks all unordered pairs of distinct methods once and counts the
// pairs sharing at least one attribute and the pairs sharing none.
func Pairs(m *MethodAttributes) (shared, disjoint int) {
	for i := 0; i < len(m.order); i++ {
		for j := i + 1; j < len(m.order); j++ {
			if intersects(m.sets[m.order[i]], m.sets[m.order[j]]) {
				shared++
			} else {
				disjoint++
			}
		}
	}
	return shared, disjoint
}

// LCOM returns the number of disjoint method pairs minus the number of
// sharing pairs, floored at 0.
func LCOM(m *MethodAttributes) int {
	shared, disjoint := Pairs(m)
	return max(disjoint-shared, 0)
}

// TCC returns the fraction of method pairs sharing an attribute, rounded to
// 3 decimals. With fewer than two methods there are no pairs and TCC is 1.0.
func TCC(m *MethodAttributes) float64 {
	shared, disjoint := Pairs(m)
	total := shared + disjoint
	if total == 0 {
		return 1.0
	}
	return Round(float64(shared)/float64(total), 3)
}

// Ratio returns num/den rounded to places decimals, or 0 when den is 0.
func Ratio(num, den, places int) float64 {
	if den == 0 {
		return 0
	}
	return Round(float64(num)/float64(den), places)
}

// Round rounds v to places decimals using the exact binary value of v and
// round-half-even, so 2.675 rounds to 2.67 and 0.125 to 0.12.
func Round(v float64, places int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	return r
}

func intersects(a, b map[string]struct{}) bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}
