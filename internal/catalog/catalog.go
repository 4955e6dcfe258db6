package catalog

import "pagespeed-campaign/internal/analysis"

// Catalog holds the product table and the audit map. It is read-only after
// construction and safe for concurrent use; callers must not modify the
// slices it returns.
type Catalog struct {
	solutions []Solution
	mappings  []AuditMapping
	byID      map[string]int
	byAudit   map[string]int
}

// Solutions returns the products in catalog order.
func (c *Catalog) Solutions() []Solution {
	return c.solutions
}

// Mappings returns the audit mappings in declaration order.
func (c *Catalog) Mappings() []AuditMapping {
	return c.mappings
}

// Solution looks up a product by id.
func (c *Catalog) Solution(id string) (Solution, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Solution{}, false
	}
	return c.solutions[i], true
}

// Lookup returns the mapping for an audit id.
func (c *Catalog) Lookup(auditID string) (AuditMapping, bool) {
	i, ok := c.byAudit[auditID]
	if !ok {
		return AuditMapping{}, false
	}
	return c.mappings[i], true
}

// Resolve returns the products recommended for auditID. Unmapped audits yield
// a *NotMappedError matching ErrNotMapped. Solution ids missing from the
// catalog are skipped.
func (c *Catalog) Resolve(auditID string, auditData *analysis.Issue) (Recommendation, error) {
	m, ok := c.Lookup(auditID)
	if !ok {
		return Recommendation{}, &NotMappedError{AuditID: auditID}
	}
	solutions := make([]Solution, 0, len(m.SolutionIDs))
	for _, id := range m.SolutionIDs {
		if s, ok := c.Solution(id); ok {
			solutions = append(solutions, s)
		}
	}
	return Recommendation{
		AuditID:     auditID,
		Priority:    m.Priority,
		Description: m.Description,
		Solutions:   solutions,
		AuditData:   auditData,
	}, nil
}
