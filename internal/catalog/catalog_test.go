package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagespeed-campaign/internal/analysis"
)

func mustDefault(t *testing.T) *Catalog {
	t.Helper()
	c, err := Default()
	require.NoError(t, err)
	return c
}

func TestEmbeddedCatalogIsConsistent(t *testing.T) {
	c := mustDefault(t)
	assert.Len(t, c.Solutions(), 13)
	assert.Len(t, c.Mappings(), 73)
}

func TestResolveEveryMappedAudit(t *testing.T) {
	c := mustDefault(t)
	for _, m := range c.Mappings() {
		rec, err := c.Resolve(m.AuditID, nil)
		require.NoError(t, err, m.AuditID)
		assert.NotEmpty(t, rec.Solutions, m.AuditID)
		assert.Equal(t, m.SolutionIDs, rec.SolutionIDs(), m.AuditID)
	}
}

func TestResolveUnknownAudit(t *testing.T) {
	c := mustDefault(t)
	_, err := c.Resolve("not-a-real-audit", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotMapped))

	var nm *NotMappedError
	require.ErrorAs(t, err, &nm)
	assert.Equal(t, "not-a-real-audit", nm.AuditID)
}

func TestResolveServerResponseTime(t *testing.T) {
	c := mustDefault(t)
	issue := &analysis.Issue{ID: "server-response-time", Score: 0.3}

	rec, err := c.Resolve("server-response-time", issue)
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, rec.Priority)
	assert.Equal(t, []string{"cache", "tiered_cache", "load_balancer", "functions"}, rec.SolutionIDs())
	assert.Same(t, issue, rec.AuditData)
	assert.Equal(t, "Cache", rec.Solutions[0].Name)
}

func TestLaterMappingDefinitionsWin(t *testing.T) {
	c := mustDefault(t)
	cases := []struct {
		audit     string
		solutions []string
		priority  Priority
	}{
		{audit: "csp-xss", solutions: []string{"firewall", "functions"}, priority: PriorityHigh},
		{audit: "uses-optimized-images", solutions: []string{"image_processor", "cache"}, priority: PriorityHigh},
		{audit: "efficient-animated-content", solutions: []string{"image_processor", "functions"}, priority: PriorityMedium},
		{audit: "offscreen-images", solutions: []string{"image_processor", "functions"}, priority: PriorityHigh},
		{audit: "user-timings", solutions: []string{"functions"}, priority: PriorityLow},
	}
	for _, tc := range cases {
		t.Run(tc.audit, func(t *testing.T) {
			m, ok := c.Lookup(tc.audit)
			require.True(t, ok)
			if diff := cmp.Diff(tc.solutions, m.SolutionIDs); diff != "" {
				t.Fatalf("solutions mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tc.priority, m.Priority)
		})
	}
}

func TestResolveSkipsMissingSolutions(t *testing.T) {
	c := &Catalog{
		solutions: []Solution{{ID: "cache", Name: "Cache"}},
		mappings:  []AuditMapping{{AuditID: "a", Priority: PriorityLow, SolutionIDs: []string{"ghost", "cache"}}},
		byID:      map[string]int{"cache": 0},
		byAudit:   map[string]int{"a": 0},
	}
	rec, err := c.Resolve("a", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"cache"}, rec.SolutionIDs())
}

func TestLoadRejectsInconsistentData(t *testing.T) {
	cases := []struct {
		name     string
		mappings string
		want     string
	}{
		{
			name:     "unknown_solution",
			mappings: "mappings:\n- audit: a\n  priority: high\n  solutions: [cache, data_streaming]\n  description: d\n",
			want:     `unknown solution "data_streaming"`,
		},
		{
			name:     "bad_priority",
			mappings: "mappings:\n- audit: a\n  priority: urgent\n  solutions: [cache]\n  description: d\n",
			want:     `invalid priority "urgent"`,
		},
		{
			name:     "duplicate_audit",
			mappings: "mappings:\n- audit: a\n  priority: low\n  solutions: [cache]\n  description: d\n- audit: a\n  priority: high\n  solutions: [cache]\n  description: e\n",
			want:     `duplicate audit id`,
		},
		{
			name:     "no_solutions",
			mappings: "mappings:\n- audit: a\n  priority: low\n  solutions: []\n  description: d\n",
			want:     `no solutions`,
		},
		{
			name:     "unknown_field",
			mappings: "mappings:\n- audit: a\n  priority: low\n  solutions: [cache]\n  rationale: d\n",
			want:     `parse audit_mappings.yaml`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fsys := fstest.MapFS{
				solutionsFile: {Data: []byte("solutions:\n- id: cache\n  name: Cache\n  description: c\n  features: []\n  benefits: []\n  url: https://example.com\n")},
				mappingsFile:  {Data: []byte(tc.mappings)},
			}
			_, err := Load(fsys)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadDirAndMustLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, solutionsFile), []byte("solutions:\n- id: cache\n  name: Cache\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, mappingsFile), []byte("mappings:\n- audit: a\n  priority: medium\n  solutions: [cache]\n  description: d\n"), 0o600))

	c := MustLoad(dir)
	rec, err := c.Resolve("a", nil)
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, rec.Priority)

	assert.Panics(t, func() { MustLoad(filepath.Join(dir, "missing")) })
	assert.NotPanics(t, func() { MustLoad("") })
}

func TestPriorityWeight(t *testing.T) {
	assert.Equal(t, 3, PriorityHigh.Weight())
	assert.Equal(t, 2, Priority("Medium").Weight())
	assert.Equal(t, 1, PriorityLow.Weight())
	assert.Equal(t, 0, Priority("").Weight())
}
