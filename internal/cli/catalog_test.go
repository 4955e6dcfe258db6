package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagespeed-campaign/internal/catalog"
)

func TestCatalogSolutionsTable(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(t, "catalog", "solutions"))

	out := h.out.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Tiered Cache")
	assert.Contains(t, out, "Image Processor")
}

func TestCatalogAuditsJSON(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(t, "catalog", "audits", "--json"))

	var mappings []catalog.AuditMapping
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &mappings))
	require.Len(t, mappings, 73)
	assert.Equal(t, "server-response-time", mappings[0].AuditID)
	assert.Equal(t, catalog.PriorityHigh, mappings[0].Priority)
}

func TestCatalogFromDirectory(t *testing.T) {
	h := newHarness(t)
	err := h.run(t, "catalog", "solutions", "--catalog-dir", t.TempDir())
	require.Error(t, err)
}

func TestResolve(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(t, "resolve", "uses-http2"))

	out := h.out.String()
	assert.Contains(t, out, "uses-http2 [medium]")
	assert.Contains(t, out, "Applications")
}

func TestResolveUnknownAudit(t *testing.T) {
	h := newHarness(t)
	err := h.run(t, "resolve", "some-new-audit")
	require.ErrorIs(t, err, catalog.ErrNotMapped)
	assert.Contains(t, err.Error(), "catalog audits")
}

func TestResolveRequiresOneArg(t *testing.T) {
	h := newHarness(t)
	require.Error(t, h.run(t, "resolve"))
}
