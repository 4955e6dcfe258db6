package pagespeed

import "pagespeed-campaign/internal/analysis"

// lighthouseCategory maps analysis categories to Lighthouse category ids.
var lighthouseCategory = map[analysis.Category]string{
	analysis.CategoryPerformance:   "performance",
	analysis.CategoryAccessibility: "accessibility",
	analysis.CategoryBestPractices: "best-practices",
	analysis.CategorySEO:           "seo",
}

// Categories requested from the API.
var requestCategories = []string{"performance", "seo", "accessibility", "best-practices"}

func set(ids ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

// Audit routing. An audit listed under several categories goes to the first
// one in categoryRoutes order.
var categoryRoutes = []struct {
	category analysis.Category
	audits   map[string]struct{}
}{
	{analysis.CategoryPerformance, set(
		"first-contentful-paint", "largest-contentful-paint", "speed-index", "interactive",
		"total-blocking-time", "cumulative-layout-shift", "server-response-time",
		"render-blocking-resources", "unused-css-rules", "unused-javascript",
		"modern-image-formats", "uses-webp-images", "uses-optimized-images",
		"efficient-animated-content", "legacy-javascript", "preload-lcp-image",
		"uses-rel-preconnect", "uses-rel-preload", "font-display", "third-party-summary",
		"bootup-time", "mainthread-work-breakdown", "dom-size", "critical-request-chains",
		"user-timings", "uses-passive-event-listeners", "no-document-write",
		"uses-http2", "uses-long-cache-ttl", "total-byte-weight", "offscreen-images",
		"unminified-css", "unminified-javascript", "uses-text-compression",
		"redirects", "uses-responsive-images", "first-input-delay", "interaction-to-next-paint",
	)},
	{analysis.CategoryAccessibility, set(
		"color-contrast", "image-alt", "label", "link-name", "button-name", "form-field-multiple-labels",
		"frame-title", "duplicate-id-active", "duplicate-id-aria", "heading-order",
		"html-has-lang", "html-lang-valid", "input-image-alt", "installable-manifest",
		"is-crawlable", "lang", "logical-tab-order", "managed-focus", "meta-refresh",
		"meta-viewport", "object-alt", "tabindex", "td-headers-attr", "th-has-data-cells",
		"valid-lang", "video-caption", "video-description", "focus-traps", "focusable-controls",
		"interactive-element-affordance", "use-landmarks", "aria-allowed-attr", "aria-command-name",
		"aria-hidden-body", "aria-hidden-focus", "aria-input-field-name", "aria-meter-name",
		"aria-progressbar-name", "aria-required-attr", "aria-required-children", "aria-required-parent",
		"aria-roles", "aria-toggle-field-name", "aria-tooltip-name", "aria-treeitem-name",
		"aria-valid-attr-value", "aria-valid-attr", "bypass", "definition-list", "dlitem",
		"document-title", "list", "listitem", "skip-link",
	)},
	{analysis.CategoryBestPractices, set(
		"is-on-https", "no-vulnerable-libraries", "external-anchors-use-rel-noopener",
		"geolocation-on-start", "notification-on-start", "password-inputs-can-be-pasted-into",
		"has-doctype", "charset", "js-libraries", "deprecations", "third-party-cookies",
		"inspector-issues", "csp-xss", "appcache-manifest", "doctype", "image-aspect-ratio",
		"image-size-responsive", "preload-fonts", "errors-in-console",
	)},
	{analysis.CategorySEO, set(
		"viewport", "meta-description", "crawlable-anchors", "robots-txt", "hreflang",
		"canonical", "structured-data", "http-status-code", "link-text", "plugins",
		"tap-targets", "font-size", "legible-font-sizes",
	)},
}

// CategoryFor returns the category an audit is reported under. Audits not
// listed anywhere default to performance.
func CategoryFor(auditID string) analysis.Category {
	for _, route := range categoryRoutes {
		if _, ok := route.audits[auditID]; ok {
			return route.category
		}
	}
	return analysis.CategoryPerformance
}
