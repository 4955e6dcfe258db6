package main

import (
	"testing"
	"time"
)

func TestBuildDocumentFromSavedResponse(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	doc, err := buildDocument("../../internal/pagespeed/testdata/runpagespeed_mobile.json", "mobile", now)
	if err != nil {
		t.Fatalf("build document: %v", err)
	}
	if doc.URL != "https://www.example.com" {
		t.Fatalf("expected requested url, got %q", doc.URL)
	}
	if err := doc.Validate(); err != nil {
		t.Fatalf("document invalid: %v", err)
	}
	if doc.Campaign.Summary.TotalIssues != 5 {
		t.Fatalf("expected 5 mapped issues, got %d", doc.Campaign.Summary.TotalIssues)
	}
}

func TestBuildDocumentMissingFile(t *testing.T) {
	if _, err := buildDocument("does-not-exist.json", "mobile", time.Now()); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
