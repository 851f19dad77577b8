package domain

import "testing"

func TestBadgeForDocumentCoversEveryStatus(t *testing.T) {
	statuses := []DocumentStatus{
		StatusUploaded, StatusOCRProcessing, StatusOCRComplete, StatusOCRFailed,
		StatusExtractionProcessing, StatusExtractionComplete, StatusExtractionFailed, StatusReviewed,
	}
	for _, s := range statuses {
		if _, err := BadgeForDocument(s); err != nil {
			t.Fatalf("BadgeForDocument(%q): %v", s, err)
		}
	}
}

func TestBadgeForUnknownStatusFailsLoudly(t *testing.T) {
	badge, err := BadgeForDocument("quarantined")
	if err == nil {
		t.Fatalf("unknown status must error")
	}
	if badge != BadgeNeutral {
		t.Fatalf("fallback badge = %q, want neutral", badge)
	}

	if _, err := BadgeForProject("archived"); err == nil {
		t.Fatalf("unknown project status must error")
	}
	if _, err := BadgeForField("disputed"); err == nil {
		t.Fatalf("unknown field status must error")
	}
}

func TestFailureBadgesAreError(t *testing.T) {
	for _, s := range []DocumentStatus{StatusOCRFailed, StatusExtractionFailed} {
		badge, err := BadgeForDocument(s)
		if err != nil {
			t.Fatalf("BadgeForDocument(%q): %v", s, err)
		}
		if badge != BadgeError {
			t.Fatalf("badge for %q = %q, want error", s, badge)
		}
	}
}
