package domain

import "testing"

func TestIsTerminal(t *testing.T) {
	terminal := []DocumentStatus{StatusOCRFailed, StatusExtractionFailed, StatusExtractionComplete, StatusReviewed}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Fatalf("%q must be terminal", s)
		}
	}

	active := []DocumentStatus{StatusUploaded, StatusOCRProcessing, StatusOCRComplete, StatusExtractionProcessing}
	for _, s := range active {
		if s.IsTerminal() {
			t.Fatalf("%q must not be terminal", s)
		}
	}
}

func TestIsFailed(t *testing.T) {
	if !StatusOCRFailed.IsFailed() || !StatusExtractionFailed.IsFailed() {
		t.Fatalf("failure statuses not detected")
	}
	if StatusExtractionComplete.IsFailed() || StatusReviewed.IsFailed() {
		t.Fatalf("success statuses misreported as failed")
	}
}

func TestDeclarantInfoValidate(t *testing.T) {
	complete := DeclarantInfo{IdentificationNumber: "DE123456789", Name: "Osita GmbH"}
	if err := complete.Validate(); err != nil {
		t.Fatalf("complete info rejected: %v", err)
	}

	if err := (DeclarantInfo{Name: "Osita GmbH"}).Validate(); !IsKind(err, ErrInvalidInput) {
		t.Fatalf("missing identification number accepted: %v", err)
	}
	if err := (DeclarantInfo{IdentificationNumber: "DE123456789"}).Validate(); !IsKind(err, ErrInvalidInput) {
		t.Fatalf("missing name accepted: %v", err)
	}
}
