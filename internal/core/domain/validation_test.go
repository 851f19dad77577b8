package domain

import "testing"

func TestPartitionSplitsBySeverity(t *testing.T) {
	result := ValidationResult{Flags: []ValidationFlag{
		{Code: CodeMissingPeriod, Severity: SeverityBlocking},
		{Code: CodeUnitMixed, Severity: SeverityWarning},
		{Code: CodePeriodOverlap, Severity: SeverityWarning},
		{Code: CodeIncompleteExtraction, Severity: SeverityInfo},
	}}

	buckets := result.Partition()
	if len(buckets.Blocking) != 1 || len(buckets.Warning) != 2 || len(buckets.Info) != 1 {
		t.Fatalf("unexpected split: %d/%d/%d", len(buckets.Blocking), len(buckets.Warning), len(buckets.Info))
	}
}

func TestRemediationForRoutesDeclarantFlags(t *testing.T) {
	cases := []struct {
		name string
		flag ValidationFlag
		want RemediationReason
	}{
		{
			"exact code",
			ValidationFlag{Code: CodeMissingDeclarant, Severity: SeverityBlocking},
			RemediationMissingDeclarant,
		},
		{
			"missing required declarant field",
			ValidationFlag{Code: CodeMissingRequired, Severity: SeverityBlocking, FieldName: "declarant_info.name"},
			RemediationMissingDeclarant,
		},
		{
			"message mentions declarant",
			ValidationFlag{Code: CodeMissingRequired, Severity: SeverityBlocking, Message: "The Declarant block is empty"},
			RemediationMissingDeclarant,
		},
		{
			"missing required elsewhere",
			ValidationFlag{Code: CodeMissingRequired, Severity: SeverityBlocking, FieldName: "installation_info.country"},
			RemediationNone,
		},
		{
			"declarant warning is not remediable",
			ValidationFlag{Code: CodeMissingDeclarant, Severity: SeverityWarning},
			RemediationNone,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RemediationFor(tc.flag); got != tc.want {
				t.Fatalf("RemediationFor = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNeedsDeclarant(t *testing.T) {
	with := ValidationResult{Flags: []ValidationFlag{
		{Code: CodeMissingDeclarant, Severity: SeverityBlocking},
	}}
	without := ValidationResult{Flags: []ValidationFlag{
		{Code: CodeMissingPeriod, Severity: SeverityBlocking},
	}}

	if !with.NeedsDeclarant() {
		t.Fatalf("declarant flag not detected")
	}
	if without.NeedsDeclarant() {
		t.Fatalf("non-declarant flag triggered the form")
	}
}
