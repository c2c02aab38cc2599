package office

import "testing"

func TestTransitionSubstantiveChangeResetsToPending(t *testing.T) {
	tests := []struct {
		name    string
		current ApprovalStatus
		changed []string
	}{
		{"approved price change", ApprovalApproved, []string{FieldPricePerDay}},
		{"approved title change", ApprovalApproved, []string{FieldTitle}},
		{"rejected description change", ApprovalRejected, []string{FieldDescription}},
		{"approved relocation", ApprovalApproved, []string{FieldLat, FieldLng}},
		{"mixed cosmetic and substantive", ApprovalApproved, []string{FieldTags, FieldMonthlyDiscount}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, notify := Transition(tt.current, tt.changed)
			if next != ApprovalPending {
				t.Fatalf("expected pending, got %s", next)
			}
			if !notify {
				t.Fatal("expected notification")
			}
		})
	}
}

func TestTransitionCosmeticChangeKeepsStatus(t *testing.T) {
	tests := []struct {
		name    string
		current ApprovalStatus
		changed []string
	}{
		{"featured image only", ApprovalApproved, []string{FieldFeaturedImage}},
		{"tags only", ApprovalApproved, []string{FieldTags}},
		{"hidden toggle", ApprovalApproved, []string{FieldHidden}},
		{"no changes", ApprovalApproved, nil},
		{"rejected stays rejected on cosmetic edit", ApprovalRejected, []string{FieldHidden}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, notify := Transition(tt.current, tt.changed)
			if next != tt.current {
				t.Fatalf("expected %s, got %s", tt.current, next)
			}
			if notify {
				t.Fatal("unexpected notification")
			}
		})
	}
}

func TestTransitionPendingStaysPending(t *testing.T) {
	next, notify := Transition(ApprovalPending, []string{FieldTitle})
	if next != ApprovalPending {
		t.Fatalf("expected pending, got %s", next)
	}
	if !notify {
		t.Fatal("expected notification")
	}
}
