package enums

import "testing"

func TestParsePayoutStatus(t *testing.T) {
	for _, status := range PayoutStatuses() {
		got, err := ParsePayoutStatus(string(status))
		if err != nil || got != status {
			t.Fatalf("expected %s to parse, got %q err=%v", status, got, err)
		}
	}
	if _, err := ParsePayoutStatus("settled"); err == nil {
		t.Fatal("expected unknown status to fail")
	}
}

func TestPayoutStatusTerminal(t *testing.T) {
	terminal := map[PayoutStatus]bool{PayoutStatusPaid: true, PayoutStatusCancelled: true}
	for _, status := range PayoutStatuses() {
		if status.IsTerminal() != terminal[status] {
			t.Fatalf("unexpected terminal flag for %s", status)
		}
	}
}

func TestParseACHProviderNormalizes(t *testing.T) {
	got, err := ParseACHProvider("  Stripe ")
	if err != nil || got != ACHProviderStripe {
		t.Fatalf("expected stripe, got %q err=%v", got, err)
	}
	if _, err := ParseACHProvider("bogus"); err == nil {
		t.Fatal("expected bogus provider to fail")
	}
}

func TestAuditEventVisibility(t *testing.T) {
	tests := map[AuditEventType]bool{
		AuditEventPayoutCreated:    false,
		AuditEventPayoutScheduled:  false,
		AuditEventPayoutProcessing: false,
		AuditEventPayoutPaid:       true,
		AuditEventPayoutFailed:     true,
		AuditEventPayoutCancelled:  true,
	}
	for eventType, want := range tests {
		if got := eventType.AgentVisible(); got != want {
			t.Fatalf("%s: expected visible=%v got %v", eventType, want, got)
		}
	}
}

func TestAuditEventForStatus(t *testing.T) {
	for _, status := range PayoutStatuses() {
		eventType, err := AuditEventForStatus(status)
		if err != nil {
			t.Fatalf("status %s: %v", status, err)
		}
		if !eventType.IsValid() {
			t.Fatalf("status %s mapped to invalid event %q", status, eventType)
		}
	}
	if _, err := AuditEventForStatus("bogus"); err == nil {
		t.Fatal("expected unknown status to fail")
	}
}

func TestParseCalculationPolicy(t *testing.T) {
	if p, err := ParseCalculationPolicy("SIMPLE_SPLIT"); err != nil || p != CalculationPolicySimpleSplit {
		t.Fatalf("expected simple_split, got %q err=%v", p, err)
	}
	if _, err := ParseCalculationPolicy("rpc_v3"); err == nil {
		t.Fatal("expected unknown policy to fail")
	}
}
