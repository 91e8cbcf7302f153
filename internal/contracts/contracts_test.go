package contracts

import (
	"errors"
	"testing"
)

func TestCostLedgerCharge(t *testing.T) {
	l := NewCostLedger(100)
	action, err := l.Charge("assay", 50)
	if err != nil || action != CostContinue {
		t.Fatalf("first charge: action=%v err=%v", action, err)
	}
	action, err = l.Charge("assay", 40)
	if err != nil {
		t.Fatalf("second charge: %v", err)
	}
	if action != CostWarn {
		t.Errorf("second charge action = %v, want warn at 90%%", action)
	}
	if got := l.Balance(); got != 10 {
		t.Errorf("balance = %v, want 10", got)
	}
}

func TestCostLedgerInsolvency(t *testing.T) {
	l := NewCostLedger(100)
	if _, err := l.Charge("seed", 90); err != nil {
		t.Fatalf("setup charge: %v", err)
	}
	action, err := l.Charge("assay", 20)
	if err == nil {
		t.Fatal("overspend accepted")
	}
	if action != CostHalt {
		t.Errorf("action = %v, want halt", action)
	}
	var debt *DebtViolation
	if !errors.As(err, &debt) {
		t.Fatalf("error type = %T, want *DebtViolation", err)
	}
	if debt.Balance != 10 || debt.Cost != 20 {
		t.Errorf("debt diagnostics = %+v", debt)
	}
	// A refused charge must not consume budget.
	if got := l.Spent(); got != 90 {
		t.Errorf("spent after refusal = %v, want 90", got)
	}
}

func TestCostLedgerDisabled(t *testing.T) {
	l := NewCostLedger(0)
	if l.Enabled() {
		t.Fatal("zero budget ledger reports enabled")
	}
	if _, err := l.Charge("assay", 1e9); err != nil {
		t.Fatalf("disabled ledger refused charge: %v", err)
	}
}

func TestCheckNoTruthLeakClean(t *testing.T) {
	record := []byte(`{"run_id":"r","morph_dna":1.2,"object_count":900,"_debug_truth":{"viability":0.9,"cell_count":5000}}`)
	if err := CheckNoTruthLeak(record); err != nil {
		t.Fatalf("clean record flagged: %v", err)
	}
}

func TestCheckNoTruthLeakDetects(t *testing.T) {
	record := []byte(`{"run_id":"r","viability":0.9,"death_compound":0.1,"cell_count":100}`)
	err := CheckNoTruthLeak(record)
	if err == nil {
		t.Fatal("leak not detected")
	}
	var leak *TruthLeakError
	if !errors.As(err, &leak) {
		t.Fatalf("error type = %T, want *TruthLeakError", err)
	}
	want := []string{"cell_count", "death_compound", "viability"}
	if len(leak.Keys) != len(want) {
		t.Fatalf("leaked keys = %v, want %v", leak.Keys, want)
	}
	for i, k := range want {
		if leak.Keys[i] != k {
			t.Errorf("leaked key %d = %q, want %q", i, leak.Keys[i], k)
		}
	}
}

func TestStrictCausalEnabled(t *testing.T) {
	cases := []struct {
		val  string
		want bool
	}{
		{"", false},
		{"0", false},
		{"false", false},
		{"1", true},
		{"true", true},
	}
	for _, tc := range cases {
		t.Setenv(StrictCausalEnvVar, tc.val)
		if got := StrictCausalEnabled(); got != tc.want {
			t.Errorf("value %q: enabled = %v, want %v", tc.val, got, tc.want)
		}
	}
}

func TestViolationMessages(t *testing.T) {
	errs := []error{
		&ConservationViolation{VesselID: "v1", SimHours: 12, LedgerTotal: 0.3, DeadFrac: 0.2},
		&TemporalCausalityError{Op: "cell_painting_assay", VesselID: "v1", SimHours: 4, Detail: "measurement at treatment instant"},
		&DebtViolation{Op: "assay", Cost: 5, Balance: 1},
		&TruthLeakError{Keys: []string{"viability"}},
	}
	for _, err := range errs {
		if err.Error() == "" {
			t.Errorf("%T has empty message", err)
		}
	}
}
