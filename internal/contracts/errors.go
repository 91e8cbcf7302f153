// Package contracts enforces the simulator's hard guarantees: the death
// ledger must balance, spending must stay solvent, operations must respect
// time order, and ground truth must never leak into measurement records.
package contracts

import (
	"fmt"
	"strings"
)

// ConservationEpsilon is the tolerance for the death ledger balance check.
const ConservationEpsilon = 1e-6

// ConservationViolation reports a death ledger that no longer balances the
// dead fraction of its vessel.
type ConservationViolation struct {
	VesselID    string
	SimHours    float64
	LedgerTotal float64
	DeadFrac    float64
}

func (e *ConservationViolation) Error() string {
	return fmt.Sprintf("conservation violation in vessel %s at t=%.2fh: ledger total %.9f vs dead fraction %.9f (tolerance %g)",
		e.VesselID, e.SimHours, e.LedgerTotal, e.DeadFrac, ConservationEpsilon)
}

// TemporalCausalityError reports an operation that would observe or mutate
// state out of time order.
type TemporalCausalityError struct {
	Op       string
	VesselID string
	SimHours float64
	Detail   string
}

func (e *TemporalCausalityError) Error() string {
	if e.VesselID == "" {
		return fmt.Sprintf("temporal causality violation in %s at t=%.2fh: %s", e.Op, e.SimHours, e.Detail)
	}
	return fmt.Sprintf("temporal causality violation in %s on vessel %s at t=%.2fh: %s", e.Op, e.VesselID, e.SimHours, e.Detail)
}

// DebtViolation reports an operation refused because the cost ledger lacks
// funds to cover it.
type DebtViolation struct {
	Op      string
	Cost    float64
	Balance float64
}

func (e *DebtViolation) Error() string {
	return fmt.Sprintf("debt violation: %s costs %.2f but balance is %.2f", e.Op, e.Cost, e.Balance)
}

// TruthLeakError reports ground-truth keys found at the top level of a
// measurement record.
type TruthLeakError struct {
	Keys []string
}

func (e *TruthLeakError) Error() string {
	return fmt.Sprintf("ground truth leaked into measurement record: %s", strings.Join(e.Keys, ", "))
}
