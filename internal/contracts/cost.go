package contracts

// CostAction is the governor's verdict after a spend.
type CostAction int

const (
	CostContinue CostAction = iota
	CostWarn
	CostHalt
)

func (a CostAction) String() string {
	switch a {
	case CostWarn:
		return "warn"
	case CostHalt:
		return "halt"
	default:
		return "continue"
	}
}

// CostLedger tracks reagent and instrument spend for a run and refuses
// operations the budget cannot cover. A non-positive budget disables
// enforcement. Calibration measurements are exempt by convention; callers
// simply do not charge them.
type CostLedger struct {
	budget float64
	spent  float64
	// WarnRatio is the fraction of budget at which Charge starts returning
	// CostWarn.
	WarnRatio float64
}

// NewCostLedger returns a ledger with the given budget and the standard
// warn threshold.
func NewCostLedger(budget float64) *CostLedger {
	return &CostLedger{budget: budget, WarnRatio: 0.8}
}

// Enabled reports whether the ledger enforces spending.
func (l *CostLedger) Enabled() bool { return l.budget > 0 }

// Budget returns the configured budget.
func (l *CostLedger) Budget() float64 { return l.budget }

// Spent returns the amount charged so far.
func (l *CostLedger) Spent() float64 { return l.spent }

// Balance returns the remaining budget. Disabled ledgers report 0.
func (l *CostLedger) Balance() float64 {
	if !l.Enabled() {
		return 0
	}
	return l.budget - l.spent
}

// Charge books a cost against the budget. Insufficient funds return a
// DebtViolation and leave the ledger untouched.
func (l *CostLedger) Charge(op string, cost float64) (CostAction, error) {
	if !l.Enabled() || cost <= 0 {
		return CostContinue, nil
	}
	if l.spent+cost > l.budget {
		return CostHalt, &DebtViolation{Op: op, Cost: cost, Balance: l.budget - l.spent}
	}
	l.spent += cost
	if l.WarnRatio > 0 && l.spent >= l.WarnRatio*l.budget {
		return CostWarn, nil
	}
	return CostContinue, nil
}
