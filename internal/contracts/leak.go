package contracts

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// StrictCausalEnvVar toggles hard failures for truth leaks and causality
// violations. Any value other than empty, "0", and "false" enables it.
const StrictCausalEnvVar = "VITROLAB_STRICT_CAUSAL"

// StrictCausalEnabled reports whether the strict causal contract is active.
func StrictCausalEnabled() bool {
	v := os.Getenv(StrictCausalEnvVar)
	return v != "" && v != "0" && v != "false"
}

// Ground-truth keys banned from the top level of measurement records.
// Keys under the reserved underscore namespace are debug payload and exempt.
var bannedTruthKeys = map[string]struct{}{
	"viability":  {},
	"cell_count": {},
	"live_count": {},
}

const bannedTruthPrefix = "death_"

// CheckNoTruthLeak scans the top-level keys of a marshaled measurement
// record and returns a TruthLeakError when ground-truth keys are present.
func CheckNoTruthLeak(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("truth leak check: record is not a JSON object: %w", err)
	}
	var leaked []string
	for k := range m {
		if strings.HasPrefix(k, "_") {
			continue
		}
		if _, banned := bannedTruthKeys[k]; banned || strings.HasPrefix(k, bannedTruthPrefix) {
			leaked = append(leaked, k)
		}
	}
	if len(leaked) > 0 {
		sort.Strings(leaked)
		return &TruthLeakError{Keys: leaked}
	}
	return nil
}
