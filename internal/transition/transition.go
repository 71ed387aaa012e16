// Package transition guards lifecycle state changes.
package transition

import "github.com/pwannenmacher/criteria-settings/internal/models"

// ModelCriteriaVersion is the model name of criteria versions
const ModelCriteriaVersion = "Criteria Version"

// forbidden lists, per model and current state, the states that cannot follow it
var forbidden = map[string]map[models.VersionState][]models.VersionState{
	ModelCriteriaVersion: {
		models.StateUnofficial: {models.StateOutdated},
		models.StateOfficial:   {models.StateUnofficial},
		models.StateOutdated:   {models.StateUnofficial, models.StateOfficial},
	},
}

// CheckState reports whether model may move from current to next.
// Models without a transition table are never approved.
func CheckState(model string, current, next models.VersionState) bool {
	table, ok := forbidden[model]
	if !ok {
		return false
	}
	for _, s := range table[current] {
		if s == next {
			return false
		}
	}
	return true
}
