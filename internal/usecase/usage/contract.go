package usage

import domusage "github.com/kailas-cloud/pathwise/internal/domain/usage"

// BudgetReader provides read-only access to token budget state.
type BudgetReader interface {
	Daily() domusage.Counter
	Monthly() domusage.Counter
}
