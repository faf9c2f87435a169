package ports

import (
	"rwafolio/internal/domain"
)

// Notifier presents cycle results to the operator. The console
// implementation prints a formatted allocation table.
type Notifier interface {
	NotifyCycle(snapshot domain.PortfolioSnapshot, executed []domain.ExecutedOrder, rejected []string)
}
