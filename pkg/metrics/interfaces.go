package metrics

import (
	"github.com/mfreeman451/passpersist/pkg/models"
)

// CycleStore keeps the most recent refresh cycles.
type CycleStore interface {
	Add(cycle models.RefreshCycle)
	GetCycles() []models.RefreshCycle
	GetLastCycle() *models.RefreshCycle
}
