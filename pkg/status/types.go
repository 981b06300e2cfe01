package status

import (
	"time"

	"github.com/mfreeman451/passpersist/pkg/mib"
	"github.com/mfreeman451/passpersist/pkg/models"
	"github.com/mfreeman451/passpersist/pkg/passpersist"
)

// Snapshot is the read side of the store plus its publish time.
type Snapshot interface {
	mib.Reader
	PublishedAt() time.Time
}

// Refresher exposes the refresh loop state.
type Refresher interface {
	Err() error
	Cycles() []models.RefreshCycle
}

// StatsProvider exposes protocol request counters.
type StatsProvider interface {
	Stats() passpersist.Stats
}

type EntryResponse struct {
	OID   string   `json:"oid"`
	Type  mib.Type `json:"type"`
	Value string   `json:"value"`
}

type SystemStatus struct {
	BaseOID      string                `json:"base_oid"`
	Entries      int                   `json:"entries"`
	LastRefresh  time.Time             `json:"last_refresh"`
	RefreshError string                `json:"refresh_error,omitempty"`
	Requests     passpersist.Stats     `json:"requests"`
	Cycles       []models.RefreshCycle `json:"cycles"`
}
