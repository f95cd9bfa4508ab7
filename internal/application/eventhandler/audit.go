// Package eventhandler contains subscribers for domain events emitted by the
// stats pipeline.
package eventhandler

import (
	"sync"
	"time"

	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
	"github.com/gridstats/nfl-efficiency-hub/pkg/logger"
)

// ═══════════════════════════════════════════════════════════════════════════
// COMPUTATION AUDIT TRAIL
//
// Keeps a bounded in-memory history of stats computations, failures and
// strategy fallbacks. The trail answers "what did the engine do recently"
// without a round trip to logs.
// ═══════════════════════════════════════════════════════════════════════════

// Outcome classifies an audit record.
type Outcome string

const (
	OutcomeComputed Outcome = "computed"
	OutcomeFailed   Outcome = "failed"
	OutcomeFallback Outcome = "fallback"
)

// ComputationRecord is one entry in the audit trail.
type ComputationRecord struct {
	Team       string    `json:"team"`
	Season     int       `json:"season"`
	SeasonType string    `json:"season_type,omitempty"`
	Strategy   string    `json:"strategy,omitempty"`
	Outcome    Outcome   `json:"outcome"`
	TOER       float64   `json:"toer,omitempty"`
	Games      int       `json:"games,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// AuditConfig controls trail size and logging.
type AuditConfig struct {
	// HistorySize bounds the number of retained records. Oldest are dropped.
	HistorySize int

	// LogEvents mirrors every record to the structured logger.
	LogEvents bool
}

// DefaultAuditConfig returns the configuration used by the service binary.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		HistorySize: 256,
		LogEvents:   true,
	}
}

// AuditTrail subscribes to computation events and records them.
type AuditTrail struct {
	mu      sync.RWMutex
	records []ComputationRecord
	limit   int
	log     *logger.Logger
	logOn   bool
	now     func() time.Time
}

// NewAuditTrail creates an empty trail.
func NewAuditTrail(config AuditConfig, log *logger.Logger) *AuditTrail {
	if config.HistorySize <= 0 {
		config.HistorySize = 256
	}
	if log == nil {
		log = logger.Default()
	}

	return &AuditTrail{
		records: make([]ComputationRecord, 0, config.HistorySize),
		limit:   config.HistorySize,
		log:     log.With(logger.Component("audit")),
		logOn:   config.LogEvents,
		now:     time.Now,
	}
}

// Register subscribes the trail to the events it understands.
func (a *AuditTrail) Register(bus shared.EventSubscriber) error {
	for _, et := range []shared.EventType{
		shared.EventStatsComputed,
		shared.EventStatsComputeFail,
		shared.EventStrategyFallback,
	} {
		if err := bus.Subscribe(et, a.Handle); err != nil {
			return err
		}
	}
	return nil
}

// Handle is a shared.EventHandler recording one event.
func (a *AuditTrail) Handle(event shared.Event) error {
	switch e := event.(type) {
	case shared.StatsComputedEvent:
		a.append(ComputationRecord{
			Team:       e.Team,
			Season:     e.Season,
			SeasonType: e.SeasonType,
			Strategy:   e.Strategy,
			Outcome:    OutcomeComputed,
			TOER:       e.TOER,
			Games:      e.Games,
		})
	case shared.StatsComputeFailedEvent:
		a.append(ComputationRecord{
			Team:       e.Team,
			Season:     e.Season,
			SeasonType: e.SeasonType,
			Strategy:   e.Strategy,
			Outcome:    OutcomeFailed,
			Reason:     e.Reason,
		})
	case shared.StrategyFallbackEvent:
		a.append(ComputationRecord{
			Team:     e.Team,
			Season:   e.Season,
			Strategy: e.To,
			Outcome:  OutcomeFallback,
			Reason:   e.Reason,
		})
	default:
		// Other event types are not part of the computation trail.
	}
	return nil
}

func (a *AuditTrail) append(rec ComputationRecord) {
	rec.RecordedAt = a.now()

	a.mu.Lock()
	a.records = append(a.records, rec)
	if len(a.records) > a.limit {
		a.records = a.records[len(a.records)-a.limit:]
	}
	a.mu.Unlock()

	if a.logOn {
		a.log.Info("computation recorded",
			logger.TeamAbbr(rec.Team),
			logger.SeasonYear(rec.Season),
			logger.String("outcome", string(rec.Outcome)),
			logger.String("strategy", rec.Strategy),
		)
	}
}

// Recent returns up to n records, newest first.
func (a *AuditTrail) Recent(n int) []ComputationRecord {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if n <= 0 || n > len(a.records) {
		n = len(a.records)
	}

	out := make([]ComputationRecord, n)
	for i := 0; i < n; i++ {
		out[i] = a.records[len(a.records)-1-i]
	}
	return out
}

// FailureCount returns how many failed computations the trail holds.
func (a *AuditTrail) FailureCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	count := 0
	for _, r := range a.records {
		if r.Outcome == OutcomeFailed {
			count++
		}
	}
	return count
}

// Len returns the number of retained records.
func (a *AuditTrail) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.records)
}
