// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"encoding/json"
	"strconv"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something significant that
// happened in the domain and is of interest to observability and cache
// maintenance.
const (
	// Stats events
	EventStatsComputed    EventType = "stats.computed"
	EventStatsComputeFail EventType = "stats.compute_failed"

	// Ranking events
	EventRankingsComputed EventType = "ranking.computed"

	// Cache events
	EventCacheCleared EventType = "cache.cleared"
	EventCacheEvicted EventType = "cache.evicted"

	// Data source events
	EventSeasonDataFetched EventType = "data.season_fetched"
	EventStrategyFallback  EventType = "data.strategy_fallback"
	EventSnapshotPersisted EventType = "data.snapshot_persisted"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Stats Events
// ═══════════════════════════════════════════════════════════════════════════

// StatsComputedEvent is emitted when a team's season statistics finish computing.
type StatsComputedEvent struct {
	BaseEvent
	Team       string  `json:"team"`
	Season     int     `json:"season"`
	SeasonType string  `json:"season_type"`
	Games      int     `json:"games"`
	TOER       float64 `json:"toer"`
	Strategy   string  `json:"strategy"`
}

// Payload implements Event interface.
func (e StatsComputedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"team":        e.Team,
		"season":      e.Season,
		"season_type": e.SeasonType,
		"games":       e.Games,
		"toer":        e.TOER,
		"strategy":    e.Strategy,
	}
}

// NewStatsComputedEvent creates a new StatsComputedEvent.
func NewStatsComputedEvent(team string, season int, seasonType string, games int, toer float64, strategy string) StatsComputedEvent {
	return StatsComputedEvent{
		BaseEvent:  NewBaseEvent(EventStatsComputed, team),
		Team:       team,
		Season:     season,
		SeasonType: seasonType,
		Games:      games,
		TOER:       toer,
		Strategy:   strategy,
	}
}

// StatsComputeFailedEvent is emitted when every retrieval strategy failed
// and an empty result was returned instead.
type StatsComputeFailedEvent struct {
	BaseEvent
	Team       string `json:"team"`
	Season     int    `json:"season"`
	SeasonType string `json:"season_type"`
	Strategy   string `json:"strategy"`
	Reason     string `json:"reason"`
}

// Payload implements Event interface.
func (e StatsComputeFailedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"team":        e.Team,
		"season":      e.Season,
		"season_type": e.SeasonType,
		"strategy":    e.Strategy,
		"reason":      e.Reason,
	}
}

// NewStatsComputeFailedEvent creates a new StatsComputeFailedEvent.
func NewStatsComputeFailedEvent(team string, season int, seasonType, strategy, reason string) StatsComputeFailedEvent {
	return StatsComputeFailedEvent{
		BaseEvent:  NewBaseEvent(EventStatsComputeFail, team),
		Team:       team,
		Season:     season,
		SeasonType: seasonType,
		Strategy:   strategy,
		Reason:     reason,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Ranking Events
// ═══════════════════════════════════════════════════════════════════════════

// RankingsComputedEvent is emitted when full league rankings are recomputed.
type RankingsComputedEvent struct {
	BaseEvent
	Season     int    `json:"season"`
	SeasonType string `json:"season_type"`
	Teams      int    `json:"teams"`
	Metrics    int    `json:"metrics"`
}

// Payload implements Event interface.
func (e RankingsComputedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"season":      e.Season,
		"season_type": e.SeasonType,
		"teams":       e.Teams,
		"metrics":     e.Metrics,
	}
}

// NewRankingsComputedEvent creates a new RankingsComputedEvent.
func NewRankingsComputedEvent(season int, seasonType string, teams, metrics int) RankingsComputedEvent {
	return RankingsComputedEvent{
		BaseEvent:  NewBaseEvent(EventRankingsComputed, seasonAggregateID(season, seasonType)),
		Season:     season,
		SeasonType: seasonType,
		Teams:      teams,
		Metrics:    metrics,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Cache Events
// ═══════════════════════════════════════════════════════════════════════════

// CacheClearedEvent is emitted when cache entries are invalidated.
type CacheClearedEvent struct {
	BaseEvent
	Pattern string `json:"pattern,omitempty"`
	Entries int    `json:"entries"`
}

// Payload implements Event interface.
func (e CacheClearedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"pattern": e.Pattern,
		"entries": e.Entries,
	}
}

// NewCacheClearedEvent creates a new CacheClearedEvent.
func NewCacheClearedEvent(pattern string, entries int) CacheClearedEvent {
	return CacheClearedEvent{
		BaseEvent: NewBaseEvent(EventCacheCleared, pattern),
		Pattern:   pattern,
		Entries:   entries,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Data Source Events
// ═══════════════════════════════════════════════════════════════════════════

// SeasonDataFetchedEvent is emitted after a full season download completes.
type SeasonDataFetchedEvent struct {
	BaseEvent
	Season   int           `json:"season"`
	Plays    int           `json:"plays"`
	Source   string        `json:"source"`
	Duration time.Duration `json:"duration"`
}

// Payload implements Event interface.
func (e SeasonDataFetchedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"season":   e.Season,
		"plays":    e.Plays,
		"source":   e.Source,
		"duration": e.Duration.String(),
	}
}

// NewSeasonDataFetchedEvent creates a new SeasonDataFetchedEvent.
func NewSeasonDataFetchedEvent(season, plays int, source string, duration time.Duration) SeasonDataFetchedEvent {
	return SeasonDataFetchedEvent{
		BaseEvent: NewBaseEvent(EventSeasonDataFetched, seasonAggregateID(season, "")),
		Season:    season,
		Plays:     plays,
		Source:    source,
		Duration:  duration,
	}
}

// StrategyFallbackEvent is emitted when the database-optimized path fails and
// the orchestrator falls back to a fresh remote computation.
type StrategyFallbackEvent struct {
	BaseEvent
	Team   string `json:"team"`
	Season int    `json:"season"`
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

// Payload implements Event interface.
func (e StrategyFallbackEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"team":   e.Team,
		"season": e.Season,
		"from":   e.From,
		"to":     e.To,
		"reason": e.Reason,
	}
}

// NewStrategyFallbackEvent creates a new StrategyFallbackEvent.
func NewStrategyFallbackEvent(team string, season int, from, to, reason string) StrategyFallbackEvent {
	return StrategyFallbackEvent{
		BaseEvent: NewBaseEvent(EventStrategyFallback, team),
		Team:      team,
		Season:    season,
		From:      from,
		To:        to,
		Reason:    reason,
	}
}

// SnapshotPersistedEvent is emitted when a season snapshot is written to the
// database for the optimized retrieval strategy.
type SnapshotPersistedEvent struct {
	BaseEvent
	Season int    `json:"season"`
	Plays  int64  `json:"plays"`
	Source string `json:"source"`
}

// Payload implements Event interface.
func (e SnapshotPersistedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"season": e.Season,
		"plays":  e.Plays,
		"source": e.Source,
	}
}

// NewSnapshotPersistedEvent creates a new SnapshotPersistedEvent.
func NewSnapshotPersistedEvent(season int, plays int64, source string) SnapshotPersistedEvent {
	return SnapshotPersistedEvent{
		BaseEvent: NewBaseEvent(EventSnapshotPersisted, seasonAggregateID(season, "")),
		Season:    season,
		Plays:     plays,
		Source:    source,
	}
}

func seasonAggregateID(season int, seasonType string) string {
	if seasonType == "" {
		return "season-" + strconv.Itoa(season)
	}
	return "season-" + strconv.Itoa(season) + "-" + seasonType
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
