// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// ═══════════════════════════════════════════════════════════════════════════
// Analysis Configuration
// ═══════════════════════════════════════════════════════════════════════════

// AnalysisConfig controls which edge-case plays are included in computed
// statistics. The defaults match the official NFL statistics: kneel-downs
// count as rushing attempts and spikes count as pass attempts.
type AnalysisConfig struct {
	// IncludeQBKneelsRushing keeps QB kneels in rushing attempt and
	// yards-per-carry figures.
	IncludeQBKneelsRushing bool `json:"include_qb_kneels_rushing"`

	// IncludeQBKneelsSuccessRate keeps QB kneels in play success rate.
	IncludeQBKneelsSuccessRate bool `json:"include_qb_kneels_success_rate"`

	// IncludeSpikesCompletion keeps clock-stopping spikes in completion
	// percentage.
	IncludeSpikesCompletion bool `json:"include_spikes_completion"`

	// IncludeSpikesSuccessRate keeps spikes in play success rate.
	IncludeSpikesSuccessRate bool `json:"include_spikes_success_rate"`
}

// DefaultAnalysisConfig returns the configuration matching official NFL
// statistics (everything included).
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		IncludeQBKneelsRushing:     true,
		IncludeQBKneelsSuccessRate: true,
		IncludeSpikesCompletion:    true,
		IncludeSpikesSuccessRate:   true,
	}
}

// AnalyticsCleanConfig returns a configuration that strips kneels and spikes
// from every metric, for efficiency analysis free of end-of-game noise.
func AnalyticsCleanConfig() AnalysisConfig {
	return AnalysisConfig{}
}

// IsNFLOfficial reports whether the configuration matches official NFL
// counting rules.
func (c AnalysisConfig) IsNFLOfficial() bool {
	return c == DefaultAnalysisConfig()
}

// ProfileName returns a short label for the configuration.
func (c AnalysisConfig) ProfileName() string {
	switch c {
	case DefaultAnalysisConfig():
		return "nfl_official"
	case AnalyticsCleanConfig():
		return "analytics_clean"
	default:
		return "custom"
	}
}

// Hash returns a short stable digest of the configuration. Two configurations
// with the same settings always produce the same hash regardless of how they
// were constructed, so the hash is safe to embed in cache keys.
func (c AnalysisConfig) Hash() string {
	return hashCanonical(c)
}

// CacheKey derives the cache key for a (season, season type, configuration)
// combination. Different configurations never share cached results.
func CacheKey(season SeasonYear, seasonType SeasonType, cfg AnalysisConfig) string {
	return fmt.Sprintf("league:%d:%s:%s", season.Int(), seasonType, cfg.Hash())
}

// hashCanonical hashes any JSON-encodable value in a key-order-independent
// way: the value is round-tripped through a generic map so that object keys
// serialize sorted, then digested with BLAKE2b.
func hashCanonical(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "invalid"
	}

	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "invalid"
	}

	canonical, err := json.Marshal(generic)
	if err != nil {
		return "invalid"
	}

	sum := blake2b.Sum256(canonical)
	return hex.EncodeToString(sum[:])[:16]
}
