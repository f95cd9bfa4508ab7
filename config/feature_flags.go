package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FeatureFlags manages runtime feature toggles. Flags gate optional wiring
// (database strategy, Redis snapshots, admin endpoints) so a deployment can
// be trimmed without code changes.
type FeatureFlags struct {
	mu       sync.RWMutex
	features map[string]*Feature
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Time-based activation
	EnabledFrom  *time.Time
	EnabledUntil *time.Time
}

// Predefined feature flag names.
const (
	// FeatureDatabaseStrategy enables the database-optimized retrieval
	// strategy when a database is configured.
	FeatureDatabaseStrategy = "strategy.database_optimized"

	// FeatureRedisSnapshots enables the shared Redis snapshot store.
	FeatureRedisSnapshots = "cache.redis_snapshots"

	// FeatureCacheAdmin exposes the cache clearing endpoint.
	FeatureCacheAdmin = "api.cache_admin"

	// FeaturePostseasonStats enables postseason season-type queries.
	FeaturePostseasonStats = "stats.postseason"
)

// LoadFeatureFlags loads feature flags from environment variables.
// FEATURE_STRATEGY_DATABASE_OPTIMIZED=false turns the matching flag off.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{features: make(map[string]*Feature)}
	ff.initializeDefaults()
	ff.loadFromEnvironment()
	return ff
}

func (ff *FeatureFlags) initializeDefaults() {
	defaults := []Feature{
		{
			Name:        FeatureDatabaseStrategy,
			Description: "Serve team queries from the database when loaded",
			Enabled:     true,
		},
		{
			Name:        FeatureRedisSnapshots,
			Description: "Share computed league snapshots through Redis",
			Enabled:     true,
		},
		{
			Name:        FeatureCacheAdmin,
			Description: "Expose DELETE /api/v1/cache",
			Enabled:     true,
		},
		{
			Name:        FeaturePostseasonStats,
			Description: "Allow season_type=POST queries",
			Enabled:     true,
		},
	}

	for i := range defaults {
		f := defaults[i]
		ff.features[f.Name] = &f
	}
}

func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		val := os.Getenv(featureNameToEnvKey(name))
		if val == "" {
			continue
		}
		if enabled, err := strconv.ParseBool(val); err == nil {
			feature.Enabled = enabled
		}
	}
}

// featureNameToEnvKey converts "strategy.database_optimized" to
// "FEATURE_STRATEGY_DATABASE_OPTIMIZED".
func featureNameToEnvKey(name string) string {
	key := strings.ReplaceAll(name, ".", "_")
	return "FEATURE_" + strings.ToUpper(key)
}

// IsEnabled reports whether a feature is active at the given time.
func (ff *FeatureFlags) IsEnabled(featureName string) bool {
	return ff.IsEnabledAt(featureName, time.Now())
}

// IsEnabledAt reports whether a feature is active at a specific instant.
func (ff *FeatureFlags) IsEnabledAt(featureName string, now time.Time) bool {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	feature, ok := ff.features[featureName]
	if !ok || !feature.Enabled {
		return false
	}
	if feature.EnabledFrom != nil && now.Before(*feature.EnabledFrom) {
		return false
	}
	if feature.EnabledUntil != nil && now.After(*feature.EnabledUntil) {
		return false
	}
	return true
}

// EnableFeature turns a feature on.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.setEnabled(featureName, true)
}

// DisableFeature turns a feature off.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.setEnabled(featureName, false)
}

func (ff *FeatureFlags) setEnabled(featureName string, enabled bool) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return fmt.Errorf("unknown feature %q", featureName)
	}
	feature.Enabled = enabled
	return nil
}

// GetAllFeatures returns a copy of every flag for inspection.
func (ff *FeatureFlags) GetAllFeatures() map[string]Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	out := make(map[string]Feature, len(ff.features))
	for name, feature := range ff.features {
		out[name] = *feature
	}
	return out
}
