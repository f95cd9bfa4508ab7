package play

import (
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
)

// ApplyConfiguration returns a new table with the analysis configuration
// applied. The input table is never modified.
//
// For each special play type (kneels, spikes) there are two independent
// switches. When both switches exclude the play it is removed outright; when
// only one does, the play stays in the table carrying an exclusion tag so
// that only the affected metric skips it.
func ApplyConfiguration(t Table, cfg shared.AnalysisConfig) Table {
	if t.IsEmpty() || !t.Columns.Has(ColPlayType) {
		return t
	}

	out := make([]Play, 0, len(t.Plays))
	for _, p := range t.Plays {
		switch {
		case p.IsKneel():
			keep, tagged := applyKneelConfig(p, cfg)
			if keep {
				out = append(out, tagged)
			}
		case p.IsSpike():
			keep, tagged := applySpikeConfig(p, cfg)
			if keep {
				out = append(out, tagged)
			}
		default:
			out = append(out, p)
		}
	}
	return t.withPlays(out)
}

func applyKneelConfig(p Play, cfg shared.AnalysisConfig) (keep bool, tagged Play) {
	switch {
	case !cfg.IncludeQBKneelsRushing && !cfg.IncludeQBKneelsSuccessRate:
		return false, p
	case !cfg.IncludeQBKneelsRushing:
		p.KneelExclusion = ExcludeRushing
	case !cfg.IncludeQBKneelsSuccessRate:
		p.KneelExclusion = ExcludeSuccessRate
	}
	return true, p
}

func applySpikeConfig(p Play, cfg shared.AnalysisConfig) (keep bool, tagged Play) {
	switch {
	case !cfg.IncludeSpikesCompletion && !cfg.IncludeSpikesSuccessRate:
		return false, p
	case !cfg.IncludeSpikesCompletion:
		p.SpikeExclusion = ExcludeCompletion
	case !cfg.IncludeSpikesSuccessRate:
		p.SpikeExclusion = ExcludeSuccessRate
	}
	return true, p
}
