package play

import (
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
)

// Filter selects plays for the different calculation contexts. All methods
// fail open: when a source is missing a column a filter needs, the result is
// an empty table rather than a wrong one, and the dependent metric reads
// zero.
type Filter struct{}

// NewFilter creates a play filter.
func NewFilter() *Filter {
	return &Filter{}
}

// OffensivePlays returns the plays that count toward official offensive
// statistics: rush and pass attempts, excluding two-point conversion
// attempts (scoring plays) and plays with no recorded yardage.
func (f *Filter) OffensivePlays(t Table) Table {
	if t.IsEmpty() {
		return t
	}
	if !t.Columns.HasAll(ColRushAttempt, ColPassAttempt, ColTwoPointAttempt, ColYardsGained) {
		return t.empty()
	}
	return t.Select(func(p Play) bool {
		return (p.RushAttempt || p.PassAttempt) && !p.TwoPointAttempt && p.HasYards()
	})
}

// RushingPlays returns rush attempts with configuration exclusions applied.
func (f *Filter) RushingPlays(t Table) Table {
	if t.IsEmpty() {
		return t
	}
	if !t.Columns.Has(ColRushAttempt) {
		return t.empty()
	}
	return t.Select(func(p Play) bool {
		if !p.RushAttempt || !p.HasYards() || p.TwoPointAttempt {
			return false
		}
		return p.KneelExclusion != ExcludeRushing
	})
}

// PassingPlays returns pass attempts excluding sacks, two-point conversions,
// and spikes excluded from completion percentage by configuration.
func (f *Filter) PassingPlays(t Table) Table {
	if t.IsEmpty() {
		return t
	}
	if !t.Columns.HasAll(ColPassAttempt, ColSack, ColTwoPointAttempt) {
		return t.empty()
	}
	return t.Select(func(p Play) bool {
		if !p.PassAttempt || p.Sack || p.TwoPointAttempt {
			return false
		}
		return p.SpikeExclusion != ExcludeCompletion
	})
}

// ThirdDownAttempts returns third-down rush and pass attempts, excluding
// two-point conversions and plays the configuration excludes from
// efficiency metrics.
func (f *Filter) ThirdDownAttempts(t Table) Table {
	if t.IsEmpty() {
		return t
	}
	if !t.Columns.HasAll(ColDown, ColRushAttempt, ColPassAttempt, ColTwoPointAttempt) {
		return t.empty()
	}
	return t.Select(func(p Play) bool {
		if p.Down == nil || *p.Down != 3 {
			return false
		}
		if !(p.RushAttempt || p.PassAttempt) || p.TwoPointAttempt {
			return false
		}
		return p.KneelExclusion != ExcludeSuccessRate && p.SpikeExclusion != ExcludeSuccessRate
	})
}

// OffensiveTouchdowns returns touchdowns scored BY the team, excluding
// defensive touchdowns scored against it while it had possession. Uses the
// td_team attribution when available; otherwise falls back to a yardage
// heuristic that keeps positive-yard touchdowns and zero-yard touchdowns on
// rush or pass attempts.
func (f *Filter) OffensiveTouchdowns(t Table, team shared.TeamAbbr) Table {
	if t.IsEmpty() {
		return t
	}
	if !t.Columns.Has(ColTouchdown) {
		return t.empty()
	}
	if t.Columns.Has(ColTDTeam) && team != "" {
		abbr := team.String()
		return t.Select(func(p Play) bool {
			return p.Touchdown && p.TDTeam == abbr
		})
	}
	return t.Select(func(p Play) bool {
		if !p.Touchdown {
			return false
		}
		if p.Yards() > 0 {
			return true
		}
		return p.Yards() == 0 && (p.RushAttempt || p.PassAttempt)
	})
}

// SuccessRateEligible drops plays the configuration excludes from success
// rate computation.
func (f *Filter) SuccessRateEligible(t Table) Table {
	if t.IsEmpty() {
		return t
	}
	return t.Select(func(p Play) bool {
		return p.KneelExclusion != ExcludeSuccessRate && p.SpikeExclusion != ExcludeSuccessRate
	})
}
