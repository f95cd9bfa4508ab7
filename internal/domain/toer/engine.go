package toer

import (
	_ "embed"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
)

//go:embed rules.yaml
var defaultRules []byte

// Metric names as they appear in the rule table.
const (
	MetricYardsPerPlay  = "yards_per_play"
	MetricTurnovers     = "turnovers"
	MetricCompletionPct = "completion_pct"
	MetricRushYPC       = "rush_ypc"
	MetricSacks         = "sacks"
	MetricThirdDownPct  = "third_down_pct"
	MetricSuccessRate   = "success_rate"
	MetricFirstDowns    = "first_downs"
	MetricPointsPerDrv  = "points_per_drive"
	MetricRedZoneTDPct  = "redzone_td_pct"
	MetricPenaltyYards  = "penalty_yards"
)

// Inputs are the eleven per-game offensive metrics the rating is built from.
type Inputs struct {
	YardsPerPlay   float64
	Turnovers      int
	CompletionPct  float64
	RushYPC        float64
	Sacks          int
	ThirdDownPct   float64
	SuccessRate    float64
	FirstDowns     float64
	PointsPerDrive float64
	RedZoneTDPct   float64
	PenaltyYards   int
}

// ── rule table schema ──────────────────────────────────────────────────────

type ruleFile struct {
	Metrics   map[string]metricSpec `yaml:"metrics"`
	Composite compositeSpec         `yaml:"composite"`
}

type metricSpec struct {
	Strategy string      `yaml:"strategy"`
	Bounds   *boundsSpec `yaml:"bounds"`
	Default  int         `yaml:"default"`
	Rules    []ruleSpec  `yaml:"rules"`
	Values   []valueSpec `yaml:"values"`
}

type boundsSpec struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type ruleSpec struct {
	Condition string `yaml:"condition"`
	Score     int    `yaml:"score"`
}

type valueSpec struct {
	Value float64 `yaml:"value"`
	Score int     `yaml:"score"`
}

type compositeSpec struct {
	Components []string `yaml:"components"`
	Adjustment string   `yaml:"adjustment"`
	Min        float64  `yaml:"min"`
	Max        float64  `yaml:"max"`
}

// ── compiled form ──────────────────────────────────────────────────────────

type compiledRule struct {
	cond  Condition
	score int
}

type compiledMetric struct {
	name         string
	firstMatch   bool
	bounds       *boundsSpec
	rules        []compiledRule
	exactValues  map[float64]int
	defaultScore int
}

func (m *compiledMetric) validate(value float64) error {
	if m.bounds == nil {
		return nil
	}
	if value < m.bounds.Min || value > m.bounds.Max {
		return shared.WrapError("toer", "Validate", shared.ErrValueOutOfRange,
			fmt.Sprintf("%s=%g outside [%g, %g]", m.name, value, m.bounds.Min, m.bounds.Max), nil)
	}
	return nil
}

func (m *compiledMetric) score(value float64) int {
	if m.exactValues != nil {
		if s, ok := m.exactValues[value]; ok {
			return s
		}
		return m.defaultScore
	}

	if m.firstMatch {
		for _, r := range m.rules {
			if r.cond.Matches(value) {
				return r.score
			}
		}
		return m.defaultScore
	}

	// Max-match: every matching rule is considered and the highest score
	// wins, so overlapping brackets cannot silently change results.
	best := math.MinInt
	matched := false
	for _, r := range m.rules {
		if r.cond.Matches(value) && r.score > best {
			best = r.score
			matched = true
		}
	}
	if !matched {
		return m.defaultScore
	}
	return best
}

// ── engine ─────────────────────────────────────────────────────────────────

// Engine scores offensive metrics against the compiled rule table. Construct
// one at process start and share it; it is immutable after construction and
// safe for concurrent use.
type Engine struct {
	metrics    map[string]*compiledMetric
	components []string
	adjustment string
	minTotal   float64
	maxTotal   float64
}

// NewEngine compiles the built-in rule table.
func NewEngine() (*Engine, error) {
	return NewEngineFromYAML(defaultRules)
}

// NewEngineFromYAML compiles a rule table from YAML, allowing alternative
// scoring tables to be loaded from configuration.
func NewEngineFromYAML(raw []byte) (*Engine, error) {
	var file ruleFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, shared.WrapError("toer", "ParseRules", shared.ErrInvalidFormat, "rule table is not valid YAML", err)
	}
	if len(file.Metrics) == 0 {
		return nil, shared.NewDomainError("toer", "ParseRules", shared.ErrInvalidFormat, "rule table has no metrics")
	}

	eng := &Engine{
		metrics:    make(map[string]*compiledMetric, len(file.Metrics)),
		components: file.Composite.Components,
		adjustment: file.Composite.Adjustment,
		minTotal:   file.Composite.Min,
		maxTotal:   file.Composite.Max,
	}

	for name, spec := range file.Metrics {
		cm, err := compileMetric(name, spec)
		if err != nil {
			return nil, err
		}
		eng.metrics[name] = cm
	}

	for _, name := range append(append([]string{}, eng.components...), eng.adjustment) {
		if _, ok := eng.metrics[name]; !ok {
			return nil, shared.NewDomainError("toer", "ParseRules", shared.ErrInvalidFormat,
				fmt.Sprintf("composite references unknown metric %q", name))
		}
	}
	if len(eng.components) == 0 {
		return nil, shared.NewDomainError("toer", "ParseRules", shared.ErrInvalidFormat, "composite has no components")
	}

	return eng, nil
}

func compileMetric(name string, spec metricSpec) (*compiledMetric, error) {
	cm := &compiledMetric{
		name:         name,
		firstMatch:   spec.Strategy == "first_match",
		bounds:       spec.Bounds,
		defaultScore: spec.Default,
	}

	switch {
	case len(spec.Values) > 0 && len(spec.Rules) > 0:
		return nil, shared.NewDomainError("toer", "ParseRules", shared.ErrInvalidFormat,
			fmt.Sprintf("metric %q mixes condition rules with exact values", name))
	case len(spec.Values) > 0:
		cm.exactValues = make(map[float64]int, len(spec.Values))
		for _, v := range spec.Values {
			cm.exactValues[v.Value] = v.Score
		}
	case len(spec.Rules) > 0:
		cm.rules = make([]compiledRule, 0, len(spec.Rules))
		for _, r := range spec.Rules {
			cond, err := ParseCondition(r.Condition)
			if err != nil {
				return nil, shared.WrapError("toer", "ParseRules", shared.ErrInvalidFormat,
					fmt.Sprintf("metric %q", name), err)
			}
			cm.rules = append(cm.rules, compiledRule{cond: cond, score: r.Score})
		}
	default:
		return nil, shared.NewDomainError("toer", "ParseRules", shared.ErrInvalidFormat,
			fmt.Sprintf("metric %q has no rules", name))
	}

	return cm, nil
}

// Score validates and scores a single metric value.
func (e *Engine) Score(metric string, value float64) (int, error) {
	cm, ok := e.metrics[metric]
	if !ok {
		return 0, shared.WrapError("toer", "Score", shared.ErrInvalidInput,
			fmt.Sprintf("unknown metric %q", metric), nil)
	}
	if err := cm.validate(value); err != nil {
		return 0, err
	}
	return cm.score(value), nil
}

// ComponentScores returns each component's score plus the adjustment,
// keyed by metric name. Used for methodology displays.
func (e *Engine) ComponentScores(in Inputs) (map[string]int, error) {
	values := in.byMetric()
	out := make(map[string]int, len(e.components)+1)
	for _, name := range append(append([]string{}, e.components...), e.adjustment) {
		s, err := e.Score(name, values[name])
		if err != nil {
			return nil, err
		}
		out[name] = s
	}
	return out, nil
}

// CalculateStrict computes the composite rating, propagating validation
// errors.
func (e *Engine) CalculateStrict(in Inputs) (float64, error) {
	scores, err := e.ComponentScores(in)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, name := range e.components {
		total += scores[name]
	}
	total += scores[e.adjustment]

	return clamp(float64(total), e.minTotal, e.maxTotal), nil
}

// Calculate computes the composite rating, swallowing any error into a 0.0
// score. Statistical pipelines are best-effort: one team's bad inputs must
// not halt a league-wide computation.
func (e *Engine) Calculate(in Inputs) float64 {
	score, err := e.CalculateStrict(in)
	if err != nil {
		return 0.0
	}
	return score
}

func (in Inputs) byMetric() map[string]float64 {
	return map[string]float64{
		MetricYardsPerPlay:  in.YardsPerPlay,
		MetricTurnovers:     float64(in.Turnovers),
		MetricCompletionPct: in.CompletionPct,
		MetricRushYPC:       in.RushYPC,
		MetricSacks:         float64(in.Sacks),
		MetricThirdDownPct:  in.ThirdDownPct,
		MetricSuccessRate:   in.SuccessRate,
		MetricFirstDowns:    in.FirstDowns,
		MetricPointsPerDrv:  in.PointsPerDrive,
		MetricRedZoneTDPct:  in.RedZoneTDPct,
		MetricPenaltyYards:  float64(in.PenaltyYards),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
