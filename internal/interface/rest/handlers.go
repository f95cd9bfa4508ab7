package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gridstats/nfl-efficiency-hub/internal/application/eventhandler"
	"github.com/gridstats/nfl-efficiency-hub/internal/application/orchestrator"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/ranking"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/stats"
	"github.com/gridstats/nfl-efficiency-hub/internal/infrastructure/cache"
	"github.com/gridstats/nfl-efficiency-hub/pkg/logger"
	"github.com/gridstats/nfl-efficiency-hub/pkg/timeutil"
)

// ═══════════════════════════════════════════════════════════════════════════
// HANDLERS
// ═══════════════════════════════════════════════════════════════════════════

// HealthCheck probes one dependency for the health endpoint.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Features toggles optional endpoint groups.
type Features struct {
	// CacheAdmin exposes the destructive cache endpoints.
	CacheAdmin bool

	// Postseason allows season_type=POST queries.
	Postseason bool
}

// DefaultFeatures enables everything.
func DefaultFeatures() Features {
	return Features{CacheAdmin: true, Postseason: true}
}

// Handler serves the API routes.
type Handler struct {
	orch     *orchestrator.Orchestrator
	league   *cache.LeagueStatsCache
	checks   []HealthCheck
	audit    *eventhandler.AuditTrail
	features Features
	log      *logger.Logger
	now      func() time.Time
}

// NewHandler wires the handler set.
func NewHandler(orch *orchestrator.Orchestrator, league *cache.LeagueStatsCache, checks []HealthCheck, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Default()
	}
	return &Handler{
		orch:     orch,
		league:   league,
		checks:   checks,
		features: DefaultFeatures(),
		log:      log.With(logger.Component("rest.handlers")),
		now:      time.Now,
	}
}

// WithFeatures overrides the endpoint toggles. Call before Register.
func (h *Handler) WithFeatures(f Features) *Handler {
	h.features = f
	return h
}

// WithAuditTrail exposes the computation audit trail on the API. Call before
// Register.
func (h *Handler) WithAuditTrail(trail *eventhandler.AuditTrail) *Handler {
	h.audit = trail
	return h
}

// Register attaches all routes to a mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/teams/{team}/analysis", h.teamAnalysis)
	mux.HandleFunc("GET /api/v1/teams/{team}/rankings", h.teamRankings)
	mux.HandleFunc("GET /api/v1/league/stats", h.leagueStats)
	mux.HandleFunc("GET /api/v1/season/current", h.currentSeason)
	mux.HandleFunc("GET /api/v1/cache/stats", h.cacheStats)
	if h.features.CacheAdmin {
		mux.HandleFunc("DELETE /api/v1/cache", h.cacheClear)
	}
	if h.audit != nil {
		mux.HandleFunc("GET /api/v1/events/recent", h.recentEvents)
	}
	mux.HandleFunc("GET /healthz", h.health)
}

// ─── team analysis ─────────────────────────────────────────────────────────

// teamAnalysisResponse wraps the orchestrator result with ranking and
// freshness context.
type teamAnalysisResponse struct {
	orchestrator.TeamAnalysis
	Rankings  ranking.Rankings    `json:"rankings,omitempty"`
	Freshness stats.DataFreshness `json:"data_freshness"`
	Context   stats.StatusMessage `json:"context"`
	Profile   string              `json:"profile"`
}

func (h *Handler) teamAnalysis(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	analysis, err := h.orch.TeamAnalysis(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := teamAnalysisResponse{
		TeamAnalysis: analysis,
		Freshness:    stats.ClassifyFreshness(analysis.DataTimestamp, h.now()),
		Context:      stats.ContextMessage(q.Season, analysis.Stats.GamesPlayed, h.now()),
		Profile:      q.Config.ProfileName(),
	}

	// Rankings come from the league cache; an empty analysis has no rank
	// and a ranking failure should not take down the analysis itself.
	if !analysis.IsEmpty() {
		if rankings, rerr := h.league.TeamRankings(r.Context(), q.Team, q.Season, q.SeasonType, q.Config); rerr == nil {
			resp.Rankings = rankings
		} else {
			h.log.Warn("ranking lookup failed", logger.TeamAbbr(q.Team.String()), logger.Err(rerr))
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) teamRankings(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	rankings, err := h.league.TeamRankings(r.Context(), q.Team, q.Season, q.SeasonType, q.Config)
	if err != nil {
		writeError(w, err)
		return
	}

	performance := make(map[string]ranking.PerformanceRank, len(rankings))
	for metric, rank := range rankings {
		performance[metric] = ranking.NewPerformanceRank(rank)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"team":        q.Team,
		"season":      q.Season,
		"season_type": q.SeasonType,
		"rankings":    rankings,
		"performance": performance,
	})
}

// ─── league ────────────────────────────────────────────────────────────────

func (h *Handler) leagueStats(w http.ResponseWriter, r *http.Request) {
	season, seasonType, cfg, err := h.parseSeasonParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ls, err := h.league.LeagueStatsFor(r.Context(), season, seasonType, cfg)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"season":         season,
		"season_type":    seasonType,
		"teams":          ls.TeamStats,
		"averages":       ls.Averages,
		"data_timestamp": ls.DataTimestamp,
		"data_freshness": stats.ClassifyFreshness(ls.DataTimestamp, h.now()),
		"source":         ls.Source,
	})
}

func (h *Handler) currentSeason(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, stats.CurrentSeasonInfo(h.now()))
}

// ─── cache ─────────────────────────────────────────────────────────────────

func (h *Handler) cacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.league.Info())
}

func (h *Handler) cacheClear(w http.ResponseWriter, r *http.Request) {
	season := 0
	if raw := r.URL.Query().Get("season"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, shared.NewDomainError("rest", "cache_clear", shared.ErrInvalidInput, "season must be a number"))
			return
		}
		season = parsed
	}

	removed := h.league.Clear(season)
	writeJSON(w, http.StatusOK, map[string]any{
		"season":  season,
		"removed": removed,
	})
}

// ─── audit trail ───────────────────────────────────────────────────────────

func (h *Handler) recentEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, shared.NewDomainError("rest", "recent_events", shared.ErrInvalidInput, "limit must be a positive number"))
			return
		}
		limit = parsed
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"events":   h.audit.Recent(limit),
		"failures": h.audit.FailureCount(),
	})
}

// ─── health ────────────────────────────────────────────────────────────────

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type dependency struct {
		Status string `json:"status"`
		Error  string `json:"error,omitempty"`
	}

	deps := make(map[string]dependency, len(h.checks))
	healthy := true
	for _, check := range h.checks {
		if err := check.Check(r.Context()); err != nil {
			deps[check.Name] = dependency{Status: "down", Error: err.Error()}
			healthy = false
		} else {
			deps[check.Name] = dependency{Status: "up"}
		}
	}

	status := http.StatusOK
	overall := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	writeJSON(w, status, map[string]any{
		"status":       overall,
		"dependencies": deps,
		"time":         h.now().UTC(),
	})
}

// ─── parameter parsing ─────────────────────────────────────────────────────

func (h *Handler) parseQuery(r *http.Request) (orchestrator.TeamAnalysisQuery, error) {
	team, err := shared.NewTeamAbbr(r.PathValue("team"))
	if err != nil {
		return orchestrator.TeamAnalysisQuery{}, shared.WrapError("rest", "parse", shared.ErrInvalidInput, "invalid team", err)
	}

	season, seasonType, cfg, err := h.parseSeasonParams(r)
	if err != nil {
		return orchestrator.TeamAnalysisQuery{}, err
	}

	return orchestrator.TeamAnalysisQuery{
		Team:       team,
		Season:     season,
		SeasonType: seasonType,
		Config:     cfg,
	}, nil
}

func (h *Handler) parseSeasonParams(r *http.Request) (shared.SeasonYear, shared.SeasonType, shared.AnalysisConfig, error) {
	query := r.URL.Query()

	season := shared.SeasonYear(timeutil.CurrentSeasonYear(h.now()))
	if raw := query.Get("season"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return 0, "", shared.AnalysisConfig{}, shared.NewDomainError("rest", "parse", shared.ErrInvalidInput, "season must be a number")
		}
		season, err = shared.NewSeasonYear(year)
		if err != nil {
			return 0, "", shared.AnalysisConfig{}, shared.WrapError("rest", "parse", shared.ErrValueOutOfRange, "invalid season", err)
		}
	}

	seasonType := shared.SeasonTypeRegular
	if raw := query.Get("season_type"); raw != "" {
		st, err := shared.NewSeasonType(raw)
		if err != nil {
			return 0, "", shared.AnalysisConfig{}, shared.WrapError("rest", "parse", shared.ErrInvalidInput, "invalid season type", err)
		}
		seasonType = st
	}
	if seasonType == shared.SeasonTypePostseason && !h.features.Postseason {
		return 0, "", shared.AnalysisConfig{}, shared.NewDomainError("rest", "parse", shared.ErrInvalidInput,
			"postseason queries are disabled")
	}

	cfg := shared.DefaultAnalysisConfig()
	switch query.Get("profile") {
	case "", "nfl_official":
	case "analytics_clean":
		cfg = shared.AnalyticsCleanConfig()
	default:
		return 0, "", shared.AnalysisConfig{}, shared.NewDomainError("rest", "parse", shared.ErrInvalidInput,
			"profile must be nfl_official or analytics_clean")
	}

	return season, seasonType, cfg, nil
}
