package shared

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Matching(t *testing.T) {
	err := WrapError("stats", "Calculate", ErrCalculation, "division by zero plays", errors.New("boom"))

	assert.True(t, errors.Is(err, ErrCalculation))
	assert.True(t, IsCalculation(err))
	assert.False(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "stats.Calculate")
	assert.Contains(t, err.Error(), "boom")
}

func TestDomainError_SentinelKinds(t *testing.T) {
	assert.True(t, errors.Is(ErrTeamNotFound, ErrNotFound))
	assert.True(t, errors.Is(ErrPlayoffsNotMade, ErrNotFound))
	assert.True(t, errors.Is(ErrMetricOutOfRange, ErrValueOutOfRange))
	assert.True(t, IsValidation(ErrMetricOutOfRange))
	assert.True(t, IsExternalService(ErrNFLVerseTimeout))
	assert.True(t, IsRetryable(ErrNFLVerseUnavailable))
	assert.False(t, IsRetryable(ErrNFLVerseInvalidResponse))
}

func TestNewTeamAbbr(t *testing.T) {
	abbr, err := NewTeamAbbr("  kc ")
	assert.NoError(t, err)
	assert.Equal(t, TeamAbbr("KC"), abbr)

	_, err = NewTeamAbbr("Chiefs")
	assert.Error(t, err)

	_, err = NewTeamAbbr("")
	assert.Error(t, err)
}

func TestSeasonYear_GamesPerTeam(t *testing.T) {
	// 17-game schedule started in 2021
	assert.Equal(t, 16, SeasonYear(2020).GamesPerTeam())
	assert.Equal(t, 17, SeasonYear(2021).GamesPerTeam())
	assert.Equal(t, 17, SeasonYear(2023).GamesPerTeam())
}

func TestNewSeasonYear_Bounds(t *testing.T) {
	_, err := NewSeasonYear(1998)
	assert.Error(t, err)

	s, err := NewSeasonYear(2023)
	assert.NoError(t, err)
	assert.True(t, s.IsComplete())

	_, err = NewSeasonYear(2099)
	assert.Error(t, err)
}

func TestSeasonType_Includes(t *testing.T) {
	assert.True(t, SeasonTypeAll.Includes("REG"))
	assert.True(t, SeasonTypeAll.Includes("POST"))
	assert.True(t, SeasonTypeRegular.Includes("REG"))
	assert.False(t, SeasonTypeRegular.Includes("POST"))
	assert.True(t, SeasonTypePostseason.Includes("POST"))
	assert.False(t, SeasonTypePostseason.Includes("REG"))
}

func TestNewSeasonType(t *testing.T) {
	st, err := NewSeasonType("reg")
	assert.NoError(t, err)
	assert.Equal(t, SeasonTypeRegular, st)

	_, err = NewSeasonType("preseason")
	assert.Error(t, err)
}

func TestAnalysisConfig_Hash(t *testing.T) {
	a := DefaultAnalysisConfig()
	b := DefaultAnalysisConfig()
	assert.Equal(t, a.Hash(), b.Hash())
	assert.Len(t, a.Hash(), 16)

	// Any setting change produces a different hash
	c := DefaultAnalysisConfig()
	c.IncludeSpikesCompletion = false
	assert.NotEqual(t, a.Hash(), c.Hash())

	assert.NotEqual(t, DefaultAnalysisConfig().Hash(), AnalyticsCleanConfig().Hash())
}

func TestAnalysisConfig_ProfileName(t *testing.T) {
	assert.Equal(t, "nfl_official", DefaultAnalysisConfig().ProfileName())
	assert.Equal(t, "analytics_clean", AnalyticsCleanConfig().ProfileName())

	custom := DefaultAnalysisConfig()
	custom.IncludeQBKneelsRushing = false
	assert.Equal(t, "custom", custom.ProfileName())
	assert.False(t, custom.IsNFLOfficial())
}

func TestCacheKey_DistinguishesConfigurations(t *testing.T) {
	k1 := CacheKey(2023, SeasonTypeRegular, DefaultAnalysisConfig())
	k2 := CacheKey(2023, SeasonTypeRegular, AnalyticsCleanConfig())
	k3 := CacheKey(2023, SeasonTypePostseason, DefaultAnalysisConfig())
	k4 := CacheKey(2022, SeasonTypeRegular, DefaultAnalysisConfig())

	assert.NotEqual(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.NotEqual(t, k1, k4)
	assert.Contains(t, k1, "league:2023:REG:")
}
