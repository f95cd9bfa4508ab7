package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
	"github.com/gridstats/nfl-efficiency-hub/pkg/timeutil"
)

func eastern(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, timeutil.EasternTZ)
}

func TestCurrentSeasonInfo(t *testing.T) {
	november := CurrentSeasonInfo(eastern(2023, time.November, 15))
	assert.Equal(t, 2023, november.CurrentSeason)
	assert.Equal(t, SeasonInProgress, november.Status)
	assert.False(t, november.DataComplete)

	january := CurrentSeasonInfo(eastern(2024, time.January, 10))
	assert.Equal(t, 2023, january.CurrentSeason)
	assert.Equal(t, SeasonPlayoffs, january.Status)
	assert.True(t, january.DataComplete)

	june := CurrentSeasonInfo(eastern(2024, time.June, 1))
	assert.Equal(t, 2023, june.CurrentSeason)
	assert.Equal(t, SeasonCompleted, june.Status)
	assert.True(t, june.DataComplete)
}

func TestCurrentSeasonInfo_ExpectedGamesTracksEra(t *testing.T) {
	pre := CurrentSeasonInfo(eastern(2020, time.November, 15))
	assert.Equal(t, 2020, pre.CurrentSeason)
	assert.Equal(t, 16, pre.ExpectedGames)

	offseason := CurrentSeasonInfo(eastern(2021, time.March, 1))
	assert.Equal(t, 2020, offseason.CurrentSeason)
	assert.Equal(t, 16, offseason.ExpectedGames)

	post := CurrentSeasonInfo(eastern(2021, time.November, 15))
	assert.Equal(t, 2021, post.CurrentSeason)
	assert.Equal(t, 17, post.ExpectedGames)
}

func TestCurrentSeasonInfo_AvailableSeasons(t *testing.T) {
	info := CurrentSeasonInfo(eastern(2023, time.October, 1))

	assert.Equal(t, 2023, info.AvailableSeasons[0])
	assert.Equal(t, 1999, info.AvailableSeasons[len(info.AvailableSeasons)-1])
	assert.Len(t, info.AvailableSeasons, 2023-1999+1)
	assert.Equal(t, 17, info.ExpectedGames)
}

func TestContextMessage(t *testing.T) {
	season := shared.SeasonYear(2023)

	inProgress := ContextMessage(season, 9, eastern(2023, time.November, 15))
	assert.Equal(t, "2023 season in progress • 9/17 games played", inProgress.Message)
	assert.Equal(t, "info", inProgress.Kind)

	noCount := ContextMessage(season, 0, eastern(2023, time.November, 15))
	assert.Equal(t, "2023 season in progress", noCount.Message)

	playoffs := ContextMessage(season, 17, eastern(2024, time.January, 10))
	assert.Equal(t, "2023 season: Playoffs in progress", playoffs.Message)

	historical := ContextMessage(shared.SeasonYear(2015), 16, eastern(2023, time.November, 15))
	assert.Equal(t, "2015 season: Historical data", historical.Message)
	assert.Equal(t, "success", historical.Kind)

	future := ContextMessage(shared.SeasonYear(2024), 0, eastern(2023, time.November, 15))
	assert.Equal(t, "2024 season hasn't started yet", future.Message)
	assert.Equal(t, "warning", future.Kind)
}

func TestClassifyFreshness(t *testing.T) {
	now := time.Date(2024, time.November, 15, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, FreshnessCurrent, ClassifyFreshness(now.Add(-2*time.Hour), now))
	assert.Equal(t, FreshnessRecent, ClassifyFreshness(now.Add(-3*24*time.Hour), now))
	assert.Equal(t, FreshnessAging, ClassifyFreshness(now.Add(-10*24*time.Hour), now))
	assert.Equal(t, FreshnessStale, ClassifyFreshness(now.Add(-30*24*time.Hour), now))
	assert.Equal(t, FreshnessStale, ClassifyFreshness(time.Time{}, now))
}
