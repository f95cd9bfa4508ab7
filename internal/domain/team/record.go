package team

import "fmt"

// Record is a team's win-loss record for a season. Ties only occur in the
// regular season; playoff games always produce a winner.
type Record struct {
	RegularSeasonWins   int
	RegularSeasonLosses int
	RegularSeasonTies   int
	PlayoffWins         int
	PlayoffLosses       int
}

// TotalGames returns the number of games the record covers.
func (r Record) TotalGames() int {
	return r.RegularSeasonWins + r.RegularSeasonLosses + r.RegularSeasonTies +
		r.PlayoffWins + r.PlayoffLosses
}

// RegularSeasonGames returns the number of regular season games played.
func (r Record) RegularSeasonGames() int {
	return r.RegularSeasonWins + r.RegularSeasonLosses + r.RegularSeasonTies
}

// WinPct returns the regular season winning percentage, counting ties as
// half a win. Returns 0 when no games were played.
func (r Record) WinPct() float64 {
	games := r.RegularSeasonGames()
	if games == 0 {
		return 0
	}
	return (float64(r.RegularSeasonWins) + 0.5*float64(r.RegularSeasonTies)) / float64(games)
}

// MadePlayoffs reports whether the team played any playoff games.
func (r Record) MadePlayoffs() bool {
	return r.PlayoffWins+r.PlayoffLosses > 0
}

// String formats the record in standard W-L or W-L-T notation.
func (r Record) String() string {
	if r.RegularSeasonTies > 0 {
		return fmt.Sprintf("%d-%d-%d", r.RegularSeasonWins, r.RegularSeasonLosses, r.RegularSeasonTies)
	}
	return fmt.Sprintf("%d-%d", r.RegularSeasonWins, r.RegularSeasonLosses)
}
