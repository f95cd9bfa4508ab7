// Package team contains the NFL team registry and team-level entities.
package team

import (
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
)

// TotalTeams is the number of franchises in the league.
const TotalTeams = 32

// Team represents an NFL franchise.
type Team struct {
	Abbr   shared.TeamAbbr
	Name   string
	Colors []string // Primary first, hex codes
}

// PrimaryColor returns the team's primary color, or a neutral gray when the
// registry entry has no colors.
func (t Team) PrimaryColor() string {
	if len(t.Colors) == 0 {
		return "#808080"
	}
	return t.Colors[0]
}

// teams is the league registry, ordered alphabetically by abbreviation.
var teams = []Team{
	{Abbr: "ARI", Name: "Arizona Cardinals", Colors: []string{"#97233F", "#000000", "#FFB612"}},
	{Abbr: "ATL", Name: "Atlanta Falcons", Colors: []string{"#A71930", "#000000", "#A5ACAF"}},
	{Abbr: "BAL", Name: "Baltimore Ravens", Colors: []string{"#241773", "#000000", "#9E7C0C"}},
	{Abbr: "BUF", Name: "Buffalo Bills", Colors: []string{"#00338D", "#C60C30"}},
	{Abbr: "CAR", Name: "Carolina Panthers", Colors: []string{"#0085CA", "#101820", "#BFC0BF"}},
	{Abbr: "CHI", Name: "Chicago Bears", Colors: []string{"#0B162A", "#C83803"}},
	{Abbr: "CIN", Name: "Cincinnati Bengals", Colors: []string{"#FB4F14", "#000000"}},
	{Abbr: "CLE", Name: "Cleveland Browns", Colors: []string{"#311D00", "#FF3C00"}},
	{Abbr: "DAL", Name: "Dallas Cowboys", Colors: []string{"#003594", "#869397", "#FFFFFF"}},
	{Abbr: "DEN", Name: "Denver Broncos", Colors: []string{"#FB4F14", "#002244"}},
	{Abbr: "DET", Name: "Detroit Lions", Colors: []string{"#0076B6", "#B0B7BC", "#000000"}},
	{Abbr: "GB", Name: "Green Bay Packers", Colors: []string{"#203731", "#FFB612"}},
	{Abbr: "HOU", Name: "Houston Texans", Colors: []string{"#03202F", "#A71930"}},
	{Abbr: "IND", Name: "Indianapolis Colts", Colors: []string{"#002C5F", "#A2AAAD"}},
	{Abbr: "JAX", Name: "Jacksonville Jaguars", Colors: []string{"#101820", "#D7A22A", "#9F792C"}},
	{Abbr: "KC", Name: "Kansas City Chiefs", Colors: []string{"#E31837", "#FFB81C"}},
	{Abbr: "LA", Name: "Los Angeles Rams", Colors: []string{"#003594", "#FFA300", "#FF8200"}},
	{Abbr: "LAC", Name: "Los Angeles Chargers", Colors: []string{"#0080C6", "#FFC20E", "#FFFFFF"}},
	{Abbr: "LV", Name: "Las Vegas Raiders", Colors: []string{"#000000", "#A5ACAF"}},
	{Abbr: "MIA", Name: "Miami Dolphins", Colors: []string{"#008E97", "#FC4C02", "#005778"}},
	{Abbr: "MIN", Name: "Minnesota Vikings", Colors: []string{"#4F2683", "#FFC62F"}},
	{Abbr: "NE", Name: "New England Patriots", Colors: []string{"#002244", "#C60C30", "#B0B7BC"}},
	{Abbr: "NO", Name: "New Orleans Saints", Colors: []string{"#101820", "#D3BC8D"}},
	{Abbr: "NYG", Name: "New York Giants", Colors: []string{"#0B2265", "#A71930", "#A5ACAF"}},
	{Abbr: "NYJ", Name: "New York Jets", Colors: []string{"#125740", "#000000", "#FFFFFF"}},
	{Abbr: "PHI", Name: "Philadelphia Eagles", Colors: []string{"#004C54", "#A5ACAF", "#ACC0C6"}},
	{Abbr: "PIT", Name: "Pittsburgh Steelers", Colors: []string{"#FFB612", "#101820"}},
	{Abbr: "SEA", Name: "Seattle Seahawks", Colors: []string{"#002244", "#4DFF00", "#A5ACAF"}},
	{Abbr: "SF", Name: "San Francisco 49ers", Colors: []string{"#AA0000", "#B3995D"}},
	{Abbr: "TB", Name: "Tampa Bay Buccaneers", Colors: []string{"#D50A0A", "#FF7900", "#0A0A08"}},
	{Abbr: "TEN", Name: "Tennessee Titans", Colors: []string{"#0C2340", "#4B92DB", "#C8102E"}},
	{Abbr: "WAS", Name: "Washington Commanders", Colors: []string{"#5A1414", "#FFB612"}},
}

var teamsByAbbr = func() map[shared.TeamAbbr]Team {
	m := make(map[shared.TeamAbbr]Team, len(teams))
	for _, t := range teams {
		m[t.Abbr] = t
	}
	return m
}()

// All returns every team in the league, ordered by abbreviation.
func All() []Team {
	out := make([]Team, len(teams))
	copy(out, teams)
	return out
}

// Abbreviations returns the abbreviations of all teams, in registry order.
func Abbreviations() []shared.TeamAbbr {
	out := make([]shared.TeamAbbr, len(teams))
	for i, t := range teams {
		out[i] = t.Abbr
	}
	return out
}

// Lookup finds a team by abbreviation.
func Lookup(abbr shared.TeamAbbr) (Team, error) {
	t, ok := teamsByAbbr[abbr]
	if !ok {
		return Team{}, shared.ErrTeamNotFound
	}
	return t, nil
}

// IsValid reports whether the abbreviation belongs to a current franchise.
func IsValid(abbr shared.TeamAbbr) bool {
	_, ok := teamsByAbbr[abbr]
	return ok
}

// Parse validates a raw string and resolves it against the registry.
func Parse(raw string) (Team, error) {
	abbr, err := shared.NewTeamAbbr(raw)
	if err != nil {
		return Team{}, err
	}
	return Lookup(abbr)
}
