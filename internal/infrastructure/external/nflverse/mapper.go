package nflverse

import (
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/play"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAPPER - CSV document to domain play table
// ══════════════════════════════════════════════════════════════════════════════

// Mapper converts parsed nflverse CSV documents into domain play tables.
type Mapper struct{}

// NewMapper creates a Mapper.
func NewMapper() *Mapper {
	return &Mapper{}
}

// TableFromDocument maps every row into a typed Play. The resulting column
// set reflects what the source actually provided, so downstream filters can
// fail open on partial files instead of computing from phantom zeroes.
func (m *Mapper) TableFromDocument(doc *csvDocument) play.Table {
	cols := play.NewColumnSet()
	for std := range play.StandardColumns() {
		if doc.hasColumn(std) {
			cols[std] = struct{}{}
		}
	}

	plays := make([]play.Play, 0, len(doc.rows))
	for _, row := range doc.rows {
		plays = append(plays, m.playFromRow(doc, row))
	}

	return play.Table{Plays: plays, Columns: cols}
}

func (m *Mapper) playFromRow(doc *csvDocument, row []string) play.Play {
	return play.Play{
		GameID:     doc.str(row, play.ColGameID),
		Drive:      doc.intPtr(row, play.ColDrive),
		PosTeam:    doc.str(row, play.ColPosTeam),
		DefTeam:    doc.str(row, play.ColDefTeam),
		HomeTeam:   doc.str(row, play.ColHomeTeam),
		AwayTeam:   doc.str(row, play.ColAwayTeam),
		SeasonType: doc.str(row, play.ColSeasonType),
		Week:       doc.intVal(row, play.ColWeek),

		Down:        doc.intPtr(row, play.ColDown),
		YdsToGo:     doc.intVal(row, play.ColYdsToGo),
		YardsGained: doc.float(row, play.ColYardsGained),
		Yardline100: doc.float(row, play.ColYardline100),
		PlayType:    doc.str(row, play.ColPlayType),

		RushAttempt:     doc.flag(row, play.ColRushAttempt),
		PassAttempt:     doc.flag(row, play.ColPassAttempt),
		TwoPointAttempt: doc.flag(row, play.ColTwoPointAttempt),
		Sack:            doc.flag(row, play.ColSack),
		CompletePass:    doc.flag(row, play.ColCompletePass),
		Interception:    doc.flag(row, play.ColInterception),
		FumbleLost:      doc.flag(row, play.ColFumbleLost),

		Touchdown:        doc.flag(row, play.ColTouchdown),
		TDTeam:           doc.str(row, play.ColTDTeam),
		FirstDown:        doc.flag(row, play.ColFirstDown),
		FirstDownRush:    doc.flag(row, play.ColFirstDownRush),
		FirstDownPass:    doc.flag(row, play.ColFirstDownPass),
		FirstDownPenalty: doc.flag(row, play.ColFirstDownPenalty),

		ExtraPointResult:   doc.str(row, play.ColExtraPointResult),
		TwoPointConvResult: doc.str(row, play.ColTwoPointConvResult),
		FieldGoalResult:    doc.str(row, play.ColFieldGoalResult),

		PenaltyTeam:  doc.str(row, play.ColPenaltyTeam),
		PenaltyYards: doc.floatVal(row, play.ColPenaltyYards),

		PosTeamScorePost: doc.float(row, play.ColPosTeamScorePost),
		DefTeamScorePost: doc.float(row, play.ColDefTeamScorePost),
	}
}
