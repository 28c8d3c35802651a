package mapscript

import (
	"mapassist/internal/kvgrammar"
)

// Field and section names as the game reads them.
const (
	FieldBaseWeight    = "BaseWeight"
	FieldMaxPlayers    = "MaxPlayers"
	FieldMinPlayers    = "MinPlayers"
	FieldResIntensity  = "ResIntensity"
	FieldTeamThreshold = "TeamThreshold"

	SectionWeaponsetWeights    = "WeaponsetWeights"
	SectionGamemodeWeights     = "GamemodeWeights"
	SectionTeamGamemodeWeights = "TeamGamemodeWeights"
)

// Grammar is the map script shape: five integer fields and three
// single-level sections of integer weights.
var Grammar = kvgrammar.Grammar{
	Name: "map script",
	Fields: []kvgrammar.FieldSpec{
		{Name: FieldBaseWeight, Kind: kvgrammar.Integer},
		{Name: FieldMaxPlayers, Kind: kvgrammar.Integer},
		{Name: FieldMinPlayers, Kind: kvgrammar.Integer},
		{Name: FieldResIntensity, Kind: kvgrammar.Integer},
		{Name: FieldTeamThreshold, Kind: kvgrammar.Integer},
	},
	Sections: []kvgrammar.SectionSpec{
		{Name: SectionWeaponsetWeights, ChildKind: kvgrammar.Integer},
		{Name: SectionGamemodeWeights, ChildKind: kvgrammar.Integer},
		{Name: SectionTeamGamemodeWeights, ChildKind: kvgrammar.Integer},
	},
}

func init() {
	if err := Grammar.Validate(); err != nil {
		panic(err)
	}
}

// Params are the author-supplied rotation parameters.
type Params struct {
	BaseWeight    int
	MaxPlayers    int
	MinPlayers    int
	ResIntensity  int
	TeamThreshold int
}

// DefaultParams mirrors the values used when an author supplies none.
func DefaultParams() Params {
	return Params{
		BaseWeight:    500,
		MaxPlayers:    16,
		MinPlayers:    0,
		ResIntensity:  7,
		TeamThreshold: 12,
	}
}
