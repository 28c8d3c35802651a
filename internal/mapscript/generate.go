package mapscript

import (
	"io"
	"strconv"

	"mapassist/internal/kvgrammar"
)

const header = "// Map Script File Generated by GE:S Map Release Assistant for 5.0 - Report Any Issues to Entropy-Soldier"

// Generate writes a complete map script for p.
func Generate(w io.Writer, p Params) error {
	field := func(name string, value int) string {
		return name + "\t" + strconv.Itoa(value)
	}
	section := func(name, example string) []string {
		return []string{name, "{", "\t" + example + "\t\t0", "}"}
	}

	lines := []string{
		header,
		"",
		"// The game will try not to pick this map when the playercount is outside the range specified here.",
		"// The BaseWeight of the map controls how likely the map is to be chosen in random selection.",
		"// The map will not be chosen if the server playercount is below MinPlayers or above MaxPlayers",
		"// The baseweight scales with how far the playercount is from the average of MinPlayers and MaxPlayers.",
		"// because of this, maps with large ranges are not very likely to be picked at the edges of them.",
		"// ResIntensity is a measure of how much data in unique assets a map has.",
		"// It will avoid switching between maps with a combined intensity score of 10 or greater to avoid client crashes.",
		"",
		field(FieldBaseWeight, p.BaseWeight),
		field(FieldMaxPlayers, p.MaxPlayers),
		field(FieldMinPlayers, p.MinPlayers),
		field(FieldResIntensity, p.ResIntensity),
		field(FieldTeamThreshold, p.TeamThreshold),
		"",
		"// Overrides the default weaponset weights if any sets are specified here.  Can be used as a blacklist.",
		"// Will only override weaponsets that are already in rotation, to prevent overriding gamemode specific lists.",
	}
	lines = append(lines, section(SectionWeaponsetWeights, "slappers")...)
	lines = append(lines,
		"",
		"// Weights for each gamemode if the map is switched to below the team threshold.",
		"// Overrides whatever weight is specified in default.txt, if there is one.",
		"// If a gamemode is not listed here or in default.txt it won't be used.",
	)
	lines = append(lines, section(SectionGamemodeWeights, "YOLT")...)
	lines = append(lines,
		"",
		"// Gamemode weights used when the map is switched to while playercount is above the team threshold.",
	)
	lines = append(lines, section(SectionTeamGamemodeWeights, "CaptureTheFlag")...)
	lines = append(lines, "")
	return kvgrammar.WriteLines(w, lines)
}
