// Package mapscript generates and validates the per-map rotation script read
// by the game's map selector.
//
// The script holds five integer fields (BaseWeight, MaxPlayers, MinPlayers,
// ResIntensity, TeamThreshold) and three weight sections. Validation follows
// the game's own line parser: comments only count at column zero, an opening
// brace line is skipped, a closing brace anywhere ends the section after the
// line is read, and a blank line inside a section is rejected.
package mapscript
