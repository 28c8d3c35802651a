package release

import "path/filepath"

// Layout resolves document locations inside a release or install tree.
type Layout struct {
	Root    string
	MapName string
}

// MapScriptDir holds map scripts.
func (l Layout) MapScriptDir() string { return filepath.Join(l.Root, "scripts", "maps") }

// MusicScriptDir holds music scripts.
func (l Layout) MusicScriptDir() string { return filepath.Join(l.Root, "scripts", "music") }

// MapsDir holds map binaries and reslists.
func (l Layout) MapsDir() string { return filepath.Join(l.Root, "maps") }

// SoundDir is the tree music tracks are resolved against.
func (l Layout) SoundDir() string { return filepath.Join(l.Root, "sound") }

// MapScriptPath is scripts/maps/<map>.txt.
func (l Layout) MapScriptPath() string {
	return filepath.Join(l.MapScriptDir(), l.MapName+".txt")
}

// MusicScriptPath is scripts/music/level_music_<map>.txt.
func (l Layout) MusicScriptPath() string {
	return filepath.Join(l.MusicScriptDir(), "level_music_"+l.MapName+".txt")
}

// ReslistPath is maps/<map>.res.
func (l Layout) ReslistPath() string {
	return filepath.Join(l.MapsDir(), l.MapName+".res")
}

// DocumentPath returns the location of the dialect's document.
func (l Layout) DocumentPath(d Dialect) string {
	switch d {
	case MapScript:
		return l.MapScriptPath()
	case MusicScript:
		return l.MusicScriptPath()
	case Reslist:
		return l.ReslistPath()
	default:
		return ""
	}
}
