package config

const (
	defaultConfigPath     = "~/.config/mapassist/config.toml"
	projectConfigName     = "mapassist.toml"
	defaultStateDir       = "~/.local/share/mapassist"
	defaultBaseWeight     = 500
	defaultMaxPlayers     = 16
	defaultMinPlayers     = 0
	defaultResIntensity   = 7
	defaultTeamThreshold  = 12
	defaultMusicExtension = "mp3"
	defaultIgnoreFile     = ".reslistignore"
	defaultHistoryKeep    = 200
	defaultDebounceMS     = 500
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// installCandidates are the places a GoldenEye: Source install is found when
// none is configured. Source mods must live under steamapps/sourcemods.
var installCandidates = []string{
	`C:\Program Files (x86)\Steam\steamapps\sourcemods\gesource`,
	`C:\Program Files\Steam\steamapps\sourcemods\gesource`,
	"~/.steam/steam/steamapps/sourcemods/gesource",
	"~/.local/share/Steam/steamapps/sourcemods/gesource",
}

// DefaultFallbackPlaylist lists stock tracks used when a release ships no music.
func DefaultFallbackPlaylist() []string {
	return []string{
		"music/ge_title.mp3",
		"music/ge_ambient_01.mp3",
		"music/ge_ambient_02.mp3",
	}
}

// DefaultDisallowedExtensions mirrors the reslist defaults: the map binary,
// the manifest itself, and executables.
func DefaultDisallowedExtensions() []string {
	return []string{"bsp", "res", "exe", "dll", "bat", "cmd", "com", "msi", "ps1", "sh"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Map: Map{
			BaseWeight:    defaultBaseWeight,
			MaxPlayers:    defaultMaxPlayers,
			MinPlayers:    defaultMinPlayers,
			ResIntensity:  defaultResIntensity,
			TeamThreshold: defaultTeamThreshold,
		},
		Music: Music{
			Extension:        defaultMusicExtension,
			FallbackPlaylist: DefaultFallbackPlaylist(),
		},
		Reslist: Reslist{
			DisallowedExtensions: DefaultDisallowedExtensions(),
			Ignore:               []string{"**/thumbs.db", "**/.ds_store", "**/desktop.ini"},
			IgnoreFile:           defaultIgnoreFile,
		},
		History: History{
			Enabled:  true,
			KeepRuns: defaultHistoryKeep,
		},
		Watch: Watch{
			DebounceMS: defaultDebounceMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
