package preflight

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"mapassist/internal/mapscript"
	"mapassist/internal/pathkey"
)

const (
	// ReleaseDirName is the required base name of a release root.
	ReleaseDirName = "gesource"
	// InstallMarker is the file only a real install root carries.
	InstallMarker = "goldeneye.fgd"
	// InstallCheckName names the install check in results.
	InstallCheckName = "GE:S install"

	maxPlayerCount  = 16
	maxResIntensity = 8
)

// ErrNoMap is returned by InferMapName when the maps directory has no .bsp.
var ErrNoMap = errors.New("no .bsp files in maps directory")

// InferMapName returns the map name derived from the first .bsp file, in
// sorted order, inside the release maps directory.
func InferMapName(releaseRoot string) (string, error) {
	entries, err := os.ReadDir(filepath.Join(releaseRoot, "maps"))
	if err != nil {
		return "", fmt.Errorf("read maps directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() && pathkey.HasExt(entry.Name(), "bsp") {
			names = append(names, entry.Name())
		}
	}
	if len(names) == 0 {
		return "", ErrNoMap
	}
	slices.Sort(names)
	return strings.TrimSuffix(names[0], filepath.Ext(names[0])), nil
}

// CheckRelease validates the layout of a release root for mapName.
func CheckRelease(root, mapName string) []Result {
	const name = "Release directory"

	info, err := os.Stat(root)
	switch {
	case err != nil && errors.Is(err, fs.ErrNotExist):
		return []Result{{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", root)}}
	case err != nil:
		return []Result{{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", root, err)}}
	case !info.IsDir():
		return []Result{{Name: name, Detail: fmt.Sprintf("%s (error: is a file, not a directory)", root)}}
	}
	if !strings.EqualFold(filepath.Base(filepath.Clean(root)), ReleaseDirName) {
		return []Result{{Name: name, Detail: fmt.Sprintf("%s (error: directory must be named %q)", root, ReleaseDirName)}}
	}

	results := []Result{{Name: name, Passed: true, Detail: root}}

	mapsDir := filepath.Join(root, "maps")
	if info, err := os.Stat(mapsDir); err != nil || !info.IsDir() {
		return append(results, Result{Name: "Maps directory", Detail: fmt.Sprintf("%s (error: missing)", mapsDir)})
	}

	results = append(results, checkMapBinary(mapsDir, mapName))

	musicDir := filepath.Join(root, "sound", "music")
	if info, err := os.Stat(musicDir); err != nil || !info.IsDir() {
		results = append(results, Result{
			Name:   "Release music",
			Warn:   true,
			Detail: fmt.Sprintf("%s is missing; a fallback playlist will be used", musicDir),
		})
	} else {
		results = append(results, Result{Name: "Release music", Passed: true, Detail: musicDir})
	}
	return results
}

func checkMapBinary(mapsDir, mapName string) Result {
	const name = "Map binary"
	if strings.TrimSpace(mapName) == "" {
		return Result{Name: name, Detail: "no readable .bsp files in maps directory"}
	}
	bsp := filepath.Join(mapsDir, mapName+".bsp")
	file, err := os.Open(bsp)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", bsp, err)}
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil || !info.Mode().IsRegular() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not a regular file)", bsp)}
	}
	return Result{Name: name, Passed: true, Detail: bsp}
}

// CheckInstall validates an install root. A missing install is only a
// warning unless required, but a directory that exists without the install
// marker always fails because its contents would mislead the checks.
func CheckInstall(root string, required bool) Result {
	const name = InstallCheckName

	missing := func(detail string) Result {
		if required {
			return Result{Name: name, Detail: detail + " (required for fullcheck)"}
		}
		return Result{Name: name, Warn: true, Detail: detail + "; existence checks against the install are skipped"}
	}

	if strings.TrimSpace(root) == "" {
		return missing("no install directory supplied or detected")
	}
	info, err := os.Stat(root)
	if err != nil {
		return missing(fmt.Sprintf("%s is not a directory", root))
	}
	if !info.IsDir() {
		return missing(fmt.Sprintf("%s is a file, not a directory", root))
	}
	marker := filepath.Join(root, InstallMarker)
	if info, err := os.Stat(marker); err != nil || !info.Mode().IsRegular() {
		return Result{Name: name, Detail: fmt.Sprintf("%s is not the root of a GE:S install (no %s)", root, InstallMarker)}
	}
	return Result{Name: name, Passed: true, Detail: root}
}

// CheckParams reports map parameters that would keep the map out of rotation
// or strain clients. Every finding is a warning.
func CheckParams(p mapscript.Params) []Result {
	var results []Result
	switch {
	case p.MinPlayers > p.MaxPlayers:
		results = append(results, Result{
			Name:   "Player range",
			Warn:   true,
			Detail: fmt.Sprintf("minplayers %d is greater than maxplayers %d; the map will never be picked", p.MinPlayers, p.MaxPlayers),
		})
	case p.MaxPlayers < 0 || p.MinPlayers > maxPlayerCount:
		results = append(results, Result{
			Name:   "Player range",
			Warn:   true,
			Detail: fmt.Sprintf("player range %d-%d is outside 0-%d; the map will never be picked", p.MinPlayers, p.MaxPlayers, maxPlayerCount),
		})
	}
	switch {
	case p.ResIntensity <= 0:
		results = append(results, Result{
			Name:   "Resource intensity",
			Warn:   true,
			Detail: fmt.Sprintf("resintensity %d is impossibly low and will crash clients", p.ResIntensity),
		})
	case p.ResIntensity > maxResIntensity:
		results = append(results, Result{
			Name:   "Resource intensity",
			Warn:   true,
			Detail: fmt.Sprintf("resintensity %d is above %d; cut content instead", p.ResIntensity, maxResIntensity),
		})
	}
	return results
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := checkAccess(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}
