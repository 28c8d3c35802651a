package release

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mapassist/internal/dirindex"
	"mapassist/internal/mapscript"
	"mapassist/internal/scripterr"
)

const mapName = "ge_test"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func crlf(lines ...string) string {
	return strings.Join(lines, "\r\n") + "\r\n"
}

func newRelease(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "gesource")
	writeFile(t, filepath.Join(root, "maps", mapName+".bsp"), "bsp")
	writeFile(t, filepath.Join(root, "sound", "music", "track.mp3"), "mp3")
	writeFile(t, filepath.Join(root, "materials", "walls", "brick.vmt"), "vmt")
	return root
}

func newOrchestrator(t *testing.T, root string, mutate ...func(*Options)) *Orchestrator {
	t.Helper()
	opts := Options{
		ReleaseRoot:      root,
		MapName:          mapName,
		Params:           mapscript.DefaultParams(),
		FallbackPlaylist: []string{"music/ge_title.mp3"},
		LockDir:          filepath.Join(t.TempDir(), "locks"),
	}
	for _, fn := range mutate {
		fn(&opts)
	}
	return New(opts, nil, nil)
}

func TestLayoutPaths(t *testing.T) {
	l := Layout{Root: "/r/gesource", MapName: "ge_x"}
	tests := map[Dialect]string{
		MapScript:   filepath.Join("/r/gesource", "scripts", "maps", "ge_x.txt"),
		MusicScript: filepath.Join("/r/gesource", "scripts", "music", "level_music_ge_x.txt"),
		Reslist:     filepath.Join("/r/gesource", "maps", "ge_x.res"),
	}
	for d, want := range tests {
		if got := l.DocumentPath(d); got != want {
			t.Fatalf("%s path = %q, want %q", d, got, want)
		}
	}
	if got := l.SoundDir(); got != filepath.Join("/r/gesource", "sound") {
		t.Fatalf("sound dir = %q", got)
	}
}

func TestRunCreatesThenValidates(t *testing.T) {
	root := newRelease(t)

	report, err := newOrchestrator(t, root).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.RunID == "" {
		t.Fatal("expected run id")
	}
	if report.Failures() != 0 {
		t.Fatalf("unexpected failures %#x: %+v", report.Failures(), report.Results)
	}
	if len(report.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(report.Results))
	}
	for i, d := range Dialects {
		res := report.Results[i]
		if res.Dialect != d || res.Action != ActionCreated {
			t.Fatalf("result %d = %s/%s, want %s/created", i, res.Dialect, res.Action, d)
		}
	}

	data, err := os.ReadFile(filepath.Join(root, "maps", mapName+".res"))
	if err != nil {
		t.Fatalf("read reslist: %v", err)
	}
	manifest := string(data)
	for _, want := range []string{
		`"materials/walls/brick.vmt"`,
		`"sound/music/track.mp3"`,
		`"scripts/maps/ge_test.txt"`,
		`"scripts/music/level_music_ge_test.txt"`,
	} {
		if !strings.Contains(manifest, want) {
			t.Fatalf("manifest missing %s:\n%s", want, manifest)
		}
	}
	if strings.Contains(manifest, ".bsp") {
		t.Fatalf("manifest must not declare the map binary:\n%s", manifest)
	}

	music, err := os.ReadFile(filepath.Join(root, "scripts", "music", "level_music_ge_test.txt"))
	if err != nil {
		t.Fatalf("read music script: %v", err)
	}
	if !strings.Contains(string(music), `"music/track.mp3"`) {
		t.Fatalf("music script missing release track:\n%s", music)
	}

	second, err := newOrchestrator(t, root).Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.Failures() != 0 {
		t.Fatalf("second run failed %#x: %+v", second.Failures(), second.Results)
	}
	for _, res := range second.Results {
		if res.Action != ActionValidated {
			t.Fatalf("%s action = %s, want validated", res.Dialect, res.Action)
		}
	}
	if got := second.ByDialect(MusicScript)[0].Status(); got != StatusWarn {
		t.Fatalf("music without install should warn, got %s", got)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	root := newRelease(t)
	if _, err := newOrchestrator(t, root).Run(context.Background()); err != nil {
		t.Fatalf("seed run: %v", err)
	}
	writeFile(t, filepath.Join(root, "scripts", "maps", mapName+".txt"), crlf("BaseWeight\tlots"))

	report, err := newOrchestrator(t, root).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := report.Failures(); got != FailMapScript {
		t.Fatalf("failures = %#x, want %#x: %+v", got, FailMapScript, report.Results)
	}
	if !errors.Is(report.Results[0].Err, scripterr.ErrFormat) {
		t.Fatalf("expected format error, got %v", report.Results[0].Err)
	}
	if report.Results[1].Action != ActionValidated || report.Results[2].Action != ActionValidated {
		t.Fatal("siblings must still run after a failure")
	}
}

func TestRunDetectsUndeclaredFiles(t *testing.T) {
	root := newRelease(t)
	if _, err := newOrchestrator(t, root).Run(context.Background()); err != nil {
		t.Fatalf("seed run: %v", err)
	}
	writeFile(t, filepath.Join(root, "materials", "walls", "new.vmt"), "vmt")

	report, err := newOrchestrator(t, root).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := report.Failures(); got != FailReslist {
		t.Fatalf("failures = %#x, want %#x", got, FailReslist)
	}
	res := report.ByDialect(Reslist)[0]
	if !errors.Is(res.Err, scripterr.ErrReconcile) {
		t.Fatalf("expected reconcile error, got %v", res.Err)
	}
	if !strings.Contains(res.Err.Error(), "materials/walls/new.vmt") {
		t.Fatalf("error should name the undeclared file: %v", res.Err)
	}
}

func TestRunFailsAllDialectsIndependently(t *testing.T) {
	root := newRelease(t)
	if _, err := newOrchestrator(t, root).Run(context.Background()); err != nil {
		t.Fatalf("seed run: %v", err)
	}
	writeFile(t, filepath.Join(root, "scripts", "maps", mapName+".txt"), crlf("BaseWeight\t1"))
	writeFile(t, filepath.Join(root, "scripts", "music", "level_music_ge_test.txt"), crlf(`"music"`, "{", `	"file"	"music/track.wav"`, "}"))
	writeFile(t, filepath.Join(root, "maps", mapName+".res"), crlf(`"resources"`, "{", `	"gone.vmt"	"file"`, "}"))

	report, err := newOrchestrator(t, root).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := FailMapScript | FailMusicScript | FailReslist
	if got := report.Failures(); got != want {
		t.Fatalf("failures = %#x, want %#x", got, want)
	}
	report.Preflight = true
	if got := report.Failures(); got != want|FailPreflight {
		t.Fatalf("failures with preflight = %#x", got)
	}
}

func TestRunRefusesConcurrentLock(t *testing.T) {
	root := newRelease(t)
	lockDir := filepath.Join(t.TempDir(), "locks")
	held, err := acquireLock(lockDir, root)
	if err != nil {
		t.Fatalf("acquireLock: %v", err)
	}
	defer held.release()

	orch := newOrchestrator(t, root, func(o *Options) { o.LockDir = lockDir })
	if _, err := orch.Run(context.Background()); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "scripts")); !os.IsNotExist(err) {
		t.Fatal("a locked run must not write documents")
	}
}

func TestBuildOrValidateHonoursCancellation(t *testing.T) {
	root := newRelease(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := newOrchestrator(t, root).BuildOrValidate(ctx, MapScript)
	if !errors.Is(res.Err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", res.Err)
	}
	if _, err := os.Stat(filepath.Join(root, "scripts", "maps", mapName+".txt")); !os.IsNotExist(err) {
		t.Fatal("cancelled task must not write")
	}
}

func newInstall(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "gesource")
	writeFile(t, filepath.Join(root, "goldeneye.fgd"), "fgd")
	writeFile(t, filepath.Join(root, "sound", "music", "ge_title.mp3"), "mp3")
	writeFile(t, filepath.Join(root, "materials", "a.vmt"), "vmt")
	writeFile(t, filepath.Join(root, "materials", "b.vmt"), "vmt")

	if err := mapscript.GenerateFile(filepath.Join(root, "scripts", "maps", "ge_a.txt"), mapscript.DefaultParams()); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(root, "scripts", "music", "level_music_ge_a.txt"),
		crlf(`"music"`, "{", `	"file"	"music/ge_title.mp3"`, "}"))
	writeFile(t, filepath.Join(root, "maps", "ge_a.res"),
		crlf(`"resources"`, "{", `	"materials/a.vmt"	"file"`, "}"))
	return root
}

func TestFullCheckPassesOnHealthyInstall(t *testing.T) {
	install := newInstall(t)
	index := dirindex.New(nil)
	orch := New(Options{}, index, nil)

	report := orch.FullCheck(context.Background(), install)
	if report.Mode != ModeFullCheck {
		t.Fatalf("mode = %s", report.Mode)
	}
	if report.Failures() != 0 {
		t.Fatalf("unexpected failures %#x: %+v", report.Failures(), report.Results)
	}
	if len(report.Results) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(report.Results))
	}
	for i, d := range Dialects {
		if report.Results[i].Dialect != d {
			t.Fatalf("results not sorted by dialect: %+v", report.Results)
		}
	}
}

func TestFullCheckReportsEveryFailingDocument(t *testing.T) {
	install := newInstall(t)
	writeFile(t, filepath.Join(install, "scripts", "maps", "ge_b.txt"), crlf("BaseWeight\t1"))
	writeFile(t, filepath.Join(install, "scripts", "maps", "sub", "ge_c.txt"), crlf("junk\t{"))
	writeFile(t, filepath.Join(install, "scripts", "music", "level_music_ge_b.txt"),
		crlf(`"music"`, "{", `	"file"	"music/absent.mp3"`, "}"))
	writeFile(t, filepath.Join(install, "scripts", "maps", "notes.md"), "ignored")

	report := New(Options{}, nil, nil).FullCheck(context.Background(), install)
	if got := report.Failures(); got != FailMapScript|FailMusicScript {
		t.Fatalf("failures = %#x: %+v", got, report.Results)
	}
	maps := report.ByDialect(MapScript)
	if len(maps) != 3 {
		t.Fatalf("expected 3 map scripts, got %d", len(maps))
	}
	failed := 0
	for _, res := range maps {
		if res.Err != nil {
			failed++
		}
	}
	if failed != 2 {
		t.Fatalf("expected 2 failing map scripts, got %d", failed)
	}
	if report.Count(StatusError) != 3 {
		t.Fatalf("expected 3 errors overall, got %d", report.Count(StatusError))
	}
}

func TestFullCheckSharesIndexAcrossReslists(t *testing.T) {
	install := newInstall(t)
	writeFile(t, filepath.Join(install, "maps", "ge_b.res"),
		crlf(`"resources"`, "{", `	"materials/b.vmt"	"file"`, "}"))
	writeFile(t, filepath.Join(install, "maps", "ge_c.res"),
		crlf(`"resources"`, "{", `	"materials/a.vmt"	"file"`, `	"materials/b.vmt"	"file"`, "}"))

	index := dirindex.New(nil)
	report := New(Options{}, index, nil).FullCheck(context.Background(), install)
	if report.Failures() != 0 {
		t.Fatalf("unexpected failures: %+v", report.Results)
	}
	if got := len(report.ByDialect(Reslist)); got != 3 {
		t.Fatalf("expected 3 reslists, got %d", got)
	}
	// One walk for the install tree, one for the sound directory.
	if got := index.Walks(); got != 2 {
		t.Fatalf("expected 2 walks, got %d", got)
	}
}

func TestFullCheckFlagsDisallowedReslistEntries(t *testing.T) {
	install := newInstall(t)
	writeFile(t, filepath.Join(install, "maps", "ge_a.bsp"), "bsp")
	writeFile(t, filepath.Join(install, "maps", "ge_bad.res"),
		crlf(`"resources"`, "{", `	"maps/ge_a.bsp"	"file"`, "}"))

	report := New(Options{}, nil, nil).FullCheck(context.Background(), install)
	if got := report.Failures(); got != FailReslist {
		t.Fatalf("failures = %#x: %+v", got, report.Results)
	}
}

func TestFullCheckMissingDirectories(t *testing.T) {
	install := t.TempDir()
	report := New(Options{}, nil, nil).FullCheck(context.Background(), install)
	want := FailMapScript | FailMusicScript | FailReslist
	if got := report.Failures(); got != want {
		t.Fatalf("failures = %#x, want %#x", got, want)
	}
	for _, res := range report.Results {
		if !errors.Is(res.Err, scripterr.ErrIO) {
			t.Fatalf("expected io error for %s, got %v", res.Dialect, res.Err)
		}
	}
}

func TestParseDialect(t *testing.T) {
	for _, d := range Dialects {
		got, err := ParseDialect(strings.ToUpper(d.String()))
		if err != nil || got != d {
			t.Fatalf("ParseDialect(%q) = %v, %v", d.String(), got, err)
		}
	}
	if _, err := ParseDialect("nope"); err == nil {
		t.Fatal("expected error for unknown dialect")
	}
}
