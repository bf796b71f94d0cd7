// Command doomgo is the engine's entry point: it parses the CLI surface
// spec.md §6 describes, opens the archive, wires the Archive Reader/Map
// Database/BSP/Collision/Render/Orchestrator stack together, and runs the
// fixed-tic simulation loop behind a present.Surface. Flag wiring and the
// validate-then-exit pattern are grounded on the teacher's
// cmd/emulator/main.go.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"doomgo/internal/enginelog"
	"doomgo/internal/netcmd"
	"doomgo/internal/orchestrate"
	"doomgo/internal/present"
	"doomgo/internal/think"
	"doomgo/internal/wad"
)

const (
	exitOK             = 0
	exitArchiveInvalid = 1
	exitBadArgs        = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	iwadPath := flag.String("iwad", "./doom1.wad", "path to the IWAD archive")
	pwadPath := flag.String("pwad", "", "path to an optional PWAD archive, loaded instead of the IWAD")
	width := flag.Int("width", 320, "window width in pixels (content is always rendered at 320x200 and scaled)")
	height := flag.Int("height", 200, "window height in pixels")
	fullscreen := flag.Bool("fullscreen", false, "run in fullscreen (unsupported by the bundled Fyne presenter; logged and ignored)")
	skill := flag.Int("skill", 2, "difficulty 0-4")
	episode := flag.Int("episode", 1, "episode 1-4")
	mapNum := flag.Int("map", 1, "map number within the episode")
	deathmatch := flag.Int("deathmatch", 0, "deathmatch mode: 0 off, 1, or 2")
	noMonsters := flag.Bool("no-monsters", false, "disable monster spawns (monster AI is out of scope; accepted for CLI compatibility)")
	respawn := flag.Bool("respawn", false, "respawn monsters (out of scope; accepted for CLI compatibility)")
	fast := flag.Bool("fast", false, "fast monsters (out of scope; accepted for CLI compatibility)")
	dev := flag.Bool("dev", false, "enable verbose engine logging")
	flag.Parse()

	if *skill < 0 || *skill > 4 {
		fmt.Fprintf(os.Stderr, "doomgo: invalid --skill %d: must be 0-4\n", *skill)
		return exitBadArgs
	}
	if *episode < 1 || *episode > 4 {
		fmt.Fprintf(os.Stderr, "doomgo: invalid --episode %d: must be 1-4\n", *episode)
		return exitBadArgs
	}
	if *mapNum < 1 {
		fmt.Fprintf(os.Stderr, "doomgo: invalid --map %d: must be 1 or greater\n", *mapNum)
		return exitBadArgs
	}
	if *deathmatch < 0 || *deathmatch > 2 {
		fmt.Fprintf(os.Stderr, "doomgo: invalid --deathmatch %d: must be 0, 1, or 2\n", *deathmatch)
		return exitBadArgs
	}
	if *width < 320 || *height < 200 {
		fmt.Fprintf(os.Stderr, "doomgo: invalid --width/--height: minimum is 320x200\n")
		return exitBadArgs
	}
	_ = noMonsters
	_ = respawn
	_ = fast

	log := enginelog.New(10000)
	if *dev {
		for _, c := range []enginelog.Component{
			enginelog.ComponentArchive, enginelog.ComponentMapDatabase, enginelog.ComponentBSP,
			enginelog.ComponentThink, enginelog.ComponentCollide, enginelog.ComponentRender,
			enginelog.ComponentOrchestrator, enginelog.ComponentPresent, enginelog.ComponentInput,
		} {
			log.SetComponentEnabled(c, true)
		}
		log.SetMinLevel(enginelog.LevelDebug)
	}

	archivePath := *iwadPath
	if *pwadPath != "" {
		archivePath = *pwadPath
		log.Logf(enginelog.ComponentArchive, enginelog.LevelInfo, "loading PWAD %q in place of the IWAD (archive merging is not implemented)", *pwadPath)
	}

	archive, err := wad.Open(archivePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "doomgo: failed to open archive %q: %v\n", archivePath, err)
		return exitArchiveInvalid
	}
	defer archive.Close()

	if *fullscreen {
		log.Log(enginelog.ComponentPresent, enginelog.LevelWarn, "--fullscreen requested but unsupported by the bundled presenter", nil)
	}

	orch := orchestrate.New(archive, map[think.StateID]think.State{}, log)
	levelName := episodeMapName(*episode, *mapNum)
	if err := orch.LoadLevel(levelName); err != nil {
		fmt.Fprintf(os.Stderr, "doomgo: failed to load level %q: %v\n", levelName, err)
		return exitArchiveInvalid
	}
	orch.Start()

	scale := *width / 320
	if scale < 1 {
		scale = 1
	}
	surface, err := present.NewSDLSurface(scale)
	if err != nil {
		fmt.Fprintf(os.Stderr, "doomgo: failed to open presenter window: %v\n", err)
		return exitArchiveInvalid
	}
	defer surface.Close()

	source := netcmd.NewSDLSource()
	frame := make([]byte, 320*200*3)

	last := time.Now()
	for orch.Running {
		now := time.Now()
		elapsed := now.Sub(last)
		last = now

		for _, ev := range surface.PollEvents() {
			if ev.Quit {
				orch.Stop()
			}
		}

		cmd := source.Sample()
		if err := orch.Advance(elapsed, []netcmd.Command{cmd}); err != nil {
			fmt.Fprintf(os.Stderr, "doomgo: simulation error: %v\n", err)
			return exitArchiveInvalid
		}

		if err := orch.RenderView(0, frame); err == nil {
			if err := surface.Present(frame, 320, 200); err != nil {
				log.Logf(enginelog.ComponentPresent, enginelog.LevelWarn, "present failed: %v", err)
			}
		}

		time.Sleep(time.Second / 120)
	}

	return exitOK
}

// episodeMapName builds the classic ExMy level marker name from episode
// and map numbers, per spec.md §6's archive layout.
func episodeMapName(episode, mapNum int) string {
	return fmt.Sprintf("E%dM%d", episode, mapNum)
}
