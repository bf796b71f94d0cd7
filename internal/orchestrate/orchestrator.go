// Package orchestrate is the Game Orchestrator: it owns the loaded level,
// the player table, and the fixed-tic simulation loop that drives input
// application, thinker ticking, special-line dispatch, and rendering, per
// spec.md §4.8. Grounded directly on the teacher's Emulator struct/RunFrame
// shape in internal/emulator/emulator.go, generalized from cycle-accurate
// 10MHz component stepping to 35Hz tic stepping.
package orchestrate

import (
	"fmt"
	"math"
	"time"

	"doomgo/internal/collide"
	"doomgo/internal/engineerr"
	"doomgo/internal/enginelog"
	"doomgo/internal/mapdata"
	"doomgo/internal/netcmd"
	"doomgo/internal/render"
	"doomgo/internal/think"
	"doomgo/internal/wad"
)

// GameState is the coarse game-flow state machine spec.md §4.8 names:
// Level -> Intermission -> Finale -> Demoscreen, cycling back to Level.
type GameState int

const (
	StateLevel GameState = iota
	StateIntermission
	StateFinale
	StateDemoscreen
)

func (s GameState) String() string {
	switch s {
	case StateLevel:
		return "Level"
	case StateIntermission:
		return "Intermission"
	case StateFinale:
		return "Finale"
	case StateDemoscreen:
		return "Demoscreen"
	default:
		return "Unknown"
	}
}

// PlayerState tracks whether a player's body is in the world or awaiting a
// fresh spawn.
type PlayerState int

const (
	PlayerSpawned PlayerState = iota
	PlayerReborn
)

// Player is one slot in the orchestrator's player table: spec.md §3's
// Player record trimmed to the fields movement and rendering need (the
// weapon/ammo/HUD fields are out of scope per spec.md §1's "weapon firing
// logic" non-goal).
type Player struct {
	Active bool
	State  PlayerState
	Cmd    netcmd.Command
	Mobj   think.ThinkerID
}

// action is a deferred operation run once at the top of a tic, before
// thinkers are ticked, per spec.md §4.8 step 3.
type action struct {
	kind      actionKind
	playerIdx int
}

type actionKind int

const (
	actionLoadLevel actionKind = iota
	actionNewGame
)

// Tic is nominally 1/35 s, spec.md §2/§5.
const TicInterval = time.Second / 35

// Orchestrator drives the fixed-tic simulation loop: input application,
// thinker ticking (movement via collide.Resolver), special-line dispatch,
// game-state transitions, and rendering, in the order spec.md §5 fixes.
type Orchestrator struct {
	archive  *wad.Archive
	registry *think.Registry
	mover    think.Mover
	renderer *render.Renderer
	log      *enginelog.Logger

	states map[think.StateID]think.State

	level     *mapdata.Level
	levelName string

	players []*Player
	pending []action

	Running   bool
	Paused    bool
	GameState GameState
	ForceWipe bool

	// TicCount is the number of tics RunTic has completed, for diagnostics
	// and the E1M1 fixture tests.
	TicCount uint64

	// accumulator and lastStep drive the wall-clock-to-fixed-tic
	// conversion Advance performs, mirroring the teacher's
	// LastFrameTime/FrameTime bookkeeping generalized from a 60Hz frame
	// limiter to a tic accumulator that can run zero, one, or several
	// tics per call (spec.md §5).
	accumulator time.Duration
	lastStep    time.Time
}

// New creates an Orchestrator bound to archive and constructs its own
// thinker registry, collision mover and renderer from archive, states and
// log. The first RunTic starts a new game.
func New(archive *wad.Archive, states map[think.StateID]think.State, log *enginelog.Logger) *Orchestrator {
	o := &Orchestrator{
		archive:   archive,
		registry:  think.NewRegistry(states, log),
		mover:     collide.New(log),
		renderer:  render.NewRenderer(archive, log),
		log:       log,
		states:    states,
		GameState: StateLevel,
		players:   []*Player{{Active: true, State: PlayerReborn}},
	}
	o.pending = append(o.pending, action{kind: actionNewGame})
	return o
}

// Start sets Running, mirroring the teacher's Emulator.Start/Stop pair.
func (o *Orchestrator) Start() { o.Running = true; o.Paused = false; o.lastStep = time.Now() }

// Stop clears Running; RunTic and Advance become no-ops until Start again.
func (o *Orchestrator) Stop() { o.Running = false }

// Pause/Resume toggle tic execution without discarding simulation state.
func (o *Orchestrator) Pause()  { o.Paused = true }
func (o *Orchestrator) Resume() { o.Paused = false }

// LoadLevel loads name from the archive and spawns player 1 at its
// player-1-start Thing, replacing any previously loaded level and thinker
// list. Per spec.md's LumpMissing handling, a failed load leaves the
// orchestrator's previous level and state untouched.
func (o *Orchestrator) LoadLevel(name string) error {
	level, err := mapdata.LoadLevel(o.archive, name)
	if err != nil {
		if o.log != nil {
			o.log.Logf(enginelog.ComponentOrchestrator, enginelog.LevelError, "load level %q failed: %v", name, err)
		}
		return err
	}

	o.registry = think.NewRegistry(o.states, o.log)
	o.level = level
	o.levelName = name
	o.GameState = StateLevel

	spawn, ok := findPlayer1Start(level)
	if !ok {
		return &engineerr.NoSpawnError{Level: name}
	}

	mobj := &think.MapObject{
		Position: mapdata.Vec2{X: spawn.X, Y: spawn.Y},
		Angle:    spawn.Angle,
		Radius:   16,
		Height:   56,
		State:    0, // StateNull would remove the body at the end of the first tic
		Player:   &think.Player{ViewHeight: 41},
	}
	id := o.registry.Spawn(mobj)

	for _, p := range o.players {
		p.Mobj = id
		p.State = PlayerSpawned
	}

	return nil
}

func findPlayer1Start(level *mapdata.Level) (mapdata.Thing, bool) {
	for _, t := range level.Things {
		if t.Type == mapdata.ThingPlayer1Start {
			return t, true
		}
	}
	return mapdata.Thing{}, false
}

// Advance converts wall-clock elapsed time into zero or more whole-tic
// RunTic calls, the fixed-tic accumulator spec.md §5 requires: display
// rendering always observes the latest post-tic state, never an
// interpolated one. A backward clock jump (elapsed < 0) runs zero tics
// rather than going negative.
func (o *Orchestrator) Advance(elapsed time.Duration, cmds []netcmd.Command) error {
	if elapsed < 0 {
		return nil
	}
	o.accumulator += elapsed
	for o.accumulator >= TicInterval {
		if err := o.RunTic(cmds); err != nil {
			return err
		}
		o.accumulator -= TicInterval
	}
	return nil
}

// RunTic executes exactly one simulation tic in spec.md §4.8's order:
// drain input, schedule reborn players, run pending actions, tick
// thinkers, dispatch special lines, count the tic.
func (o *Orchestrator) RunTic(cmds []netcmd.Command) error {
	if !o.Running || o.Paused {
		return nil
	}

	// 1. Drain input into each active player's netcmd slot.
	for i, p := range o.players {
		if i < len(cmds) {
			p.Cmd = cmds[i]
		}
	}

	// 2. Schedule load-level for any Reborn player.
	for i, p := range o.players {
		if p.Active && p.State == PlayerReborn {
			o.pending = append(o.pending, action{kind: actionLoadLevel, playerIdx: i})
		}
	}

	// 3. Run pending actions before ticking.
	if err := o.runPendingActions(); err != nil {
		return err
	}

	if o.level != nil {
		o.applyPlayerCommands()

		// 4. Tick every thinker.
		if err := o.registry.Tick(o.level, o.mover, 1.0/35.0); err != nil {
			return err
		}

		// Special-line dispatch: every crossed seg whose linedef carries a
		// non-zero type fires once (spec.md §4.4 step 8). The trigger
		// internals (door/lift/lighting scripts) are an acknowledged hook
		// this repo does not implement, per spec.md §1's non-goals.
		for _, m := range o.registry.All() {
			for _, lineIdx := range m.DrainSpecialLines() {
				o.crossSpecialLine(lineIdx)
			}
		}

		o.registry.EndTic()
	}

	o.TicCount++
	return nil
}

// applyPlayerCommands turns each active player's last netcmd into the
// mobj's angle and world-space velocity, the input-application half of
// spec.md §5's "input command application -> thinker updates" ordering.
func (o *Orchestrator) applyPlayerCommands() {
	const maxMove = 30.0
	for _, p := range o.players {
		if !p.Active {
			continue
		}
		m := o.registry.Get(p.Mobj)
		if m == nil {
			continue
		}
		m.Angle += float64(p.Cmd.Turn) / 127.0 * (2.0 / 35.0)

		forward := float64(p.Cmd.Forward) / 127.0 * maxMove
		side := float64(p.Cmd.Side) / 127.0 * maxMove
		cos, sin := math.Cos(m.Angle), math.Sin(m.Angle)
		m.Velocity = mapdata.Vec2{
			X: forward*cos - side*sin,
			Y: forward*sin + side*cos,
		}
	}
}

func (o *Orchestrator) runPendingActions() error {
	pending := o.pending
	o.pending = nil
	for _, a := range pending {
		switch a.kind {
		case actionNewGame:
			// Nothing besides the initial load-level scheduling below;
			// save-game/new-game bookkeeping is out of scope per spec.md §1.
		case actionLoadLevel:
			name := o.levelName
			if name == "" {
				name = "E1M1"
			}
			if err := o.LoadLevel(name); err != nil {
				return err
			}
		}
	}
	return nil
}

// crossSpecialLine is the acknowledged special-line hook: its contract
// (fired once per crossed special line) is implemented; its internals
// (door/lift/light triggers) are not, per spec.md §1.
func (o *Orchestrator) crossSpecialLine(linedefIdx int) {
	if o.log != nil {
		o.log.Logf(enginelog.ComponentOrchestrator, enginelog.LevelDebug, "cross_special_line linedef=%d", linedefIdx)
	}
}

// ExitLevel advances the game-flow state machine one step, per spec.md
// §4.8's Level -> Intermission -> Finale -> Demoscreen -> Level cycle.
func (o *Orchestrator) ExitLevel() {
	switch o.GameState {
	case StateLevel:
		o.GameState = StateIntermission
	case StateIntermission:
		o.GameState = StateFinale
	case StateFinale:
		o.GameState = StateDemoscreen
	case StateDemoscreen:
		o.GameState = StateLevel
	}
	o.ForceWipe = true
}

// RenderView prepares the view transform for playerIdx (position, angle,
// view-z = subsector.floor + 41, per spec.md §4.8 step 5) and writes the
// resulting RGB24 framebuffer into out, which must be exactly
// render.ScreenWidth*render.ScreenHeight*3 bytes.
func (o *Orchestrator) RenderView(playerIdx int, out []byte) error {
	if o.level == nil {
		return fmt.Errorf("orchestrate: no level loaded")
	}
	if playerIdx < 0 || playerIdx >= len(o.players) {
		return fmt.Errorf("orchestrate: player index %d out of range", playerIdx)
	}
	p := o.players[playerIdx]
	m := o.registry.Get(p.Mobj)
	if m == nil {
		return fmt.Errorf("orchestrate: player %d has no body", playerIdx)
	}

	viewHeight := 41.0
	if m.Player != nil {
		viewHeight = m.Player.ViewHeight
	}

	view := render.View{
		Pos:   m.Position,
		Z:     m.FloorZ + viewHeight,
		Angle: m.Angle,
	}

	frame := o.renderer.RenderView(o.level, view)
	if len(out) != len(frame) {
		return fmt.Errorf("orchestrate: output buffer size mismatch: expected %d, got %d", len(frame), len(out))
	}
	copy(out, frame)
	o.ForceWipe = false
	return nil
}

// Level exposes the currently loaded level, nil before the first
// successful LoadLevel.
func (o *Orchestrator) Level() *mapdata.Level { return o.level }
