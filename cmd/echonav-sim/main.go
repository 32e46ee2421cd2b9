// Command echonav-sim is an interactive sandbox for tuning cue audio:
// a top-down arena with wandering enemies, a hazard field, a
// collectible, and a drop-pod beacon, steered from the keyboard while
// the cue engine renders the scene to the system audio device.
//
// Controls: arrows/hjkl move, < > rotate, b beacon, c consume,
// m mute, e spawn enemy, q quit.
package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/blindsight/echonav/audio"
	"github.com/blindsight/echonav/beacon"
	"github.com/blindsight/echonav/constant"
	"github.com/blindsight/echonav/core"
	"github.com/blindsight/echonav/engine"
	"github.com/blindsight/echonav/navigation"
	"github.com/blindsight/echonav/vmath"
)

const (
	arenaW    = 60.0 // Meters
	arenaH    = 40.0
	tickRate  = 30 * time.Millisecond
	moveSpeed = 0.5 // Meters per tick
	turnSpeed = 0.2 // Radians per tick
)

var (
	styleDefault = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	stylePlayer  = styleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleEnemy   = styleDefault.Foreground(tcell.ColorRed)
	styleBoss    = styleDefault.Foreground(tcell.ColorFuchsia).Bold(true)
	styleHazard  = styleDefault.Foreground(tcell.ColorYellow)
	stylePickup  = styleDefault.Foreground(tcell.ColorLime)
	styleBeacon  = styleDefault.Foreground(tcell.ColorOrange).Bold(true)
	styleDim     = styleDefault.Foreground(tcell.ColorGray)
)

// mob is one wandering arena enemy
type mob struct {
	id  core.EntityID
	cat core.EntityCategory
	pos vmath.Vec3F
	vel vmath.Vec3F
}

// flatMesh is an obstacle-free mesh: paths are straight lines with a
// midpoint corner, enough to exercise the guidance pipeline
type flatMesh struct{}

func (flatMesh) SamplePosition(pos vmath.Vec3F, radius float64) (vmath.Vec3F, bool) {
	return pos, true
}

func (flatMesh) CalculatePath(from, to vmath.Vec3F) ([]vmath.Vec3F, bool) {
	mid := vmath.V3FScale(vmath.V3FAdd(from, to), 0.5)
	return []vmath.Vec3F{mid, to}, true
}

var _ navigation.NavMesh = flatMesh{}

type sim struct {
	pos     vmath.Vec3F
	heading float64 // Radians, 0 = +X

	mobs    []*mob
	nextID  core.EntityID
	speech  []string
	engine  *engine.Engine
	beaconP vmath.Vec3F
}

func (s *sim) forward() vmath.Vec3F {
	return vmath.Vec3F{X: math.Cos(s.heading), Z: math.Sin(s.heading)}
}

func (s *sim) pose() core.Pose {
	return core.Pose{Position: s.pos, Forward: s.forward()}
}

func (s *sim) say(text string, interrupt bool) {
	mark := "  "
	if interrupt {
		mark = "! "
	}
	s.speech = append(s.speech, mark+text)
	if len(s.speech) > 8 {
		s.speech = s.speech[len(s.speech)-8:]
	}
}

func (s *sim) spawnMob(cat core.EntityCategory) {
	s.nextID++
	m := &mob{
		id:  s.nextID,
		cat: cat,
		pos: vmath.Vec3F{X: rand.Float64() * arenaW, Z: rand.Float64() * arenaH},
		vel: vmath.Vec3F{X: rand.Float64() - 0.5, Z: rand.Float64() - 0.5},
	}
	s.mobs = append(s.mobs, m)
	s.engine.OnEnemySpawned(m.id, m.cat, m.pos)
}

func (s *sim) stepMobs() {
	for _, m := range s.mobs {
		m.pos = vmath.V3FAdd(m.pos, vmath.V3FScale(m.vel, 0.12))
		if m.pos.X < 0 || m.pos.X > arenaW {
			m.vel.X = -m.vel.X
		}
		if m.pos.Z < 0 || m.pos.Z > arenaH {
			m.vel.Z = -m.vel.Z
		}
		s.engine.OnEnemyPositionUpdate(m.id, m.pos)
	}
}

func main() {
	log := zerolog.Nop()
	if f, err := os.Create("echonav-sim.log"); err == nil {
		defer f.Close()
		log = zerolog.New(f).With().Timestamp().Logger()
	}

	s := &sim{
		pos:     vmath.Vec3F{X: arenaW / 2, Z: arenaH / 2},
		beaconP: vmath.Vec3F{X: 5, Z: 5},
	}

	eng, err := engine.New(engine.Options{
		Audio:         audio.LoadConfig(),
		NavMesh:       flatMesh{},
		Speech:        announceFunc(s.say),
		Listener:      engine.PoseFunc(s.pose),
		Logger:        log,
		AudioExcluded: []core.EntityCategory{core.CategoryEnemySwarm},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	s.engine = eng
	eng.Start()
	defer eng.Shutdown()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer screen.Fini()
	screen.SetStyle(styleDefault)
	screen.HideCursor()

	// Initial scene
	for i := 0; i < 3; i++ {
		s.spawnMob(core.CategoryEnemyNormal)
	}
	s.spawnMob(core.CategoryEnemyElite)
	eng.OnHazardSpawned(vmath.Vec3F{X: 15, Z: 10}, 0)
	eng.OnCollectibleVisible(1<<40, "ammo cache", vmath.Vec3F{X: 45, Z: 30})

	// Dedicated input goroutine
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(tickRate)
	defer ticker.Stop()

	muted := false
	for {
	drain:
		for {
			select {
			case ev := <-events:
				switch ev := ev.(type) {
				case *tcell.EventResize:
					screen.Sync()
				case *tcell.EventKey:
					switch {
					case ev.Key() == tcell.KeyCtrlC || ev.Key() == tcell.KeyEscape,
						ev.Rune() == 'q':
						return
					case ev.Key() == tcell.KeyUp || ev.Rune() == 'k':
						s.pos.Z -= moveSpeed
					case ev.Key() == tcell.KeyDown || ev.Rune() == 'j':
						s.pos.Z += moveSpeed
					case ev.Key() == tcell.KeyLeft || ev.Rune() == 'h':
						s.pos.X -= moveSpeed
					case ev.Key() == tcell.KeyRight || ev.Rune() == 'l':
						s.pos.X += moveSpeed
					case ev.Rune() == '<' || ev.Rune() == ',':
						s.heading -= turnSpeed
					case ev.Rune() == '>' || ev.Rune() == '.':
						s.heading += turnSpeed
					case ev.Rune() == 'b':
						eng.OnBeaconTargetActivated(core.BeaconDropPod, beacon.StaticTarget(s.beaconP))
					case ev.Rune() == 'c':
						eng.OnBeaconTargetConsumed(core.BeaconDropPod)
					case ev.Rune() == 'm':
						muted = !muted
						eng.Audio().SetMuted(muted)
					case ev.Rune() == 'e':
						s.spawnMob(core.CategoryEnemyNormal)
					case ev.Rune() == 'E':
						s.spawnMob(core.CategoryEnemyBoss)
					}
				}
			default:
				break drain
			}
		}

		<-ticker.C

		s.pos.X = vmath.Clamp(s.pos.X, 0, arenaW)
		s.pos.Z = vmath.Clamp(s.pos.Z, 0, arenaH)
		s.stepMobs()
		eng.Tick(tickRate.Seconds())

		draw(screen, s, muted)
	}
}

// announceFunc adapts the sim speech log to the engine's sink
type announceFunc func(text string, interrupt bool)

func (f announceFunc) Announce(text string, interrupt bool) { f(text, interrupt) }

func draw(screen tcell.Screen, s *sim, muted bool) {
	screen.Clear()
	w, h := screen.Size()
	mapH := h - 11
	if mapH < 5 || w < 20 {
		screen.Show()
		return
	}

	cell := func(p vmath.Vec3F) (int, int) {
		x := int(p.X / arenaW * float64(w-1))
		y := int(p.Z / arenaH * float64(mapH-1))
		return x, y
	}

	for _, m := range s.mobs {
		x, y := cell(m.pos)
		r, st := 'e', styleEnemy
		switch m.cat {
		case core.CategoryEnemyElite:
			r, st = 'E', styleEnemy
		case core.CategoryEnemyBoss:
			r, st = 'B', styleBoss
		}
		screen.SetContent(x, y, r, nil, st)
	}

	hx, hy := cell(vmath.Vec3F{X: 15, Z: 10})
	screen.SetContent(hx, hy, '*', nil, styleHazard)
	cx, cy := cell(vmath.Vec3F{X: 45, Z: 30})
	screen.SetContent(cx, cy, '+', nil, stylePickup)

	if s.engine.Director().Active(core.BeaconDropPod) {
		bx, by := cell(s.beaconP)
		screen.SetContent(bx, by, 'P', nil, styleBeacon)
	}

	px, py := cell(s.pos)
	screen.SetContent(px, py, '@', nil, stylePlayer)
	fx, fy := cell(vmath.V3FAdd(s.pos, vmath.V3FScale(s.forward(), 2)))
	if fx != px || fy != py {
		screen.SetContent(fx, fy, '·', nil, stylePlayer)
	}

	played, dropped := s.engine.Audio().Stats()
	status := fmt.Sprintf("ch:%d/%d played:%d dropped:%d beacon:%s device:%v muted:%v",
		s.engine.Audio().ActiveChannels(), constant.MaxChannels, played, dropped,
		s.engine.Director().StateOf(core.BeaconDropPod), s.engine.Audio().Running(), muted)
	drawText(screen, 0, mapH, styleDim, status)
	drawText(screen, 0, mapH+1, styleDim, "arrows/hjkl move  <> rotate  b beacon  c consume  m mute  e/E spawn  q quit")

	for i, line := range s.speech {
		drawText(screen, 0, mapH+2+i, styleDefault, line)
	}

	screen.Show()
}

func drawText(screen tcell.Screen, x, y int, st tcell.Style, text string) {
	for i, r := range text {
		screen.SetContent(x+i, y, r, nil, st)
	}
}
