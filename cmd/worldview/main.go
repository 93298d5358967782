// Command worldview browses a generated overworld in the terminal.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/KesselZ/HeroHour-sub000/internal/config"
	"github.com/KesselZ/HeroHour-sub000/internal/game"
	"github.com/KesselZ/HeroHour-sub000/internal/terrain"
	"github.com/KesselZ/HeroHour-sub000/internal/world"
)

const frameInterval = 50 * time.Millisecond

type glyph struct {
	ch    rune
	style tcell.Style
}

var tileGlyphs = map[terrain.TileType]glyph{
	terrain.TileGrass:    {'.', tcell.StyleDefault.Foreground(tcell.ColorGreen)},
	terrain.TileWater:    {'~', tcell.StyleDefault.Foreground(tcell.ColorBlue)},
	terrain.TileMountain: {'^', tcell.StyleDefault.Foreground(tcell.ColorGray)},
}

var entityGlyphs = map[world.EntityType]glyph{
	world.EntityCity:             {'C', tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)},
	world.EntityEnemyGroup:       {'E', tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)},
	world.EntityPickup:           {'$', tcell.StyleDefault.Foreground(tcell.ColorGold)},
	world.EntityTree:             {'T', tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)},
	world.EntityCapturedBuilding: {'B', tcell.StyleDefault.Foreground(tcell.ColorTan)},
	world.EntityAIHero:           {'H', tcell.StyleDefault.Foreground(tcell.ColorOrange).Bold(true)},
}

var playerGlyph = glyph{'@', tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)}

// viewer owns the screen and a camera over the world grid. camX/camZ is the
// grid vertex shown in the top-left corner; each character covers scale
// vertices.
type viewer struct {
	screen  tcell.Screen
	sim     *game.Sim
	camX    int
	camZ    int
	scale   int
	running bool
	quit    bool
}

func newViewer(screen tcell.Screen, s *game.Sim) *viewer {
	v := &viewer{screen: screen, sim: s, scale: 2}
	v.centre()
	return v
}

// centre puts the player in the middle of the screen.
func (v *viewer) centre() {
	w, h := v.screen.Size()
	gx, gz := v.sim.World.Grid.WorldToGrid(v.sim.World.PlayerX, v.sim.World.PlayerZ)
	v.camX = int(gx) - w/2*v.scale
	v.camZ = int(gz) - (h-1)/2*v.scale
}

// toScreen maps a world position to a screen cell.
func (v *viewer) toScreen(x, z float64) (int, int) {
	gx, gz := v.sim.World.Grid.WorldToGrid(x, z)
	sc := float64(v.scale)
	return int(math.Floor((gx - float64(v.camX)) / sc)), int(math.Floor((gz - float64(v.camZ)) / sc))
}

func (v *viewer) draw() {
	v.screen.Clear()
	w, h := v.screen.Size()
	grid := v.sim.World.Grid
	for sy := 0; sy < h-1; sy++ {
		for sx := 0; sx < w; sx++ {
			g := tileGlyphs[grid.At(v.camX+sx*v.scale, v.camZ+sy*v.scale)]
			v.screen.SetContent(sx, sy, g.ch, nil, g.style)
		}
	}
	for _, e := range v.sim.World.Visible() {
		g, ok := entityGlyphs[e.Type]
		if !ok {
			continue
		}
		v.put(e.X, e.Z, g, w, h)
	}
	v.put(v.sim.World.PlayerX, v.sim.World.PlayerZ, playerGlyph, w, h)
	v.drawStatus(w, h)
	v.screen.Show()
}

func (v *viewer) put(x, z float64, g glyph, w, h int) {
	sx, sy := v.toScreen(x, z)
	if sx < 0 || sy < 0 || sx >= w || sy >= h-1 {
		return
	}
	v.screen.SetContent(sx, sy, g.ch, nil, g.style)
}

func (v *viewer) drawStatus(w, h int) {
	c := v.sim.World.Clock
	state := "paused"
	if v.running {
		state = "running"
	}
	if enc := v.sim.Encounter(); enc != nil {
		state = "battle:" + enc.Kind
	}
	line := fmt.Sprintf(" T=%d day %d %s %d | x%d | %s | hjkl scroll  +/- zoom  c centre  space run  q quit",
		v.sim.Tick(), c.Day+1, c.Season(), c.Year(), v.scale, state)
	style := tcell.StyleDefault.Reverse(true)
	for x := 0; x < w; x++ {
		ch := ' '
		if x < len(line) {
			ch = rune(line[x])
		}
		v.screen.SetContent(x, h-1, ch, nil, style)
	}
}

// handleKey applies one key press; r is only meaningful for KeyRune.
func (v *viewer) handleKey(key tcell.Key, r rune) {
	step := 4 * v.scale
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		v.quit = true
	case tcell.KeyLeft:
		v.camX -= step
	case tcell.KeyRight:
		v.camX += step
	case tcell.KeyUp:
		v.camZ -= step
	case tcell.KeyDown:
		v.camZ += step
	case tcell.KeyRune:
		switch r {
		case 'q':
			v.quit = true
		case 'h':
			v.camX -= step
		case 'l':
			v.camX += step
		case 'k':
			v.camZ -= step
		case 'j':
			v.camZ += step
		case '+', '=':
			if v.scale > 1 {
				v.scale--
			}
		case '-':
			if v.scale < 8 {
				v.scale++
			}
		case 'c':
			v.centre()
		case ' ':
			v.running = !v.running
		}
	}
}

func (v *viewer) run() {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	v.draw()
	for !v.quit {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				v.handleKey(ev.Key(), ev.Rune())
			case *tcell.EventResize:
				v.screen.Sync()
			}
		case <-ticker.C:
			if v.running {
				v.sim.Step()
			}
		}
		v.draw()
	}
}

func main() {
	cfgPath := flag.String("config", "", "YAML config overlay")
	seed := flag.Uint("seed", 0, "world seed (0 keeps the configured one)")
	warmup := flag.Int("ticks", 0, "ticks to simulate before showing the map")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if *seed != 0 {
		cfg.Seed = uint32(*seed)
	}
	s, err := game.NewSim(cfg)
	if err != nil {
		log.Fatal(err)
	}
	for i := 0; i < *warmup; i++ {
		s.Step()
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	if err := screen.Init(); err != nil {
		log.Fatal(err)
	}
	defer screen.Fini()

	newViewer(screen, s).run()
}
