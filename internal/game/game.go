package game

import (
	"fmt"
	"image/color"
	"math"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/KesselZ/HeroHour-sub000/internal/config"
	"github.com/KesselZ/HeroHour-sub000/internal/persist"
	"github.com/KesselZ/HeroHour-sub000/internal/sink"
	"github.com/KesselZ/HeroHour-sub000/internal/terrain"
)

const (
	viewWidth     = 1280
	viewHeight    = 800
	logPanelWidth = 360
	logLineHeight = 14
	cellPx        = 2  // terrain image pixels per world unit
	battlePx      = 14 // screen pixels per battle unit
	tickDt        = 1.0 / 60
	quickSlot     = "quick"
	logKeep       = 2000 // simlog entries kept once the log grows past logKeep*4
	debugTicks    = 600  // window of the F3 debug report
)

var tileColours = map[terrain.TileType]color.RGBA{
	terrain.TileGrass:    {R: 70, G: 120, B: 55, A: 255},
	terrain.TileWater:    {R: 40, G: 80, B: 150, A: 255},
	terrain.TileMountain: {R: 105, G: 95, B: 85, A: 255},
}

// Game is the ebiten front end: WASD walks the hero, E interacts, F5/F9 save
// and load the quick slot.
type Game struct {
	sim   *Sim
	view  *SpriteSink
	store *persist.Store
	face  text.Face

	terrainImg *ebiten.Image
	terrainFor *terrain.Grid // grid the cached image was drawn from

	camZoom  float64
	showHUD  bool
	prevKeys map[ebiten.Key]bool
	status   string

	// Simulation speed control.
	simSpeed  float64 // multiplier: 0=paused, 0.5, 1, 2, 4
	tickAccum float64
}

// New generates a world from cfg and wraps it in a playable window. store
// may be nil, which disables saving.
func New(cfg *config.Config, audio sink.Audio, store *persist.Store) (*Game, error) {
	view := NewSpriteSink()
	s, err := NewSim(cfg, WithRenderer(view), WithAudio(audio))
	if err != nil {
		return nil, err
	}
	return &Game{
		sim:      s,
		view:     view,
		store:    store,
		face:     text.NewGoXFace(basicfont.Face7x13),
		camZoom:  4,
		showHUD:  true,
		prevKeys: make(map[ebiten.Key]bool),
		simSpeed: 1,
	}, nil
}

// Sim exposes the running simulation.
func (g *Game) Sim() *Sim { return g.sim }

func (g *Game) Update() error {
	g.handleInput()
	if g.simSpeed <= 0 {
		return nil
	}
	g.tickAccum += g.simSpeed
	for g.tickAccum >= 1.0 {
		g.tickAccum -= 1.0
		wasFighting := g.sim.Encounter() != nil
		g.sim.Update(tickDt)
		if wasFighting && g.sim.Encounter() == nil {
			g.view.clearEffects()
		}
	}
	if g.sim.Log.Len() > logKeep*4 {
		g.sim.Log.Truncate(logKeep)
		g.sim.Events.Rewind(g.sim.Log)
	}
	return nil
}

// pressed reports a key going down this frame.
func (g *Game) pressed(k ebiten.Key, current map[ebiten.Key]bool) bool {
	current[k] = ebiten.IsKeyPressed(k)
	return current[k] && !g.prevKeys[k]
}

func (g *Game) handleInput() {
	current := map[ebiten.Key]bool{}

	if g.simSpeed > 0 {
		var dx, dz float64
		if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
			dz--
		}
		if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
			dz++
		}
		if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
			dx--
		}
		if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
			dx++
		}
		if dx != 0 || dz != 0 {
			g.sim.MovePlayer(dx, dz, tickDt*g.simSpeed)
		}
	}
	if g.pressed(ebiten.KeyE, current) {
		if e := g.sim.PlayerInteract(); e != nil {
			g.status = "interacted with " + e.Label()
		}
	}

	const zoomMin, zoomMax = 1.0, 12.0
	_, wy := ebiten.Wheel()
	if wy != 0 {
		g.camZoom *= math.Pow(1.12, wy)
	}
	if g.pressed(ebiten.KeyEqual, current) {
		g.camZoom *= 1.25
	}
	if g.pressed(ebiten.KeyMinus, current) {
		g.camZoom /= 1.25
	}
	g.camZoom = math.Max(zoomMin, math.Min(zoomMax, g.camZoom))

	if g.pressed(ebiten.KeyH, current) {
		g.showHUD = !g.showHUD
	}

	// Sim speed controls: P=pause/resume, ,=slower, .=faster.
	speeds := []float64{0, 0.5, 1, 2, 4}
	if g.pressed(ebiten.KeyP, current) {
		if g.simSpeed > 0 {
			g.simSpeed = 0
		} else {
			g.simSpeed = 1
		}
	}
	if g.pressed(ebiten.KeyComma, current) {
		for i, s := range speeds {
			if s >= g.simSpeed && i > 0 {
				g.simSpeed = speeds[i-1]
				break
			}
		}
	}
	if g.pressed(ebiten.KeyPeriod, current) {
		for _, s := range speeds {
			if s > g.simSpeed {
				g.simSpeed = s
				break
			}
		}
	}

	if g.pressed(ebiten.KeyF5, current) {
		g.quickSave()
	}
	if g.pressed(ebiten.KeyF9, current) {
		g.quickLoad()
	}
	if g.pressed(ebiten.KeyF3, current) {
		if err := clipboard.WriteAll(g.sim.DebugReport(debugTicks)); err != nil {
			g.status = "clipboard: " + err.Error()
		} else {
			g.status = "debug report copied"
		}
	}
	g.prevKeys = current
}

func (g *Game) quickSave() {
	if g.store == nil {
		g.status = "saving disabled"
		return
	}
	if err := g.sim.Save(g.store, quickSlot); err != nil {
		g.status = err.Error()
		return
	}
	g.status = "saved"
}

func (g *Game) quickLoad() {
	if g.store == nil {
		g.status = "saving disabled"
		return
	}
	ok, err := g.sim.Load(g.store, quickSlot)
	switch {
	case err != nil:
		g.status = err.Error()
	case !ok:
		g.status = "no quick save"
	default:
		g.view.clearEffects()
		g.status = "loaded"
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 14, B: 12, A: 255})
	g.view.beginFrame()
	g.sim.Draw()
	if g.sim.Encounter() != nil {
		g.drawBattle(screen)
	} else {
		g.drawOverworld(screen)
	}
	g.view.age()
	g.drawEventPanel(screen)
	if g.showHUD {
		g.drawHUD(screen)
	}
}

// buildTerrain rasterises the terrain mesh once per grid. Every triangle is
// filled with its classification, so the picture matches TileAt exactly.
func (g *Game) buildTerrain() {
	grid := g.sim.World.Grid
	if g.terrainImg != nil && g.terrainFor == grid {
		return
	}
	px := (grid.Size - 1) * cellPx
	img := ebiten.NewImage(px, px)
	paths := map[terrain.TileType]*vector.Path{
		terrain.TileGrass:    {},
		terrain.TileWater:    {},
		terrain.TileMountain: {},
	}
	for z0 := 0; z0 < grid.Size-1; z0++ {
		for _, tri := range grid.MeshRow(z0) {
			p := paths[tri.Type]
			p.MoveTo(float32(tri.V[0][0]*cellPx), float32(tri.V[0][1]*cellPx))
			p.LineTo(float32(tri.V[1][0]*cellPx), float32(tri.V[1][1]*cellPx))
			p.LineTo(float32(tri.V[2][0]*cellPx), float32(tri.V[2][1]*cellPx))
			p.Close()
		}
	}
	for _, t := range []terrain.TileType{terrain.TileGrass, terrain.TileWater, terrain.TileMountain} {
		opts := &vector.DrawPathOptions{}
		opts.ColorScale.ScaleWithColor(tileColours[t])
		vector.FillPath(img, paths[t], &vector.FillOptions{}, opts)
	}
	g.terrainImg, g.terrainFor = img, grid
}

func (g *Game) mapWidth() int { return viewWidth - logPanelWidth }

// worldToScreen converts overworld coordinates around the player.
func (g *Game) worldToScreen(x, z float64) (float32, float32) {
	w := g.sim.World
	sx := (x-w.PlayerX)*cellPx*g.camZoom + float64(g.mapWidth())/2
	sy := (z-w.PlayerZ)*cellPx*g.camZoom + viewHeight/2
	return float32(sx), float32(sy)
}

func (g *Game) drawOverworld(screen *ebiten.Image) {
	g.buildTerrain()
	w := g.sim.World
	half := float64(w.Grid.Size) / 2

	var cam ebiten.DrawImageOptions
	cam.GeoM.Translate(-(w.PlayerX+half)*cellPx, -(w.PlayerZ+half)*cellPx)
	cam.GeoM.Scale(g.camZoom, g.camZoom)
	cam.GeoM.Translate(float64(g.mapWidth())/2, viewHeight/2)
	screen.DrawImage(g.terrainImg, &cam)

	scale := float32(cellPx * g.camZoom)
	for _, u := range g.view.units {
		col, r := spriteStyle(u.Sprite)
		sx, sy := g.worldToScreen(u.Pos.X, u.Pos.Z)
		vector.FillCircle(screen, sx, sy, r*scale, col, true)
	}
	for _, c := range g.sim.Heroes() {
		hx, hz := g.worldToScreen(c.HomeX, c.HomeZ)
		vector.StrokeCircle(screen, hx, hz, float32(c.TerritoryRadius())*scale, 1, color.RGBA{R: 255, G: 150, B: 40, A: 90}, true)
	}
}

func (g *Game) drawBattle(screen *ebiten.Image) {
	b := g.sim.Encounter().Battle
	cx, cy := float32(g.mapWidth())/2, float32(viewHeight)/2
	arena := float32(b.Arena()) * battlePx
	vector.FillRect(screen, cx-arena, cy-arena, 2*arena, 2*arena, color.RGBA{R: 45, G: 60, B: 40, A: 255}, false)
	vector.StrokeRect(screen, cx-arena, cy-arena, 2*arena, 2*arena, 2, color.RGBA{R: 65, G: 90, B: 65, A: 255}, false)

	for _, u := range g.view.units {
		col, r := spriteStyle(u.Sprite)
		sx, sy := cx+float32(u.Pos.X)*battlePx, cy+float32(u.Pos.Z)*battlePx
		vector.FillCircle(screen, sx, sy, r*battlePx, col, true)
		fx := sx + float32(math.Cos(u.Facing))*r*battlePx
		fy := sy + float32(math.Sin(u.Facing))*r*battlePx
		vector.StrokeLine(screen, sx, sy, fx, fy, 1.5, color.RGBA{A: 200}, true)
	}
	for _, f := range g.view.effects {
		sx, sy := cx+float32(f.x)*battlePx, cy+float32(f.z)*battlePx
		grow := float32(effectFrames-f.left+1) / effectFrames
		vector.StrokeCircle(screen, sx, sy, grow*battlePx*1.5, 2, effectColour(f.name), true)
	}
}

func (g *Game) drawText(screen *ebiten.Image, s string, x, y int, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, g.face, op)
}

func (g *Game) drawEventPanel(screen *ebiten.Image) {
	panelX := float32(g.mapWidth())
	vector.FillRect(screen, panelX, 0, logPanelWidth, viewHeight, color.RGBA{R: 10, G: 12, B: 10, A: 248}, false)
	vector.StrokeLine(screen, panelX, 0, panelX, viewHeight, 1, color.RGBA{R: 50, G: 70, B: 50, A: 255}, false)
	vector.FillRect(screen, panelX, 0, logPanelWidth, 18, color.RGBA{R: 20, G: 30, B: 20, A: 255}, false)
	g.drawText(screen, "EVENTS", int(panelX)+8, 2, color.White)

	entries := g.sim.Events.Recent()
	maxVisible := (viewHeight - 24) / logLineHeight
	if len(entries) > maxVisible {
		entries = entries[len(entries)-maxVisible:]
	}
	y := 22
	for i, e := range entries {
		col := color.RGBA{R: 150, G: 160, B: 150, A: 255}
		if i >= len(entries)-3 {
			col = color.RGBA{R: 235, G: 240, B: 235, A: 255}
		}
		g.drawText(screen, e.String(), int(panelX)+8, y, col)
		y += logLineHeight
	}
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	w := g.sim.World
	player := w.Faction("player")

	speedStr := fmt.Sprintf("%.1fx", g.simSpeed)
	if g.simSpeed == 0 {
		speedStr = "PAUSED"
	}
	lines := []string{
		fmt.Sprintf("Year %d %s, day %d", w.Clock.Year(), w.Clock.Season(), w.Clock.Day),
		fmt.Sprintf("Gold %d  Wood %d", player.Gold, player.Wood),
		fmt.Sprintf("SIM: %s  P=pause  ,/. speed", speedStr),
		"WASD=walk  E=interact  F5/F9=save/load  F3=copy debug",
		"scroll or +/- = zoom  H=hide",
	}
	if enc := g.sim.Encounter(); enc != nil {
		out := enc.Battle.Outcome()
		lines = append(lines, fmt.Sprintf("BATTLE vs %s: %d/%d left, enemy %d/%d",
			enc.Kind, out.PlayerSurvivors, out.PlayerTotal, out.EnemySurvivors, out.EnemyTotal))
	}
	if g.status != "" {
		lines = append(lines, g.status)
	}

	const padX, padY = 6, 4
	boxH := float32(len(lines)*logLineHeight + padY*2)
	by := float32(viewHeight) - boxH - 6
	vector.FillRect(screen, 6, by, 380, boxH, color.RGBA{R: 6, G: 10, B: 6, A: 210}, false)
	vector.StrokeRect(screen, 6, by, 380, boxH, 1, color.RGBA{R: 60, G: 100, B: 60, A: 180}, false)
	for i, l := range lines {
		g.drawText(screen, l, 6+padX, int(by)+padY+i*logLineHeight, color.White)
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return viewWidth, viewHeight
}
