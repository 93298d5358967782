package main

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KesselZ/HeroHour-sub000/internal/game"
)

func simScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	scr := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, scr.Init())
	scr.SetSize(w, h)
	t.Cleanup(scr.Fini)
	return scr
}

func cellAt(scr tcell.SimulationScreen, x, y int) rune {
	cells, w, _ := scr.GetContents()
	c := cells[y*w+x]
	if len(c.Runes) == 0 {
		return 0
	}
	return c.Runes[0]
}

func TestViewer_DrawsPlayerAndEntities(t *testing.T) {
	ts := game.NewTestSim(game.WithFlatWorld(64), game.WithTree(8, 0, 3, 5))
	scr := simScreen(t, 40, 21)
	v := newViewer(scr, ts.Sim)
	v.scale = 1
	v.centre()
	v.draw()

	px, pz := v.toScreen(0, 0)
	assert.Equal(t, 20, px)
	assert.Equal(t, 10, pz)
	assert.Equal(t, '@', cellAt(scr, px, pz), "player drawn over the home city")
	assert.Equal(t, 'T', cellAt(scr, px+8, pz))
	assert.Equal(t, '.', cellAt(scr, px+4, pz))
}

func TestViewer_OutOfBoundsIsMountain(t *testing.T) {
	ts := game.NewTestSim(game.WithFlatWorld(16))
	scr := simScreen(t, 40, 10)
	v := newViewer(scr, ts.Sim)
	v.camX, v.camZ, v.scale = -10, 0, 1
	v.draw()
	assert.Equal(t, '^', cellAt(scr, 0, 0))
	assert.Equal(t, '.', cellAt(scr, 10, 0))
}

func TestViewer_Keys(t *testing.T) {
	ts := game.NewTestSim(game.WithFlatWorld(32))
	v := newViewer(simScreen(t, 20, 10), ts.Sim)
	x0 := v.camX

	v.handleKey(tcell.KeyRune, 'l')
	assert.Equal(t, x0+4*v.scale, v.camX)
	v.handleKey(tcell.KeyRune, '-')
	assert.Equal(t, 3, v.scale)
	v.handleKey(tcell.KeyRune, ' ')
	assert.True(t, v.running)
	v.handleKey(tcell.KeyEscape, 0)
	assert.True(t, v.quit)
}
