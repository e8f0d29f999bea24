package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/colornames"

	"github.com/milk9111/parkour/common"
	"github.com/milk9111/parkour/component"
	"github.com/milk9111/parkour/scene"
)

const zoom = 0.5

// camera maps world X/Z onto the screen, centred on the character.
type camera struct {
	x, z float64
}

func (c camera) project(p common.Vec3) (float32, float32) {
	sx := (p.X-c.x)*zoom + baseWidth/2
	sy := baseHeight/2 - (p.Z-c.z)*zoom
	return float32(sx), float32(sy)
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)
	r := v.runner
	loc := r.Body.Location()
	cam := camera{x: loc.X, z: loc.Z}

	for _, box := range r.Scene.Boxes() {
		drawBox(screen, cam, box, v.shapeColor(box.Actor, colornames.Slategray))
	}
	for _, bar := range r.Scene.Bars() {
		drawBar(screen, cam, bar, v.shapeColor(bar.Actor, colornames.Lightblue))
	}

	if r.Effects.Tether {
		x0, y0 := cam.project(loc)
		x1, y1 := cam.project(r.Effects.Anchor)
		vector.StrokeLine(screen, x0, y0, x1, y1, 2, colornames.Orange, true)
	}
	drawCapsule(screen, cam, loc, r.Body.CapsuleRadius(), r.Body.CapsuleHalfHeight(), capsuleColor(r.Coord.ActiveKind()))
	drawLook(screen, cam, r)

	ebitenutil.DebugPrint(screen, v.hud())
}

func drawBox(screen *ebiten.Image, cam camera, box scene.Box, fill color.Color) {
	x0, y0 := cam.project(common.V3(box.Min.X, 0, box.Max.Z))
	x1, y1 := cam.project(common.V3(box.Max.X, 0, box.Min.Z))
	vector.DrawFilledRect(screen, x0, y0, x1-x0, y1-y0, fill, false)
}

func (v *Viewer) shapeColor(id component.ActorID, fallback color.Color) color.Color {
	if shape, ok := v.runner.Shapes[id]; ok && shape.Color != nil {
		return shape.Color
	}
	return fallback
}

func drawBar(screen *ebiten.Image, cam camera, bar scene.Bar, c color.Color) {
	x0, y0 := cam.project(bar.A)
	x1, y1 := cam.project(bar.B)
	width := float32(math.Max(bar.Radius*2*zoom, 1))
	vector.StrokeLine(screen, x0, y0, x1, y1, width, c, true)
}

// drawCapsule draws the side profile: a body rectangle capped by two circles.
func drawCapsule(screen *ebiten.Image, cam camera, loc common.Vec3, radius, halfHeight float64, c color.Color) {
	half := math.Max(halfHeight-radius, 0)
	top := loc.Add(common.Vec3{Z: half})
	bottom := loc.Sub(common.Vec3{Z: half})
	tx, ty := cam.project(top)
	bx, by := cam.project(bottom)
	r := float32(radius * zoom)
	vector.DrawFilledRect(screen, tx-r, ty, 2*r, by-ty, c, true)
	vector.DrawFilledCircle(screen, tx, ty, r, c, true)
	vector.DrawFilledCircle(screen, bx, by, r, c, true)
}

func drawLook(screen *ebiten.Image, cam camera, r interface {
	ViewPoint() (common.Vec3, common.Rotator)
}) {
	eye, rot := r.ViewPoint()
	end := eye.Add(rot.Vector().Scale(200))
	x0, y0 := cam.project(eye)
	x1, y1 := cam.project(end)
	vector.StrokeLine(screen, x0, y0, x1, y1, 1, colornames.Yellow, true)
}

func capsuleColor(kind component.SessionKind) color.Color {
	switch kind {
	case component.SessionVault:
		return colornames.Limegreen
	case component.SessionWallRun:
		return colornames.Deepskyblue
	case component.SessionGrapple:
		return colornames.Orange
	case component.SessionHang:
		return colornames.Violet
	default:
		return colornames.Crimson
	}
}

func (v *Viewer) hud() string {
	r := v.runner
	s := r.Coord.Stats()
	mode := "manual"
	if v.script != nil {
		mode = "script " + v.script.Name()
	}
	paused := ""
	if v.paused {
		paused = " (paused)"
	}
	return fmt.Sprintf(
		"%s [%s]%s  FPS: %.1f  frame %d\n"+
			"move %s  session %s  tilt %.1f  jump %v coyote %v\n"+
			"pos %s  vel %s\n"+
			"vaults %d climbs %d wallruns %d grapples %d mantles %d hangs %d jumps %d rejected %d\n"+
			"%s\n\n"+
			"A/D W/S move  Shift sprint  Space jump  V vault  E grab  Q drop  F grapple  R release  arrows look\n"+
			"Enter restart  Tab next course  P toggle script  ` pause  . step",
		r.Course().Name, mode, paused, ebiten.ActualFPS(), r.Frame(),
		r.Body.Mode(), r.Coord.ActiveKind(), r.Coord.CameraTilt(), r.Coord.CanJump(), r.Coord.InCoyoteTime(),
		r.Body.Location(), r.Body.Velocity(),
		s.Vaults, s.Climbs, s.WallRuns, s.Grapples, s.Mantles, s.Hangs, s.Jumps, s.Rejected,
		v.status)
}
