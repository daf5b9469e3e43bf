package viewport

import (
	"fmt"

	"github.com/jacobarthurs/profileviz/internal/layout"
)

// Config bounds zooming and panning.
type Config struct {
	MinZoom float64 `yaml:"min_zoom" json:"minZoom"`
	MaxZoom float64 `yaml:"max_zoom" json:"maxZoom"`
	// FitMaxZoom caps fit-to-content so small plans are never magnified.
	FitMaxZoom float64 `yaml:"fit_max_zoom" json:"fitMaxZoom"`
	// SubsetMaxZoom caps fit-to-subset, which usually frames a few nodes.
	SubsetMaxZoom float64 `yaml:"subset_max_zoom" json:"subsetMaxZoom"`
	// Overscroll is how far past the content edges the view may travel, as
	// a fraction of the content size.
	Overscroll float64 `yaml:"overscroll" json:"overscroll"`
	// Padding is kept free around fitted content, in screen pixels.
	Padding float64 `yaml:"padding" json:"padding"`
	// Width and Height are the default screen size used when rendering offline.
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

func DefaultConfig() Config {
	return Config{
		MinZoom:       0.1,
		MaxZoom:       3,
		FitMaxZoom:    1,
		SubsetMaxZoom: 2,
		Overscroll:    0.5,
		Padding:       40,
		Width:         1280,
		Height:        800,
	}
}

// Camera is the world point shown at the top-left corner of the screen and
// the scale from world to screen pixels.
type Camera struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

func Identity() Camera {
	return Camera{Zoom: 1}
}

// Viewport converts between screen and world space for one laid out plan.
// Every mutation except a mid-gesture pan leaves the camera clamped.
type Viewport struct {
	Camera  Camera
	Width   float64
	Height  float64
	Content layout.Rect

	cfg      Config
	dragging bool
}

func New(width, height float64, content layout.Rect, cfg Config) *Viewport {
	return &Viewport{
		Camera:  Identity(),
		Width:   width,
		Height:  height,
		Content: content,
		cfg:     cfg,
	}
}

func (v *Viewport) Config() Config {
	return v.cfg
}

// Reset returns the camera to identity.
func (v *Viewport) Reset() {
	v.Camera = Identity()
	v.dragging = false
}

func (v *Viewport) Resize(width, height float64) {
	v.Width, v.Height = width, height
	v.ClampToBounds()
}

func (v *Viewport) ScreenToWorld(p layout.Point) layout.Point {
	return layout.Point{
		X: p.X/v.Camera.Zoom + v.Camera.X,
		Y: p.Y/v.Camera.Zoom + v.Camera.Y,
	}
}

func (v *Viewport) WorldToScreen(p layout.Point) layout.Point {
	return layout.Point{
		X: (p.X - v.Camera.X) * v.Camera.Zoom,
		Y: (p.Y - v.Camera.Y) * v.Camera.Zoom,
	}
}

// BeginGesture starts a drag; pans are left unclamped until EndGesture.
func (v *Viewport) BeginGesture() {
	v.dragging = true
}

func (v *Viewport) EndGesture() {
	v.dragging = false
	v.ClampToBounds()
}

// PanBy moves the view by a screen-space delta.
func (v *Viewport) PanBy(dx, dy float64) {
	v.Camera.X -= dx / v.Camera.Zoom
	v.Camera.Y -= dy / v.Camera.Zoom
	if !v.dragging {
		v.ClampToBounds()
	}
}

// ZoomAtPoint scales by factor while keeping the world point under screen
// fixed on screen.
func (v *Viewport) ZoomAtPoint(screen layout.Point, factor float64) {
	if factor <= 0 {
		return
	}
	anchor := v.ScreenToWorld(screen)
	v.Camera.Zoom = clamp(v.Camera.Zoom*factor, v.cfg.MinZoom, v.cfg.MaxZoom)
	v.Camera.X = anchor.X - screen.X/v.Camera.Zoom
	v.Camera.Y = anchor.Y - screen.Y/v.Camera.Zoom
	v.ClampToBounds()
}

// FitToContent frames the whole plan, never magnifying past FitMaxZoom.
func (v *Viewport) FitToContent() {
	v.frame(v.Content, v.cfg.FitMaxZoom)
}

// FitToSubset frames the union of boxes. It reports false, leaving the
// camera alone, when boxes is empty.
func (v *Viewport) FitToSubset(boxes []layout.Rect) bool {
	if len(boxes) == 0 {
		return false
	}
	target := boxes[0]
	for _, b := range boxes[1:] {
		target = target.Union(b)
	}
	v.frame(target, v.cfg.SubsetMaxZoom)
	return true
}

func (v *Viewport) frame(target layout.Rect, ceiling float64) {
	availW := max(v.Width-2*v.cfg.Padding, 1)
	availH := max(v.Height-2*v.cfg.Padding, 1)

	zoom := ceiling
	if target.Width > 0 {
		zoom = min(zoom, availW/target.Width)
	}
	if target.Height > 0 {
		zoom = min(zoom, availH/target.Height)
	}
	v.Camera.Zoom = clamp(zoom, v.cfg.MinZoom, min(ceiling, v.cfg.MaxZoom))

	v.Camera.X = target.X + target.Width/2 - v.Width/v.Camera.Zoom/2
	v.Camera.Y = target.Y + target.Height/2 - v.Height/v.Camera.Zoom/2
	v.dragging = false
	v.ClampToBounds()
}

// ClampToBounds keeps the view within Overscroll of the content edges. When
// the view is larger than the content, the margin widens so the content can
// still be centred.
func (v *Viewport) ClampToBounds() {
	lo, hi := v.xRange()
	v.Camera.X = clamp(v.Camera.X, lo, hi)
	lo, hi = v.yRange()
	v.Camera.Y = clamp(v.Camera.Y, lo, hi)
}

// Margins returns the allowed overscroll, in world units, on each axis at
// the current zoom.
func (v *Viewport) Margins() (mx, my float64) {
	w, h := v.visibleSize()
	mx = max(v.Content.Width*v.cfg.Overscroll, (w-v.Content.Width)/2)
	my = max(v.Content.Height*v.cfg.Overscroll, (h-v.Content.Height)/2)
	return mx, my
}

func (v *Viewport) xRange() (float64, float64) {
	w, _ := v.visibleSize()
	mx, _ := v.Margins()
	return v.Content.X - mx, v.Content.Right() + mx - w
}

func (v *Viewport) yRange() (float64, float64) {
	_, h := v.visibleSize()
	_, my := v.Margins()
	return v.Content.Y - my, v.Content.Bottom() + my - h
}

func (v *Viewport) visibleSize() (float64, float64) {
	return v.Width / v.Camera.Zoom, v.Height / v.Camera.Zoom
}

// ViewBox is the world rect currently on screen.
func (v *Viewport) ViewBox() layout.Rect {
	w, h := v.visibleSize()
	return layout.Rect{X: v.Camera.X, Y: v.Camera.Y, Width: w, Height: h}
}

// Visible reports whether any part of box is on screen.
func (v *Viewport) Visible(box layout.Rect) bool {
	view := v.ViewBox()
	return box.X < view.Right() && box.Right() > view.X &&
		box.Y < view.Bottom() && box.Bottom() > view.Y
}

// Transform is the world-to-screen transform as an SVG matrix.
func (v *Viewport) Transform() string {
	z := v.Camera.Zoom
	return fmt.Sprintf("matrix(%g 0 0 %g %g %g)", z, z, -v.Camera.X*z, -v.Camera.Y*z)
}

func clamp(x, lo, hi float64) float64 {
	return max(lo, min(x, hi))
}
