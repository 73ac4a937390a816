package plane

import "isoplane/internal/geom"

// Button identifies a mouse button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// Event is an already classified input event in viewport pixels.
type Event interface {
	Pos() geom.Pixel
}

type MousePressed struct {
	Button Button
	At     geom.Pixel
}

type MouseReleased struct {
	Button Button
	At     geom.Pixel
}

type MouseMoved struct {
	At geom.Pixel
}

// ScrollDelta is a wheel step at the cursor. Negative amounts zoom In,
// positive amounts zoom Out and zero is ignored.
type ScrollDelta struct {
	Amount float64
	At     geom.Pixel
}

func (e MousePressed) Pos() geom.Pixel  { return e.At }
func (e MouseReleased) Pos() geom.Pixel { return e.At }
func (e MouseMoved) Pos() geom.Pixel    { return e.At }
func (e ScrollDelta) Pos() geom.Pixel   { return e.At }

// GestureState is the panning state machine: Idle or Panning.
type GestureState int

const (
	Idle GestureState = iota
	Panning
)

func (s GestureState) String() string {
	if s == Panning {
		return "panning"
	}
	return "idle"
}

// Controller turns input events into view mutations. A left press starts
// a drag, every move while dragging pans by the distance from the previous
// anchor, and the release ends it. Scrolling zooms at the event position
// in any state.
type Controller struct {
	view   *View
	state  GestureState
	anchor geom.Pixel
}

func NewController(v *View) *Controller {
	return &Controller{view: v}
}

func (c *Controller) View() *View         { return c.view }
func (c *Controller) State() GestureState { return c.state }

// Handle applies one event and reports whether the view changed.
func (c *Controller) Handle(ev Event) bool {
	switch e := ev.(type) {
	case MousePressed:
		if e.Button == ButtonLeft {
			c.state = Panning
			c.anchor = e.At
		}
	case MouseReleased:
		if e.Button == ButtonLeft {
			c.state = Idle
		}
	case MouseMoved:
		if c.state != Panning {
			return false
		}
		delta := e.At.Sub(c.anchor)
		c.anchor = e.At
		if delta == (geom.Pixel{}) {
			return false
		}
		c.view.Pan(delta)
		return true
	case ScrollDelta:
		switch {
		case e.Amount < 0:
			return c.view.ZoomAtCursor(In, e.At)
		case e.Amount > 0:
			return c.view.ZoomAtCursor(Out, e.At)
		}
	}
	return false
}

// Router decides whether a raw event reaches the Controller. Events at a
// position claimed by a GUI control are dropped, except releases and the
// moves of a drag already in progress, so a drag never gets stuck.
type Router struct {
	Target  *Controller
	Claimed func(geom.Pixel) bool
}

// Route forwards ev unless a control claims it and reports whether the
// view changed.
func (r Router) Route(ev Event) bool {
	if r.Target == nil {
		return false
	}
	if r.Claimed != nil && r.Claimed(ev.Pos()) {
		switch ev.(type) {
		case MouseReleased:
		case MouseMoved:
			if r.Target.State() != Panning {
				return false
			}
		default:
			return false
		}
	}
	return r.Target.Handle(ev)
}
