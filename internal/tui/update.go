package tui

import (
	"fmt"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"isoplane/internal/geom"
	"isoplane/internal/plane"
)

// keyPanStep is how far an arrow key moves the plane, in braille dots.
const keyPanStep = 8

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		_, _, w, h := m.layout()
		size := geom.Size{W: w * 2, H: h * 4}
		if m.view == nil {
			m.resetView(size)
		} else {
			m.view.Resize(size)
		}
		if m.showSidebar {
			m.l.SetSize(sidebarWidth-2, h-2)
		}
		m.recompose()
	case tea.KeyMsg:
		// If list is visible and filtering, send keys to list and ignore global commands
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.settingsMode {
			switch msg.String() {
			case "esc":
				m.settingsMode = false
				m.ta.Blur()
				m.status = "settings unchanged"
				return m, nil
			case "enter":
				in := strings.TrimSpace(m.ta.Value())
				if in == "" {
					m.status = "settings: empty"
					return m, nil
				}
				if err := m.applySettings(in); err != nil {
					m.status = "settings error: " + err.Error()
					return m, nil
				}
				m.settingsMode = false
				m.ta.Blur()
				m.recompose()
				m.status = fmt.Sprintf("field=%s threshold=%s resolution=%s", m.field.Name, num(m.threshold), num(m.resolution))
				return m, nil
			}
			var cmd tea.Cmd
			m.ta, cmd = m.ta.Update(msg)
			return m, cmd
		}
		if m.showSidebar {
			switch msg.String() {
			case "up", "down", "k", "j", "pgup", "pgdown", "/":
				var cmd tea.Cmd
				m.l, cmd = m.l.Update(msg)
				return m, cmd
			}
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	// Pass messages to list when visible
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "1":
		m.layers.Contour = !m.layers.Contour
		m.status = "contour: " + onOff(m.layers.Contour)
	case "2":
		m.layers.Axis = !m.layers.Axis
		m.status = "axis: " + onOff(m.layers.Axis)
	case "3":
		m.layers.Dots = !m.layers.Dots
		m.status = "dots: " + onOff(m.layers.Dots)
	case "4":
		m.layers.Grid = !m.layers.Grid
		m.status = "grid: " + onOff(m.layers.Grid)
	case "l":
		// toggle all layers
		all := m.layers.Contour && m.layers.Axis && m.layers.Dots && m.layers.Grid
		m.layers.Contour, m.layers.Axis, m.layers.Dots, m.layers.Grid = !all, !all, !all, !all
		m.status = "layers: " + m.layers.String()
	case "+", "=":
		// Magnifying shrinks the window, which is the Out step.
		m.zoomAtCenter(plane.Out)
	case "-", "_":
		m.zoomAtCenter(plane.In)
	case "[":
		m.resolution = clampf(m.resolution/1.25, minResolution, maxResolution)
		m.status = "resolution: " + num(m.resolution)
	case "]":
		m.resolution = clampf(m.resolution*1.25, minResolution, maxResolution)
		m.status = "resolution: " + num(m.resolution)
	case "<", ",":
		m.threshold -= 0.25
		m.status = "threshold: " + num(m.threshold)
	case ">", ".":
		m.threshold += 0.25
		m.status = "threshold: " + num(m.threshold)
	case "r":
		if m.view != nil {
			m.resetView(m.view.Size())
			m.status = "view reset"
		}
	case "tab":
		m.showSidebar = !m.showSidebar
		if m.showSidebar {
			_, _, _, h := m.layout()
			m.l.SetSize(sidebarWidth-2, h-2)
		}
		m.resizeToLayout()
	case "s":
		m.settingsMode = true
		m.ta.SetValue(fmt.Sprintf("resolution=%s threshold=%s field=%s", num(m.resolution), num(m.threshold), m.field.Name))
		m.ta.Focus()
		m.status = "settings"
	case "h":
		m.helpVisible = !m.helpVisible
	case "a":
		m.showStats = !m.showStats
		if m.showStats {
			m.refreshStats()
		}
	case "enter":
		if m.showSidebar {
			if it, ok := m.l.SelectedItem().(fieldItem); ok {
				m.selectField(it.f.Name)
			}
		}
	case "up":
		m.pan(geom.Pixel{Y: keyPanStep})
	case "down":
		m.pan(geom.Pixel{Y: -keyPanStep})
	case "left":
		m.pan(geom.Pixel{X: keyPanStep})
	case "right":
		m.pan(geom.Pixel{X: -keyPanStep})
	default:
		return m, nil
	}
	m.recompose()
	return m, nil
}

// pan moves the drawing by delta dots, the way a drag would. Arrow keys
// move the window, so they drag the opposite way.
func (m *Model) pan(delta geom.Pixel) {
	if m.view != nil {
		m.view.Pan(delta)
	}
}

func (m *Model) zoomAtCenter(dir plane.Direction) {
	if m.view == nil {
		return
	}
	s := m.view.Size()
	if !m.view.ZoomAtCursor(dir, geom.Pixel{X: s.W / 2, Y: s.H / 2}) {
		m.status = "zoom limit reached"
		return
	}
	m.status = "zoom: " + num(m.view.Zoom()) + " units/dot"
}

// resizeToLayout keeps the view in step with the map area after the
// sidebar opens or closes.
func (m *Model) resizeToLayout() {
	if m.view == nil {
		return
	}
	_, _, w, h := m.layout()
	m.view.Resize(geom.Size{W: w * 2, H: h * 4})
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.view == nil {
		return m, nil
	}
	ox, oy, w, h := m.layout()
	cx, cy := msg.X-ox, msg.Y-oy
	at := geom.Pixel{X: cx*2 + 1, Y: cy*4 + 2}

	if ev := mouseEvent(msg, at); ev != nil && m.router().Route(ev) {
		if _, ok := ev.(plane.ScrollDelta); ok {
			m.status = "zoom: " + num(m.view.Zoom()) + " units/dot"
		}
		m.recompose()
	}

	m.hovering = cx >= 0 && cy >= 0 && cx < w && cy < h
	if m.hovering {
		m.hoverWorld = m.view.PixelToWorld(at)
	}
	if m.showSidebar && !m.hovering {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

// mouseEvent classifies a terminal mouse message. Wheel up magnifies, so
// it is a positive scroll amount.
func mouseEvent(msg tea.MouseMsg, at geom.Pixel) plane.Event {
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			return plane.ScrollDelta{Amount: 1, At: at}
		case tea.MouseButtonWheelDown:
			return plane.ScrollDelta{Amount: -1, At: at}
		case tea.MouseButtonLeft:
			return plane.MousePressed{Button: plane.ButtonLeft, At: at}
		case tea.MouseButtonMiddle:
			return plane.MousePressed{Button: plane.ButtonMiddle, At: at}
		case tea.MouseButtonRight:
			return plane.MousePressed{Button: plane.ButtonRight, At: at}
		}
	case tea.MouseActionRelease:
		// Most terminals do not report which button was released.
		switch msg.Button {
		case tea.MouseButtonMiddle:
			return plane.MouseReleased{Button: plane.ButtonMiddle, At: at}
		case tea.MouseButtonRight:
			return plane.MouseReleased{Button: plane.ButtonRight, At: at}
		}
		return plane.MouseReleased{Button: plane.ButtonLeft, At: at}
	case tea.MouseActionMotion:
		return plane.MouseMoved{At: at}
	}
	return nil
}
