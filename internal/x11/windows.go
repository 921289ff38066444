package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// ClientInfo is what the window manager advertises about one managed client.
type ClientInfo struct {
	ID        xproto.Window
	PID       int
	Class     string
	Title     string
	Types     []string
	States    []string
	Transient xproto.Window
	X, Y      int
	Width     int
	Height    int
}

// Clients lists managed clients in stacking order, bottom first.
func (c *Connection) Clients() ([]ClientInfo, error) {
	ids, err := ewmh.ClientListStackingGet(c.XUtil)
	if err != nil {
		if ids, err = ewmh.ClientListGet(c.XUtil); err != nil {
			return nil, err
		}
	}

	clients := make([]ClientInfo, 0, len(ids))
	for _, id := range ids {
		x, y, w, h, err := c.Geometry(id)
		if err != nil {
			continue
		}
		info := ClientInfo{ID: id, X: x, Y: y, Width: w, Height: h}
		if pid, err := ewmh.WmPidGet(c.XUtil, id); err == nil {
			info.PID = int(pid)
		}
		if class, err := icccm.WmClassGet(c.XUtil, id); err == nil {
			info.Class = class.Class
		}
		if title, err := ewmh.WmNameGet(c.XUtil, id); err == nil && title != "" {
			info.Title = title
		} else if title, err := icccm.WmNameGet(c.XUtil, id); err == nil {
			info.Title = title
		}
		info.Types, _ = ewmh.WmWindowTypeGet(c.XUtil, id)
		info.States, _ = ewmh.WmStateGet(c.XUtil, id)
		if parent, err := icccm.WmTransientForGet(c.XUtil, id); err == nil {
			info.Transient = parent
		}
		clients = append(clients, info)
	}
	return clients, nil
}

// Geometry returns the root-relative geometry of a window.
func (c *Connection) Geometry(windowID xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), windowID, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), nil
}

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(windowID xproto.Window, x, y, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid size %dx%d for window %d", width, height, windowID)
	}
	if err := ewmh.MoveresizeWindow(c.XUtil, windowID, x, y, width, height); err != nil {
		// Not every WM honours _NET_MOVERESIZE_WINDOW.
		xwindow.New(c.XUtil, windowID).MoveResize(x, y, width, height)
	}
	return nil
}

// Map makes a window viewable.
func (c *Connection) Map(windowID xproto.Window) error {
	return xproto.MapWindowChecked(c.XUtil.Conn(), windowID).Check()
}

// Unmap withdraws a window from the screen.
func (c *Connection) Unmap(windowID xproto.Window) error {
	return xproto.UnmapWindowChecked(c.XUtil.Conn(), windowID).Check()
}

// StackAbove places windowID directly above sibling, or at the bottom of the
// stack when sibling is 0.
func (c *Connection) StackAbove(windowID, sibling xproto.Window) error {
	if sibling == 0 {
		return xproto.ConfigureWindowChecked(c.XUtil.Conn(), windowID,
			xproto.ConfigWindowStackMode, []uint32{xproto.StackModeBelow}).Check()
	}
	return xproto.ConfigureWindowChecked(c.XUtil.Conn(), windowID,
		xproto.ConfigWindowSibling|xproto.ConfigWindowStackMode,
		[]uint32{uint32(sibling), xproto.StackModeAbove}).Check()
}

// SetOpacity sets _NET_WM_WINDOW_OPACITY, honoured by compositing managers.
func (c *Connection) SetOpacity(windowID xproto.Window, opacity float64) error {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return ewmh.WmWindowOpacitySet(c.XUtil, windowID, opacity)
}

// Activate asks the window manager to focus and raise windowID.
func (c *Connection) Activate(windowID xproto.Window) error {
	return ewmh.ActiveWindowReq(c.XUtil, windowID)
}

// GetActiveWindow returns _NET_ACTIVE_WINDOW.
func (c *Connection) GetActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// Iconify requests the iconic state through WM_CHANGE_STATE.
func (c *Connection) Iconify(windowID xproto.Window) error {
	reply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len("WM_CHANGE_STATE")), "WM_CHANGE_STATE").Reply()
	if err != nil {
		return err
	}

	const iconicState = 3
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   reply.Atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{iconicState, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}
