package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
)

// Backlight reads the RandR "Backlight" property of an output together with
// its valid range.
func (c *Connection) Backlight(output randr.Output) (value, min, max int32, err error) {
	atom, err := c.backlightAtom()
	if err != nil {
		return 0, 0, 0, err
	}
	prop, err := randr.GetOutputProperty(c.XUtil.Conn(), output, atom, xproto.AtomAny, 0, 4, false, false).Reply()
	if err != nil {
		return 0, 0, 0, err
	}
	if prop.NumItems != 1 || prop.Format != 32 || len(prop.Data) < 4 {
		return 0, 0, 0, fmt.Errorf("output %d has no usable backlight", output)
	}
	value = int32(xgb.Get32(prop.Data))

	query, err := randr.QueryOutputProperty(c.XUtil.Conn(), output, atom).Reply()
	if err != nil {
		return 0, 0, 0, err
	}
	if !query.Range || len(query.ValidValues) != 2 {
		return 0, 0, 0, fmt.Errorf("output %d backlight has no range", output)
	}
	return value, query.ValidValues[0], query.ValidValues[1], nil
}

// SetBacklight writes the RandR "Backlight" property of an output.
func (c *Connection) SetBacklight(output randr.Output, value int32) error {
	atom, err := c.backlightAtom()
	if err != nil {
		return err
	}
	data := make([]byte, 4)
	xgb.Put32(data, uint32(value))
	return randr.ChangeOutputPropertyChecked(c.XUtil.Conn(), output, atom, xproto.AtomInteger,
		32, xproto.PropModeReplace, 1, data).Check()
}

func (c *Connection) backlightAtom() (xproto.Atom, error) {
	reply, err := xproto.InternAtom(c.XUtil.Conn(), true, uint16(len("Backlight")), "Backlight").Reply()
	if err != nil {
		return 0, err
	}
	if reply.Atom == xproto.AtomNone {
		return 0, fmt.Errorf("server has no Backlight property")
	}
	return reply.Atom, nil
}

// ScreenSaver is the server screen saver configuration.
type ScreenSaver struct {
	Timeout        int16
	Interval       int16
	PreferBlanking byte
	AllowExposures byte
}

// GetScreenSaver returns the current screen saver settings.
func (c *Connection) GetScreenSaver() (ScreenSaver, error) {
	reply, err := xproto.GetScreenSaver(c.XUtil.Conn()).Reply()
	if err != nil {
		return ScreenSaver{}, err
	}
	return ScreenSaver{
		Timeout:        int16(reply.Timeout),
		Interval:       int16(reply.Interval),
		PreferBlanking: reply.PreferBlanking,
		AllowExposures: reply.AllowExposures,
	}, nil
}

// SetScreenSaver applies screen saver settings. A zero timeout disables blanking.
func (c *Connection) SetScreenSaver(s ScreenSaver) error {
	return xproto.SetScreenSaverChecked(c.XUtil.Conn(), s.Timeout, s.Interval, s.PreferBlanking, s.AllowExposures).Check()
}
