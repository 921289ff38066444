package container

import (
	"github.com/1broseidon/winstack/internal/window"
	"github.com/1broseidon/winstack/internal/zorder"
)

func isFullImmersive(n *window.Node) bool {
	return n.Mode == window.ModeFullscreen && !n.HasFlag(window.FlagNeedAvoid)
}

func isSplitImmersive(n *window.Node) bool {
	return n.Type == window.TypeDockSlice || n.IsSplitMode()
}

// expectImmersiveProperty scans root windows from the top for the first one
// that decides what the system bars should look like. Windows stacked above
// the bars themselves never decide.
func (c *Container) expectImmersiveProperty() map[window.Type]window.SystemBarProperty {
	props := make(map[window.Type]window.SystemBarProperty, len(barTypes))
	for _, t := range barTypes {
		props[t] = window.DefaultSystemBarProperty()
	}
	for _, b := range []window.Bucket{window.BucketAbove, window.BucketApp, window.BucketBelow} {
		roots := c.forest.Root(b)
		for i := len(roots) - 1; i >= 0; i-- {
			n := roots[i]
			if zorder.IsAboveSystemBars(n.Type) {
				continue
			}
			switch {
			case isFullImmersive(n):
				for _, t := range barTypes {
					props[t] = n.SystemBarProperty(t)
				}
				return props
			case isSplitImmersive(n):
				for _, t := range barTypes {
					p := n.SystemBarProperty(t)
					p.Enable = false
					props[t] = p
				}
				return props
			}
		}
	}
	return props
}

// NotifyIfSystemBarTintChanged sends the bars whose expected property
// differs from what listeners last saw.
func (c *Container) NotifyIfSystemBarTintChanged() {
	expect := c.expectImmersiveProperty()
	var tints []window.SystemBarRegionTint
	for _, t := range barTypes {
		tint := c.sysBarTints[t]
		if tint.Prop == expect[t] {
			continue
		}
		tint.Prop = expect[t]
		tints = append(tints, *tint)
	}
	if len(tints) > 0 {
		c.logger.Debug("system bar tint changed", "bars", len(tints))
	}
	c.agent.UpdateSystemBarTints(c.displayID, tints)
}

// NotifyIfSystemBarRegionChanged sends the bars whose window rect moved.
func (c *Container) NotifyIfSystemBarRegionChanged() {
	var tints []window.SystemBarRegionTint
	for _, t := range barTypes {
		n := c.sysBarNodes[t]
		tint := c.sysBarTints[t]
		if n == nil || tint.Region == n.LayoutRect {
			continue
		}
		tint.Region = n.LayoutRect
		tints = append(tints, *tint)
	}
	if len(tints) > 0 {
		c.logger.Debug("system bar region changed", "bars", len(tints))
	}
	c.agent.UpdateSystemBarTints(c.displayID, tints)
}

// NotifySystemBarDismiss turns off every bar n asked for. Bars that were
// already hidden are not reported again; colors are kept.
func (c *Container) NotifySystemBarDismiss(n *window.Node) {
	if n == nil {
		return
	}
	var tints []window.SystemBarRegionTint
	for _, t := range barTypes {
		if _, ok := n.SystemBarProps[t]; !ok {
			continue
		}
		p := n.SystemBarProperty(t)
		p.Enable = false
		n.SetSystemBarProperty(t, p)
		tint := c.sysBarTints[t]
		if !tint.Prop.Enable {
			continue
		}
		tint.Prop.Enable = false
		tints = append(tints, *tint)
	}
	c.agent.UpdateSystemBarTints(c.displayID, tints)
}

// NotifySystemBarTints re-sends the full bar state.
func (c *Container) NotifySystemBarTints() {
	c.agent.UpdateSystemBarTints(c.displayID, c.SystemBarTints())
}

// SystemBarTints returns a copy of the last notified bar state.
func (c *Container) SystemBarTints() []window.SystemBarRegionTint {
	out := make([]window.SystemBarRegionTint, 0, len(barTypes))
	for _, t := range barTypes {
		out = append(out, *c.sysBarTints[t])
	}
	return out
}
