package mcp

// DisplayInput selects a display; 0 or omitted means every display.
type DisplayInput struct {
	DisplayID uint64 `json:"display_id,omitempty" jsonschema:"Display id (default: all displays)"`
}

// WindowSummary describes one managed window.
type WindowSummary struct {
	ID        uint32 `json:"id"`
	Name      string `json:"name,omitempty"`
	DisplayID uint64 `json:"display_id"`
	Type      string `json:"type"`
	Mode      string `json:"mode"`
	Focused   bool   `json:"focused"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	Windows []WindowSummary `json:"windows"`
}

// StackEntry is one row of a display's stacking order.
type StackEntry struct {
	ID      uint32 `json:"id"`
	Name    string `json:"name,omitempty"`
	Parent  uint32 `json:"parent,omitempty"`
	Layer   string `json:"layer"`
	Type    string `json:"type"`
	Z       int    `json:"z"`
	Visible bool   `json:"visible"`
	Covered bool   `json:"covered"`
}

// GetStackOutput is the output for the get_stack tool.
type GetStackOutput struct {
	Entries []StackEntry `json:"entries"`
}

// DisplaySummary describes one display.
type DisplaySummary struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Layout  string `json:"layout"`
	Windows int    `json:"windows"`
	Focused uint32 `json:"focused,omitempty"`
}

// ListDisplaysOutput is the output for the list_displays tool.
type ListDisplaysOutput struct {
	Displays []DisplaySummary `json:"displays"`
}

// WindowInput is the input for the raise_window and focus_window tools.
type WindowInput struct {
	WindowID uint32 `json:"window_id" jsonschema:"X11 window id of a managed window"`
}

// WindowOutput echoes the window an action applied to.
type WindowOutput struct {
	WindowID uint32 `json:"window_id"`
}

// SwitchLayoutInput is the input for the switch_layout tool.
type SwitchLayoutInput struct {
	DisplayID uint64 `json:"display_id,omitempty" jsonschema:"Display id (default: all displays)"`
	Mode      string `json:"mode" jsonschema:"Layout mode: cascade or tile"`
	Reorder   bool   `json:"reorder,omitempty" jsonschema:"Re-place existing windows in the new layout"`
}

// SwitchLayoutOutput is the output for the switch_layout tool.
type SwitchLayoutOutput struct {
	Mode string `json:"mode"`
}

// SplitRatioInput is the input for the set_split_ratio tool.
type SplitRatioInput struct {
	DisplayID uint64  `json:"display_id,omitempty" jsonschema:"Display id (default: all displays)"`
	Ratio     float64 `json:"ratio" jsonschema:"Primary side share of the display, strictly between 0 and 1"`
}
