package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/winstack/internal/container"
	"github.com/1broseidon/winstack/internal/daemon"
	"github.com/1broseidon/winstack/internal/runtimepath"
	"github.com/1broseidon/winstack/internal/window"
	"github.com/1broseidon/winstack/internal/wmerr"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for an explicit socket path.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(command CommandType, payload any) (*Response, error) {
	req := &Request{Command: command}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = raw
	}

	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		code, _ := wmerr.ParseCode(resp.Code)
		return nil, &DaemonError{Message: resp.Error, Code: code}
	}
	return &resp, nil
}

func (c *Client) fetch(command CommandType, payload, out any) error {
	resp, err := c.sendRequest(command, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	_, err := c.sendRequest(CommandReload, nil)
	return err
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.fetch(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetTree returns the stacking order of a display, top first. displayID 0
// covers every display.
func (c *Client) GetTree(displayID uint64) ([]container.TreeEntry, error) {
	var data TreeData
	if err := c.fetch(CommandGetTree, DisplayPayload{DisplayID: displayID}, &data); err != nil {
		return nil, err
	}
	return data.Entries, nil
}

// ListWindows returns the managed windows of a display.
func (c *Client) ListWindows(displayID uint64) ([]window.Info, error) {
	var data WindowsData
	if err := c.fetch(CommandListWindows, DisplayPayload{DisplayID: displayID}, &data); err != nil {
		return nil, err
	}
	return data.Windows, nil
}

// SwitchLayout changes the layout mode ("cascade" or "tile").
func (c *Client) SwitchLayout(displayID uint64, mode string, reorder bool) error {
	_, err := c.sendRequest(CommandSwitchLayout, SwitchLayoutPayload{
		DisplayID: displayID,
		Mode:      mode,
		Reorder:   reorder,
	})
	return err
}

// Raise moves a window to the top of its layer.
func (c *Client) Raise(windowID uint32) error {
	_, err := c.sendRequest(CommandRaise, WindowPayload{WindowID: windowID})
	return err
}

// Focus gives a window input focus.
func (c *Client) Focus(windowID uint32) error {
	_, err := c.sendRequest(CommandFocus, WindowPayload{WindowID: windowID})
	return err
}

// SetSplitRatio moves the split divider of a display.
func (c *Client) SetSplitRatio(displayID uint64, ratio float64) error {
	_, err := c.sendRequest(CommandSetSplitRatio, SplitRatioPayload{DisplayID: displayID, Ratio: ratio})
	return err
}

// MinimizeAll minimizes every app window on a display.
func (c *Client) MinimizeAll(displayID uint64) error {
	_, err := c.sendRequest(CommandMinimizeAll, DisplayPayload{DisplayID: displayID})
	return err
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}

// Displays is a convenience wrapper returning only the per-display status.
func (c *Client) Displays() ([]daemon.DisplayStatus, error) {
	status, err := c.GetStatus()
	if err != nil {
		return nil, err
	}
	return status.Displays, nil
}
