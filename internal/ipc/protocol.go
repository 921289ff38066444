package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/winstack/internal/container"
	"github.com/1broseidon/winstack/internal/daemon"
	"github.com/1broseidon/winstack/internal/window"
	"github.com/1broseidon/winstack/internal/wmerr"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload        CommandType = "RELOAD"
	CommandGetStatus     CommandType = "GET_STATUS"
	CommandGetTree       CommandType = "GET_TREE"
	CommandListWindows   CommandType = "LIST_WINDOWS"
	CommandSwitchLayout  CommandType = "SWITCH_LAYOUT"
	CommandRaise         CommandType = "RAISE"
	CommandFocus         CommandType = "FOCUS"
	CommandSetSplitRatio CommandType = "SET_SPLIT_RATIO"
	CommandMinimizeAll   CommandType = "MINIMIZE_ALL"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
	// Code is the result code name of a failed stacking operation.
	Code string `json:"code,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Displays      []daemon.DisplayStatus `json:"displays"`
	UptimeSeconds int64                  `json:"uptime_seconds"`
	DaemonRunning bool                   `json:"daemon_running"`
}

// TreeData represents the data returned by GET_TREE
type TreeData struct {
	Entries []container.TreeEntry `json:"entries"`
}

// WindowsData represents the data returned by LIST_WINDOWS
type WindowsData struct {
	Windows []window.Info `json:"windows"`
}

// DisplayPayload selects a display; 0 means every display.
type DisplayPayload struct {
	DisplayID uint64 `json:"display_id,omitempty"`
}

type SwitchLayoutPayload struct {
	DisplayID uint64 `json:"display_id,omitempty"`
	Mode      string `json:"mode"`
	Reorder   bool   `json:"reorder,omitempty"`
}

type WindowPayload struct {
	WindowID uint32 `json:"window_id"`
}

type SplitRatioPayload struct {
	DisplayID uint64  `json:"display_id,omitempty"`
	Ratio     float64 `json:"ratio"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data any) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// NewCodedErrorResponse reports a failed stacking operation with its
// result code.
func NewCodedErrorResponse(err error) *Response {
	resp := NewErrorResponse(err.Error())
	resp.Code = wmerr.CodeOf(err).String()
	return resp
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// DaemonError is an error response received by the client.
type DaemonError struct {
	Message string
	Code    wmerr.Code
}

func (e *DaemonError) Error() string {
	return "daemon error: " + e.Message
}

// Unwrap exposes the result code so errors.Is works across the socket.
func (e *DaemonError) Unwrap() error {
	if e.Code == wmerr.OK {
		return nil
	}
	return e.Code
}
