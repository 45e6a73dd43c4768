// Copyright 2026 The Rapid Authors
// SPDX-License-Identifier: MIT

// Package rpc defines the JSON-RPC 2.0 envelopes the server speaks. The
// types stay wire-shaped: ids are raw JSON so a client's string, number,
// or null id is echoed back byte-for-byte.
package rpc

import (
	"encoding/json"
	"fmt"
)

// Version is the fixed jsonrpc envelope marker.
const Version = "2.0"

// Error codes from the JSON-RPC 2.0 spec.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternal       = -32603
)

// Request is an incoming envelope. Params stay raw until the method
// handler knows their shape.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the envelope carries no id at all. An
// explicit "id": null still counts as a request and is answered with a
// null id.
func (r *Request) IsNotification() bool {
	return len(r.ID) == 0
}

// Response is an outgoing envelope. Exactly one of Result and Error is
// set; the id field is always emitted, null when the request id was null.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is the error member of a response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// NewResult builds a success response echoing id.
func NewResult(id json.RawMessage, result any) *Response {
	return &Response{JSONRPC: Version, ID: id, Result: result}
}

// NewError builds an error response echoing id. data may be nil.
func NewError(id json.RawMessage, code int, message string, data any) *Response {
	return &Response{
		JSONRPC: Version,
		ID:      id,
		Error:   &Error{Code: code, Message: message, Data: data},
	}
}
