// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package observability provides the timing and tracing hooks the engine
// and parsers report through. Everything is opt-in; a nil observer is
// silent and costs nothing.
package observability

import (
	"encoding/json"
	"io"
	"time"
)

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

// StandardObserver collects operation timings. At debug level it also
// carries a DebugObserver for step traces.
type StandardObserver struct {
	level         ObservabilityLevel
	writer        io.Writer
	DebugObserver *DebugObserver
}

// NewStandardObserver builds an observer writing to writer at the given
// level.
func NewStandardObserver(level ObservabilityLevel, writer io.Writer) *StandardObserver {
	o := &StandardObserver{
		level:  level,
		writer: writer,
	}
	if level == ObservabilityDebug {
		o.DebugObserver = &DebugObserver{StandardObserver: o}
	}
	return o
}

// OperationData describes one timed engine or parser operation.
type OperationData struct {
	Component  string                 `json:"component"`
	Operation  string                 `json:"operation"`
	Document   string                 `json:"document,omitempty"`
	DurationMs int64                  `json:"duration_ms,omitempty"`
	Success    bool                   `json:"success"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// StartTiming starts a timed operation and returns its completion
// function.
func (o *StandardObserver) StartTiming(component, operation, document string) func(success bool, metadata map[string]interface{}) {
	start := time.Now()
	return func(success bool, metadata map[string]interface{}) {
		o.LogOperation(OperationData{
			Component:  component,
			Operation:  operation,
			Document:   document,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		})
	}
}

// LogOperation emits one operation record as a JSON line. Metrics level
// emits only failed operations; debug level emits everything.
func (o *StandardObserver) LogOperation(data OperationData) {
	switch {
	case o.level >= ObservabilityDebug:
	case o.level == ObservabilityMetrics && !data.Success:
	default:
		return
	}
	_ = json.NewEncoder(o.writer).Encode(data)
}
