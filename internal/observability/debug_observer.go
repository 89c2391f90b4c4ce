// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"fmt"
	"strings"
	"time"
)

// DebugObserver traces individual engine steps, one line per event.
// Steps nest; the indent tracks the open step depth.
type DebugObserver struct {
	*StandardObserver
	indent int
}

// StartStep opens a traced step and returns its closer. Pattern attempts
// and parser phases report through this.
func (d *DebugObserver) StartStep(component, step, document string) func(success bool, details string) {
	start := time.Now()
	fmt.Fprintf(d.writer, "%s> %s: %s (%s)\n", d.pad(), component, step, document)
	d.indent++

	return func(success bool, details string) {
		d.indent--
		outcome := "ok"
		if !success {
			outcome = "miss"
		}
		fmt.Fprintf(d.writer, "%s< %s: %s %s (%dms) %s\n",
			d.pad(), component, step, outcome, time.Since(start).Milliseconds(), details)
	}
}

// LogDetail records a note inside the current step.
func (d *DebugObserver) LogDetail(component, detail string) {
	fmt.Fprintf(d.writer, "%s  %s: %s\n", d.pad(), component, detail)
}

func (d *DebugObserver) pad() string {
	return strings.Repeat("  ", d.indent)
}
