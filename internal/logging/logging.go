// Package logging wires the driver's structured diagnostics through
// logrus, the way open-policy-agent/opa's plugin subsystem and moby/moby tag
// every log line with the subsystem it came from.
package logging

import "github.com/sirupsen/logrus"

// Stage names used as the "stage" field, one per §2 pipeline component.
const (
	StageParse  = "parse"
	StageIR     = "ir"
	StageCodegen = "codegen"
	StageDriver = "driver"
)

// ForModule returns a logger entry tagged with the module being compiled,
// mirroring opa/plugins/logs's per-plugin field tagging.
func ForModule(moduleName string) *logrus.Entry {
	return logrus.WithField("module", moduleName)
}

// ForStage narrows an existing entry to one pipeline stage.
func ForStage(entry *logrus.Entry, stage string) *logrus.Entry {
	return entry.WithField("stage", stage)
}

// New builds a logger for a module/stage pair directly.
func New(moduleName, stage string) *logrus.Entry {
	return ForStage(ForModule(moduleName), stage)
}
