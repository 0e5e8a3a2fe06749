package main

import "github.com/ruchy-lang/ruchy/internal/compiler/telemetry"

func openTelemetry(path string) (*telemetry.Store, error) {
	return telemetry.Open(path)
}
