package checker

import (
	"testing"
)

func TestCoordinatorTriggerAndReset(t *testing.T) {
	coord := NewCoordinator(testLogger())

	if coord.Stopped() {
		t.Error("fresh coordinator should not be stopped")
	}

	coord.Trigger()
	if !coord.Stopped() {
		t.Error("expected stopped after trigger")
	}

	coord.Reset()
	if coord.Stopped() {
		t.Error("expected running after reset")
	}
}

func TestCoordinatorArmClearsPreviousStop(t *testing.T) {
	coord := NewCoordinator(testLogger())
	coord.Trigger()

	disarm := coord.Arm()
	defer disarm()

	if coord.Stopped() {
		t.Error("arming should clear a stop left over from the previous run")
	}
}

func TestCoordinatorDisarmIsIdempotent(t *testing.T) {
	coord := NewCoordinator(testLogger())

	disarm := coord.Arm()
	disarm()
	disarm()
}
