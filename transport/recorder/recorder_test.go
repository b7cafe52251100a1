package recorder

import "testing"

func TestInMemoryNoneLevelDiscardsEverything(t *testing.T) {
	r := NewInMemory(LevelNone)
	r.RecordStep(State{Kinetic: 1})
	r.RecordEvent(EventRecord{Kind: EventDEL})
	if len(r.Steps) != 0 || len(r.Events) != 0 {
		t.Fatalf("LevelNone should discard everything, got %d steps, %d events", len(r.Steps), len(r.Events))
	}
}

func TestInMemoryEndpointsLevelRecordsStepsNotEvents(t *testing.T) {
	r := NewInMemory(LevelEndpoints)
	r.RecordStep(State{Kinetic: 1})
	r.RecordEvent(EventRecord{Kind: EventDEL})
	if len(r.Steps) != 1 {
		t.Fatalf("expected 1 recorded step, got %d", len(r.Steps))
	}
	if len(r.Events) != 0 {
		t.Fatalf("LevelEndpoints should not record events, got %d", len(r.Events))
	}
}

func TestInMemoryEventsLevelRecordsBoth(t *testing.T) {
	r := NewInMemory(LevelEvents)
	r.RecordStep(State{Kinetic: 1})
	r.RecordEvent(EventRecord{Kind: EventHardCoulomb})
	if len(r.Steps) != 1 || len(r.Events) != 1 {
		t.Fatalf("expected 1 step and 1 event, got %d/%d", len(r.Steps), len(r.Events))
	}
}

func TestNoopNeverPanics(t *testing.T) {
	var n Noop
	n.RecordStep(State{})
	n.RecordEvent(EventRecord{})
	if n.Level() != LevelNone {
		t.Errorf("Noop.Level() = %v, want LevelNone", n.Level())
	}
}
