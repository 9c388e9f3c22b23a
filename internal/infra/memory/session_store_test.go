package memory

import (
	"context"
	"testing"

	"deck-game-service/internal/domain"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	if _, ok, err := store.Load(ctx, "p1"); err != nil || ok {
		t.Fatalf("expected absent session, got ok=%v err=%v", ok, err)
	}

	state := sampleState(t)
	if err := store.Save(ctx, "p1", state); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, ok, err := store.Load(ctx, "p1")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if loaded.Phase != state.Phase || loaded.CurrentQuestionID != state.CurrentQuestionID {
		t.Fatalf("round trip mismatch: %+v vs %+v", loaded, state)
	}
	if len(loaded.Answers) != len(state.Answers) {
		t.Fatalf("answers lost in round trip")
	}
}

func TestSessionStoreDoesNotAliasCallerState(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	state := sampleState(t)
	if err := store.Save(ctx, "p1", state); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Mutating either the saved-from or loaded copy must not leak into the store.
	state.Answers[0].Answer = "tampered"
	loaded, _, _ := store.Load(ctx, "p1")
	loaded.Answers[0].Answer = "also tampered"

	fresh, _, _ := store.Load(ctx, "p1")
	if fresh.Answers[0].Answer != "blue" {
		t.Fatalf("store state was aliased: %+v", fresh.Answers)
	}
}

func sampleState(t *testing.T) domain.SessionState {
	t.Helper()
	state, err := domain.NewSessionState("http://deck/shuffle?s=1", domain.Deck{
		Lookup: map[string]domain.Question{
			"q1": {ID: "q1", Text: "Favorite color?"},
			"q2": {ID: "q2", Text: "Favorite food?"},
		},
		Levels: [][]string{{"q1", "q2"}},
	})
	if err != nil {
		t.Fatalf("new state: %v", err)
	}
	if err := state.RecordAnswer("blue"); err != nil {
		t.Fatalf("record answer: %v", err)
	}
	return state
}
