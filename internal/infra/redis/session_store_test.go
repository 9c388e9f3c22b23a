package redis

import (
	"context"
	"testing"
	"time"

	"deck-game-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)
	ctx := context.Background()

	if _, ok, err := store.Load(ctx, "p1"); err != nil || ok {
		t.Fatalf("expected absent session, got ok=%v err=%v", ok, err)
	}

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

	if err := store.Save(ctx, "p1", state); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("game:session:p1") {
		t.Fatalf("expected session key in redis")
	}

	loaded, ok, err := store.Load(ctx, "p1")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if loaded.Phase != domain.PhaseAwaitingContinue || loaded.CurrentQuestionID != "q1" {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
	if len(loaded.Answers) != 1 || loaded.Answers[0].Answer != "blue" {
		t.Fatalf("answers lost in round trip: %+v", loaded.Answers)
	}
	if loaded.DeckSourceURL != state.DeckSourceURL {
		t.Fatalf("deck provenance lost: %q", loaded.DeckSourceURL)
	}
}

func TestSessionStoreAppliesTTL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)
	ctx := context.Background()

	state, err := domain.NewSessionState("http://deck", domain.Deck{
		Lookup: map[string]domain.Question{"q1": {ID: "q1", Text: "?"}},
		Levels: [][]string{{"q1"}},
	})
	if err != nil {
		t.Fatalf("new state: %v", err)
	}
	if err := store.Save(ctx, "p1", state); err != nil {
		t.Fatalf("save: %v", err)
	}

	mr.FastForward(2 * time.Minute)
	if _, ok, err := store.Load(ctx, "p1"); err != nil || ok {
		t.Fatalf("expected expired session to be absent, got ok=%v err=%v", ok, err)
	}
}

func TestSessionStoreSurfacesFailures(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, time.Minute)
	mr.Close()

	state, _ := domain.NewSessionState("http://deck", domain.Deck{
		Lookup: map[string]domain.Question{"q1": {ID: "q1", Text: "?"}},
		Levels: [][]string{{"q1"}},
	})
	if err := store.Save(context.Background(), "p1", state); err == nil {
		t.Fatalf("expected save against closed redis to fail")
	}
}
