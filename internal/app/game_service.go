package app

import (
	"context"
	"errors"
	"log"

	"deck-game-service/internal/deck"
	"deck-game-service/internal/domain"
)

// SessionStore abstracts durable per-player session persistence
// (in-memory, Redis, Postgres). A successful Save must be visible to the
// next Load for the same player. Load-then-Save is not atomic: two
// overlapping turns for one player race last-write-wins. Turns per player
// are serialized by the voice platform, so this is accepted rather than
// guarded against.
type SessionStore interface {
	Load(ctx context.Context, playerID string) (domain.SessionState, bool, error)
	Save(ctx context.Context, playerID string, state domain.SessionState) error
}

// EventType identifies the resolved voice event driving one turn. Intent
// classification happens upstream; the service only sees these.
type EventType string

const (
	EventLaunch       EventType = "launch"
	EventStart        EventType = "start"
	EventAnswer       EventType = "answer"
	EventContinueYes  EventType = "yes"
	EventContinueNo   EventType = "no"
	EventHelp         EventType = "help"
	EventStop         EventType = "stop"
	EventSessionEnded EventType = "session_ended"
	EventUnknown      EventType = "unknown"
)

// Event is one resolved turn input plus its slot value, if any.
type Event struct {
	Type   EventType
	Answer string
}

// Reply is what a turn hands back to the response renderer.
type Reply struct {
	Prompt     string
	Reprompt   string
	EndSession bool
}

// Spoken prompt copy.
const (
	promptWelcome     = "Welcome, you can say play the main deck, or help. Which would you like to try?"
	promptHelp        = "Say play the main deck to start a game. I will read you a question, listen to your answer, and then ask if you want to keep playing."
	promptStartPrefix = "You are playing the main deck! "
	promptKeepPlaying = "Do you want to keep playing?"
	promptComeBack    = "Okay, come back later anytime!"
	promptGoodbye     = "Goodbye!"
	promptDeckDone    = "That was the last question. Thanks for playing!"
	promptNoSession   = "You haven't started a game yet. Say play the main deck to begin."
	promptFallback    = "Sorry, I don't know about that. Please try again."
	promptDeckTrouble = "Sorry, I couldn't get a fresh deck right now. Please try again."
	promptSaveTrouble = "Sorry, I had trouble doing what you asked. Please try again."
)

// GameService is the turn state machine. Every turn loads the persisted
// session, applies at most one transition, and saves the result; it never
// caches state across turns since consecutive turns may run on different
// instances.
type GameService struct {
	store SessionStore
	decks deck.Fetcher
}

func NewGameService(store SessionStore, decks deck.Fetcher) *GameService {
	return &GameService{store: store, decks: decks}
}

// HandleEvent applies one event for one player and always produces a
// reply; faults are rendered as prompts rather than escaping to the
// transport. A bad turn for one player must never take down another's.
func (s *GameService) HandleEvent(ctx context.Context, playerID string, ev Event) Reply {
	switch ev.Type {
	case EventLaunch:
		return Reply{Prompt: promptWelcome, Reprompt: promptWelcome}
	case EventHelp:
		return Reply{Prompt: promptHelp, Reprompt: promptHelp}
	case EventStop:
		return Reply{Prompt: promptGoodbye, EndSession: true}
	case EventSessionEnded:
		log.Printf("voice session ended for player %s", playerID)
		return Reply{EndSession: true}
	case EventStart:
		reply, err := s.Start(ctx, playerID)
		return s.render(playerID, reply, err)
	case EventAnswer:
		reply, err := s.Answer(ctx, playerID, ev.Answer)
		return s.render(playerID, reply, err)
	case EventContinueYes:
		reply, err := s.Continue(ctx, playerID, true)
		return s.render(playerID, reply, err)
	case EventContinueNo:
		reply, err := s.Continue(ctx, playerID, false)
		return s.render(playerID, reply, err)
	default:
		return Reply{Prompt: promptFallback, Reprompt: promptFallback}
	}
}

// Start fetches a fresh deck and replaces any prior session outright.
// Accepted from any phase; restart semantics are unconditional.
func (s *GameService) Start(ctx context.Context, playerID string) (Reply, error) {
	d, sourceURL, err := s.decks.FetchDeck(ctx)
	if err != nil {
		return Reply{}, err
	}

	state, err := domain.NewSessionState(sourceURL, d)
	if err != nil {
		return Reply{}, &domain.DeckFetchError{URL: sourceURL, Err: err}
	}

	if err := s.store.Save(ctx, playerID, state); err != nil {
		return Reply{}, err
	}

	question, _ := state.CurrentQuestion()
	prompt := promptStartPrefix + question.Text
	return Reply{Prompt: prompt, Reprompt: prompt}, nil
}

// Answer records the player's answer to the current question and asks
// whether to keep playing.
func (s *GameService) Answer(ctx context.Context, playerID, text string) (Reply, error) {
	state, ok, err := s.store.Load(ctx, playerID)
	if err != nil {
		return Reply{}, err
	}
	if !ok {
		return Reply{}, domain.ErrSessionNotFound
	}

	if err := state.RecordAnswer(text); err != nil {
		return s.guidance(state), err
	}

	if err := s.store.Save(ctx, playerID, state); err != nil {
		return Reply{}, err
	}
	return Reply{Prompt: promptKeepPlaying, Reprompt: promptKeepPlaying}, nil
}

// Continue resolves the keep-playing question. Yes advances the cursor
// (ending the session when the deck is exhausted); no ends the session
// without advancing. The two are distinct events on purpose: declining
// must be reachable.
func (s *GameService) Continue(ctx context.Context, playerID string, yes bool) (Reply, error) {
	state, ok, err := s.store.Load(ctx, playerID)
	if err != nil {
		return Reply{}, err
	}
	if !ok {
		return Reply{}, domain.ErrSessionNotFound
	}
	if state.Phase != domain.PhaseAwaitingContinue {
		return s.guidance(state), domain.ErrInvalidTransition
	}

	if !yes {
		state.End()
		if err := s.store.Save(ctx, playerID, state); err != nil {
			return Reply{}, err
		}
		return Reply{Prompt: promptComeBack, EndSession: true}, nil
	}

	if !state.Advance() {
		if err := s.store.Save(ctx, playerID, state); err != nil {
			return Reply{}, err
		}
		return Reply{Prompt: promptDeckDone, EndSession: true}, nil
	}

	if err := s.store.Save(ctx, playerID, state); err != nil {
		return Reply{}, err
	}
	question, _ := state.CurrentQuestion()
	return Reply{Prompt: question.Text, Reprompt: question.Text}, nil
}

// guidance re-prompts whatever the session is actually waiting for. State
// is never mutated on an out-of-phase event.
func (s *GameService) guidance(state domain.SessionState) Reply {
	switch state.Phase {
	case domain.PhaseAwaitingAnswer:
		if question, ok := state.CurrentQuestion(); ok {
			return Reply{Prompt: question.Text, Reprompt: question.Text}
		}
	case domain.PhaseAwaitingContinue:
		return Reply{Prompt: promptKeepPlaying, Reprompt: promptKeepPlaying}
	}
	return Reply{Prompt: promptNoSession, Reprompt: promptNoSession}
}

// render maps transition errors onto user-facing prompts. Every fault is
// recoverable at the turn boundary.
func (s *GameService) render(playerID string, reply Reply, err error) Reply {
	if err == nil {
		return reply
	}

	var fetchErr *domain.DeckFetchError
	var storeErr *domain.PersistenceError
	switch {
	case errors.As(err, &fetchErr):
		log.Printf("deck fetch failed for player %s: %v", playerID, err)
		return Reply{Prompt: promptDeckTrouble, Reprompt: promptDeckTrouble}
	case errors.As(err, &storeErr):
		log.Printf("persistence failed for player %s: %v", playerID, err)
		return Reply{Prompt: promptSaveTrouble, Reprompt: promptSaveTrouble}
	case errors.Is(err, domain.ErrSessionNotFound):
		return Reply{Prompt: promptNoSession, Reprompt: promptNoSession}
	case errors.Is(err, domain.ErrInvalidTransition):
		// guidance reply was already built against the loaded state
		if reply.Prompt != "" {
			return reply
		}
		return Reply{Prompt: promptFallback, Reprompt: promptFallback}
	default:
		log.Printf("turn failed for player %s: %v", playerID, err)
		return Reply{Prompt: promptSaveTrouble, Reprompt: promptSaveTrouble}
	}
}
