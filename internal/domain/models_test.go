package domain

import "testing"

func TestDeckValidate(t *testing.T) {
	if err := sampleDeck().Validate(); err != nil {
		t.Fatalf("valid deck rejected: %v", err)
	}

	empty := Deck{Lookup: map[string]Question{}}
	if err := empty.Validate(); err == nil {
		t.Fatalf("expected error for deck with no levels")
	}

	hollow := Deck{
		Lookup: map[string]Question{"q1": {ID: "q1", Text: "?"}},
		Levels: [][]string{{}},
	}
	if err := hollow.Validate(); err == nil {
		t.Fatalf("expected error for empty level")
	}

	dangling := Deck{
		Lookup: map[string]Question{"q1": {ID: "q1", Text: "?"}},
		Levels: [][]string{{"q1", "q-missing"}},
	}
	if err := dangling.Validate(); err == nil {
		t.Fatalf("expected error for dangling question id")
	}
}

func TestNewSessionStateStartsAtFirstQuestion(t *testing.T) {
	state, err := NewSessionState("http://deck/shuffle?s=1", sampleDeck())
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if state.Phase != PhaseAwaitingAnswer {
		t.Fatalf("expected awaiting_answer, got %s", state.Phase)
	}
	if state.CurrentQuestionID != "q1" {
		t.Fatalf("expected cursor on q1, got %s", state.CurrentQuestionID)
	}
	if len(state.Answers) != 0 {
		t.Fatalf("expected no answers yet, got %d", len(state.Answers))
	}

	if _, err := NewSessionState("http://deck", Deck{}); err == nil {
		t.Fatalf("expected invalid deck to be rejected")
	}
}

// Traversal must visit every question exactly once, level by level, before
// the session ends.
func TestAdvanceVisitsEveryQuestionOnceInLevelOrder(t *testing.T) {
	state, err := NewSessionState("http://deck", sampleDeck())
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	visited := []string{state.CurrentQuestionID}
	for state.Advance() {
		visited = append(visited, state.CurrentQuestionID)
	}

	want := []string{"q1", "q2", "q3", "q4", "q5"}
	if len(visited) != len(want) {
		t.Fatalf("expected %d questions, visited %d: %v", len(want), len(visited), visited)
	}
	for i, id := range want {
		if visited[i] != id {
			t.Fatalf("expected %s at position %d, got %s (full order %v)", id, i, visited[i], visited)
		}
	}
	if state.Phase != PhaseEnded {
		t.Fatalf("expected ended after exhaustion, got %s", state.Phase)
	}
}

func TestRecordAnswerPhaseGuard(t *testing.T) {
	state, err := NewSessionState("http://deck", sampleDeck())
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	if err := state.RecordAnswer("blue"); err != nil {
		t.Fatalf("record answer: %v", err)
	}
	if state.Phase != PhaseAwaitingContinue {
		t.Fatalf("expected awaiting_continue, got %s", state.Phase)
	}
	if len(state.Answers) != 1 || state.Answers[0].QuestionID != "q1" || state.Answers[0].Answer != "blue" {
		t.Fatalf("unexpected answers: %+v", state.Answers)
	}

	// A second answer in the same phase must not mutate anything.
	if err := state.RecordAnswer("green"); err != ErrInvalidTransition {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if len(state.Answers) != 1 {
		t.Fatalf("expected answers unchanged, got %d", len(state.Answers))
	}
}

func TestCloneIsolation(t *testing.T) {
	state, err := NewSessionState("http://deck", sampleDeck())
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	_ = state.RecordAnswer("blue")

	clone := state.Clone()
	clone.Answers[0].Answer = "red"
	clone.Deck.Levels[0][0] = "tampered"
	clone.Deck.Lookup["q1"] = Question{ID: "q1", Text: "tampered"}

	if state.Answers[0].Answer != "blue" {
		t.Fatalf("clone aliased answers: %+v", state.Answers)
	}
	if state.Deck.Levels[0][0] != "q1" {
		t.Fatalf("clone aliased levels: %v", state.Deck.Levels)
	}
	if state.Deck.Lookup["q1"].Text == "tampered" {
		t.Fatalf("clone aliased lookup")
	}
}

func sampleDeck() Deck {
	return Deck{
		Lookup: map[string]Question{
			"q1": {ID: "q1", Text: "Favorite color?"},
			"q2": {ID: "q2", Text: "Favorite food?"},
			"q3": {ID: "q3", Text: "What scares you?"},
			"q4": {ID: "q4", Text: "Proudest moment?"},
			"q5": {ID: "q5", Text: "What do you regret?"},
		},
		Levels: [][]string{
			{"q1", "q2"},
			{"q3", "q4", "q5"},
		},
	}
}
