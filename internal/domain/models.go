package domain

import "fmt"

// Phase is the discriminator of the per-player game state machine.
type Phase string

const (
	PhaseNotStarted       Phase = "not_started"
	PhaseAwaitingAnswer   Phase = "awaiting_answer"
	PhaseAwaitingContinue Phase = "awaiting_continue"
	PhaseEnded            Phase = "ended"
)

// Question is a single prompt in a deck. Immutable once fetched.
type Question struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Deck is the full set of questions for one session plus their level
// partitioning. Within a level, IDs are in shuffled play order.
type Deck struct {
	Lookup map[string]Question `json:"lookup"`
	Levels [][]string          `json:"levels"`
}

// Validate checks the deck invariants: non-empty levels, non-empty tiers,
// and no ID referenced in Levels without a Lookup entry.
func (d Deck) Validate() error {
	if len(d.Levels) == 0 {
		return fmt.Errorf("deck has no levels")
	}
	for i, level := range d.Levels {
		if len(level) == 0 {
			return fmt.Errorf("deck level %d is empty", i)
		}
		for _, id := range level {
			if _, ok := d.Lookup[id]; !ok {
				return fmt.Errorf("deck level %d references unknown question %q", i, id)
			}
		}
	}
	return nil
}

// QuestionCount returns the total number of playable questions.
func (d Deck) QuestionCount() int {
	n := 0
	for _, level := range d.Levels {
		n += len(level)
	}
	return n
}

// AnswerRecord captures one answered question. Append-only; order is
// answer order.
type AnswerRecord struct {
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

// SessionState is the single mutable aggregate for a player's game. It is
// loaded from the store at the start of every turn and saved back after
// every mutation; nothing is carried across turns in process memory.
type SessionState struct {
	DeckSourceURL          string         `json:"deckSourceUrl"`
	Deck                   Deck           `json:"deck"`
	Phase                  Phase          `json:"phase"`
	CurrentLevel           int            `json:"currentLevel"`
	CurrentQuestionInLevel int            `json:"currentQuestionInLevel"`
	CurrentQuestionID      string         `json:"currentQuestionId"`
	Answers                []AnswerRecord `json:"answers"`
}

// NewSessionState builds a well-formed session over a validated deck with
// the cursor on the first question of the first level. It is the only way
// a session comes into existence.
func NewSessionState(sourceURL string, deck Deck) (SessionState, error) {
	if err := deck.Validate(); err != nil {
		return SessionState{}, err
	}
	return SessionState{
		DeckSourceURL:     sourceURL,
		Deck:              deck,
		Phase:             PhaseAwaitingAnswer,
		CurrentQuestionID: deck.Levels[0][0],
		Answers:           []AnswerRecord{},
	}, nil
}

// CurrentQuestion resolves the cursor against the deck.
func (s SessionState) CurrentQuestion() (Question, bool) {
	q, ok := s.Deck.Lookup[s.CurrentQuestionID]
	return q, ok
}

// RecordAnswer appends a record for the current question and moves the
// session to the keep-playing prompt. Valid only while awaiting an answer.
func (s *SessionState) RecordAnswer(text string) error {
	if s.Phase != PhaseAwaitingAnswer {
		return ErrInvalidTransition
	}
	s.Answers = append(s.Answers, AnswerRecord{QuestionID: s.CurrentQuestionID, Answer: text})
	s.Phase = PhaseAwaitingContinue
	return nil
}

// Advance moves the cursor to the next question, finishing the current
// level before starting the next. When the deck is exhausted the session
// transitions to ended and false is returned.
func (s *SessionState) Advance() bool {
	s.CurrentQuestionInLevel++
	if s.CurrentQuestionInLevel >= len(s.Deck.Levels[s.CurrentLevel]) {
		s.CurrentQuestionInLevel = 0
		s.CurrentLevel++
	}
	if s.CurrentLevel >= len(s.Deck.Levels) {
		s.Phase = PhaseEnded
		s.CurrentQuestionID = ""
		return false
	}
	s.CurrentQuestionID = s.Deck.Levels[s.CurrentLevel][s.CurrentQuestionInLevel]
	s.Phase = PhaseAwaitingAnswer
	return true
}

// End marks the session terminal without advancing the cursor.
func (s *SessionState) End() {
	s.Phase = PhaseEnded
}

// Clone returns a deep copy so callers can mutate freely without aliasing
// store-held state.
func (s SessionState) Clone() SessionState {
	out := s
	out.Answers = append([]AnswerRecord(nil), s.Answers...)
	out.Deck.Lookup = make(map[string]Question, len(s.Deck.Lookup))
	for id, q := range s.Deck.Lookup {
		out.Deck.Lookup[id] = q
	}
	out.Deck.Levels = make([][]string, len(s.Deck.Levels))
	for i, level := range s.Deck.Levels {
		out.Deck.Levels[i] = append([]string(nil), level...)
	}
	return out
}
