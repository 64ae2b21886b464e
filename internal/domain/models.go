package domain

// Answer is one selectable option on a question.
type Answer struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"isCorrect"`
}

// Question is a single catalog entry. Level is the difficulty tier the
// question is played at; Money is the payout for answering it correctly.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Level   int      `json:"level"`
	Money   int      `json:"money"`
	Answers []Answer `json:"answers"`
}

// Answer looks up an answer by its ID.
func (q Question) Answer(answerID string) (Answer, bool) {
	for _, a := range q.Answers {
		if a.ID == answerID {
			return a, true
		}
	}
	return Answer{}, false
}

// Outcome is the terminal result of a game session.
type Outcome string

const (
	OutcomeNone Outcome = "none"
	OutcomeWon  Outcome = "won"
	OutcomeLost Outcome = "lost"
)

// UserIdentity is the signed-in user as reported by the auth provider.
type UserIdentity struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
}

// UserStats is the lifetime per-user record. AnsweredCount and MoneyEarned
// only grow by additive deltas after creation.
type UserStats struct {
	UID           string `json:"uid"`
	Email         string `json:"email,omitempty"`
	DisplayName   string `json:"displayName,omitempty"`
	AnsweredCount int    `json:"answeredCount"`
	MoneyEarned   int    `json:"moneyEarned"`
}

// ValidateCatalog rejects questions that break the assumptions the game
// relies on: at least one answer, exactly one of them correct, a level of
// at least 1 and a non-negative payout.
func ValidateCatalog(catalog []Question) error {
	for _, q := range catalog {
		if len(q.Answers) == 0 || q.Level < 1 || q.Money < 0 {
			return ErrInvalidQuestion
		}
		correct := 0
		for _, a := range q.Answers {
			if a.Correct {
				correct++
			}
		}
		if correct != 1 {
			return ErrInvalidQuestion
		}
	}
	return nil
}
