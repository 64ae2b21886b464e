package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"rich-trivia-service/internal/app"
	"rich-trivia-service/internal/auth"
	"rich-trivia-service/internal/domain"
)

// WSHandler runs the game over a websocket: one connection is one player.
type WSHandler struct {
	games    *app.GameService
	auth     *auth.Service
	upgrader websocket.Upgrader
}

func NewWSHandler(games *app.GameService, authService *auth.Service) *WSHandler {
	return &WSHandler{
		games: games,
		auth:  authService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	AnswerID string `json:"answerId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// answerView deliberately omits the correctness flag.
type answerView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type questionView struct {
	Index        int          `json:"index"`
	Total        int          `json:"total"`
	ID           string       `json:"id"`
	Text         string       `json:"text"`
	Level        int          `json:"level"`
	Money        int          `json:"money"`
	Answers      []answerView `json:"answers"`
	CorrectCount int          `json:"correctCount"`
	MoneyWon     int          `json:"moneyWon"`
}

type gameOverView struct {
	Outcome      domain.Outcome `json:"outcome"`
	MoneyWon     int            `json:"moneyWon"`
	CorrectCount int            `json:"correctCount"`
}

// ServeWS upgrades the request and drives one player's game loop:
// question out, answer in, reveal out, then the committed next question or
// the game-over view.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	var identity *domain.UserIdentity
	if token := r.URL.Query().Get("token"); token != "" {
		id, err := h.auth.Verify(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		identity = &id
	}

	playerID := "anon-" + uuid.NewString()
	if identity != nil {
		playerID = identity.UID
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	commits := make(chan app.Snapshot, 4)
	commitsDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	deliver := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-closeSignals:
		}
	}

	// Commits arrive from the reveal timer, outside the read loop. On a
	// terminal commit the stats write is fire-and-forget.
	go func() {
		defer close(commitsDone)
		for {
			select {
			case snap := <-commits:
				if snap.Finished {
					deliver(outboundMessage[any]{Type: "gameOver", Payload: gameOverView{
						Outcome:      snap.Outcome,
						MoneyWon:     snap.MoneyWon,
						CorrectCount: snap.CorrectCount,
					}})
					if identity != nil {
						uid := identity.UID
						summary := snap.Summary()
						go h.games.Stats().RecordResult(context.Background(), uid, summary)
					}
				} else {
					deliver(outboundMessage[any]{Type: "question", Payload: viewFromSnapshot(snap)})
				}
			case <-closeSignals:
				return
			}
		}
	}()

	onCommit := func(snap app.Snapshot) {
		select {
		case commits <- snap:
		case <-closeSignals:
		}
	}

	game, err := h.games.StartGame(r.Context(), onCommit)
	if err != nil {
		deliver(outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		close(closeSignals)
		<-commitsDone
		close(send)
		<-writerDone
		return
	}
	log.Printf("game started for player %s", playerID)

	send <- outboundMessage[any]{Type: "question", Payload: viewFromSnapshot(game.Snapshot())}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			reveal, err := game.Submit(payload.AnswerID)
			if errors.Is(err, domain.ErrAnswerPending) {
				// Duplicate submit during the reveal window is a no-op.
				continue
			}
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "reveal", Payload: reveal}
		case "restart":
			game.Stop()
			next, err := h.games.StartGame(r.Context(), onCommit)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			game = next
			send <- outboundMessage[any]{Type: "question", Payload: viewFromSnapshot(game.Snapshot())}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	game.Stop()
	close(closeSignals)
	<-commitsDone
	close(send)
	<-writerDone
}

func viewFromSnapshot(snap app.Snapshot) questionView {
	answers := make([]answerView, 0, len(snap.Question.Answers))
	for _, a := range snap.Question.Answers {
		answers = append(answers, answerView{ID: a.ID, Text: a.Text})
	}
	return questionView{
		Index:        snap.Index,
		Total:        snap.Total,
		ID:           snap.Question.ID,
		Text:         snap.Question.Text,
		Level:        snap.Question.Level,
		Money:        snap.Question.Money,
		Answers:      answers,
		CorrectCount: snap.CorrectCount,
		MoneyWon:     snap.MoneyWon,
	}
}
