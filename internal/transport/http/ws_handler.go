package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"timer-trivia-service/internal/app"
	"timer-trivia-service/internal/domain"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
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
	Choice *int `json:"choice"`
}

type leaguePayload struct {
	League string `json:"league"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type registeredPayload struct {
	Player         domain.PlayerRecord `json:"player"`
	TotalQuestions int                 `json:"totalQuestions"`
}

// questionView is the client-facing question: the answer index and the
// explanation stay server-side until the result frame.
type questionView struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Prompt   string   `json:"prompt"`
	Choices  []string `json:"choices"`
	ImageURL string   `json:"imageUrl,omitempty"`
}

type checkpointPayload struct {
	At            int                `json:"at"`
	DrawAvailable bool               `json:"drawAvailable"`
	Leaderboard   domain.Leaderboard `json:"leaderboard"`
}

type drawPayload struct {
	Eligible bool              `json:"eligible"`
	Reused   bool              `json:"reused"`
	Winner   domain.DrawRecord `json:"winner,omitempty"`
}

func viewOf(q domain.Question) questionView {
	return questionView{
		ID:       q.ID,
		Title:    q.Title,
		Prompt:   q.Prompt,
		Choices:  q.Choices,
		ImageURL: q.ImageURL,
	}
}

// ServeWS upgrades the request and drives one participant session: register,
// question/answer/advance loop, checkpoints, and the lucky draw.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	league := r.URL.Query().Get("league")
	if name == "" {
		http.Error(w, "missing name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	player, err := h.service.Register(ctx, name, league)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	updates, cancel, err := h.service.Subscribe(ctx)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "leaderboard", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	total, err := h.service.QuestionCount(ctx)
	if err != nil {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
	}
	send <- outboundMessage[any]{Type: "registered", Payload: registeredPayload{Player: player, TotalQuestions: total}}

	if q, err := h.service.StartQuestion(ctx, player.PlayerID); err == nil {
		send <- outboundMessage[any]{Type: "question", Payload: viewOf(q)}
	} else if player.CurrentQ >= total {
		// A resumed player who already finished goes straight to the results.
		if lb, lbErr := h.service.Leaderboard(ctx, ""); lbErr == nil {
			send <- outboundMessage[any]{Type: "finished", Payload: lb}
		}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Choice == nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "no choice selected"}}
				continue
			}
			result, err := h.service.SubmitAnswer(ctx, player.PlayerID, *payload.Choice)
			if err != nil && !errors.Is(err, domain.ErrStoreUnavailable) {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "result", Payload: result}
		case "next":
			outcome, err := h.service.Advance(ctx, player.PlayerID)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			switch {
			case outcome.Checkpoint:
				send <- outboundMessage[any]{Type: "checkpoint", Payload: checkpointPayload{
					At:            outcome.CheckpointAt,
					DrawAvailable: outcome.DrawAvailable,
					Leaderboard:   outcome.Leaderboard,
				}}
			case outcome.Finished:
				send <- outboundMessage[any]{Type: "finished", Payload: outcome.Leaderboard}
			default:
				if q, err := h.service.StartQuestion(ctx, player.PlayerID); err == nil {
					send <- outboundMessage[any]{Type: "question", Payload: viewOf(q)}
				}
			}
		case "draw":
			var payload leaguePayload
			if len(inbound.Payload) > 0 {
				_ = json.Unmarshal(inbound.Payload, &payload)
			}
			winner, fresh, err := h.service.RunLuckyDraw(ctx, payload.League)
			if errors.Is(err, domain.ErrNoEligibleParticipants) {
				send <- outboundMessage[any]{Type: "winner", Payload: drawPayload{Eligible: false}}
				continue
			}
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "winner", Payload: drawPayload{Eligible: true, Reused: !fresh, Winner: winner}}
		case "leaderboard":
			var payload leaguePayload
			if len(inbound.Payload) > 0 {
				_ = json.Unmarshal(inbound.Payload, &payload)
			}
			lb, err := h.service.Leaderboard(ctx, payload.League)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "leaderboard", Payload: lb}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}
