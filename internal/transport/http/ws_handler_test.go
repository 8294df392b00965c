package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"timer-trivia-service/internal/app"
	"timer-trivia-service/internal/domain"
	"timer-trivia-service/internal/infra/memory"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	players := memory.NewPlayerStore()
	catalogs := memory.NewCatalogRepository(memory.NewStaticCatalogLoader(sampleCatalog()), time.Minute)
	draws := memory.NewDrawLog(time.Hour)
	service := app.NewQuizService(players, catalogs, draws, app.Options{
		Checkpoints:  []int{1},
		DrawQuestion: 1,
	})
	wsHandler := NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	return httptest.NewServer(mux)
}

func TestWebSocketAnswerFlow(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?name=Alice&league=MZ"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readUntil(conn, t, "registered")
	q := readUntil(conn, t, "question")
	if q["prompt"] == "" {
		t.Fatalf("expected question prompt, got %v", q)
	}
	if _, leaked := q["answerIndex"]; leaked {
		t.Fatalf("question frame must not carry the answer index: %v", q)
	}

	if err := conn.WriteJSON(map[string]any{
		"type":    "answer",
		"payload": map[string]any{"choice": 1},
	}); err != nil {
		t.Fatalf("write answer: %v", err)
	}
	result := readUntil(conn, t, "result")
	if correct, _ := result["correct"].(bool); !correct {
		t.Fatalf("expected correct answer, got %v", result)
	}
	if awarded, _ := result["awarded"].(float64); awarded != 600 {
		t.Fatalf("expected instant-answer max 600, got %v", result["awarded"])
	}

	// Question 1 is the configured checkpoint and draw trigger.
	if err := conn.WriteJSON(map[string]any{"type": "next"}); err != nil {
		t.Fatalf("write next: %v", err)
	}
	cp := readUntil(conn, t, "checkpoint")
	if avail, _ := cp["drawAvailable"].(bool); !avail {
		t.Fatalf("expected draw available at checkpoint, got %v", cp)
	}

	if err := conn.WriteJSON(map[string]any{"type": "draw"}); err != nil {
		t.Fatalf("write draw: %v", err)
	}
	winner := readUntil(conn, t, "winner")
	if eligible, _ := winner["eligible"].(bool); !eligible {
		t.Fatalf("expected an eligible winner, got %v", winner)
	}

	if err := conn.WriteJSON(map[string]any{"type": "next"}); err != nil {
		t.Fatalf("write next: %v", err)
	}
	finished := readUntil(conn, t, "finished")
	if finished == nil {
		t.Fatalf("expected finished payload")
	}
}

func TestWebSocketRejectsBlankChoice(t *testing.T) {
	server := newTestServer(t)
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?name=Bob"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	readUntil(conn, t, "question")
	if err := conn.WriteJSON(map[string]any{"type": "answer", "payload": map[string]any{}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	errFrame := readUntil(conn, t, "error")
	if errFrame["message"] != "no choice selected" {
		t.Fatalf("expected no-choice error, got %v", errFrame)
	}
}

// readUntil reads frames until one of the wanted type arrives, skipping
// interleaved leaderboard pushes.
func readUntil(conn *websocket.Conn, t *testing.T, want string) map[string]any {
	t.Helper()
	for i := 0; i < 10; i++ {
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read json: %v", err)
		}
		if msg.Type == want {
			return msg.Payload
		}
	}
	t.Fatalf("no %s frame within 10 messages", want)
	return nil
}

func sampleCatalog() domain.Catalog {
	return domain.Catalog{Questions: []domain.Question{
		{
			ID:          1,
			Title:       "Q1",
			Prompt:      "What is 2 + 2?",
			Choices:     []string{"3", "4", "5"},
			AnswerIndex: 1,
			MaxPoints:   600,
			MinPoints:   120,
		},
	}}
}
