package narration

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"raisingsim/internal/game"
)

const cardJSON = `{"title":"Late bus","narration":"The bus never came.","dialogues":[{"speaker":"Mina","line":"Walk it is."}],"choices":[{"tag":"A","label":"Walk"},{"tag":"B","label":"Wait"},{"tag":"C","label":"Call a friend"}],"meta":{"mood":"tired"}}`

func sampleRequest(endpoint string) game.NarrationRequest {
	s := game.NewState()
	s.UpdateSettings(game.Settings{NarrationEnabled: true, Endpoint: endpoint})
	return game.BuildNarrationRequest(s, nil)
}

func TestWorkerClientNarrate(t *testing.T) {
	var got game.NarrationRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("got method %s", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, cardJSON)
	}))
	defer srv.Close()

	card, err := NewWorkerClient(time.Second).Narrate(context.Background(), sampleRequest(srv.URL))
	if err != nil {
		t.Fatalf("narrate: %v", err)
	}
	if err := game.ValidateNarratedCard(card); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if card.Title != "Late bus" || len(card.Choices) != 3 {
		t.Fatalf("unexpected card %+v", card)
	}
	if got.Money != game.StartingMoney || len(got.Characters) != 1 {
		t.Fatalf("unexpected request payload %+v", got)
	}
}

func TestWorkerClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := NewWorkerClient(time.Second).Narrate(context.Background(), sampleRequest(srv.URL)); err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("expected status error, got %v", err)
	}
	if _, err := NewWorkerClient(time.Second).Narrate(context.Background(), sampleRequest("")); !errors.Is(err, ErrNoEndpoint) {
		t.Fatalf("got %v want ErrNoEndpoint", err)
	}
}

func TestWorkerClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := NewWorkerClient(time.Minute).Narrate(ctx, sampleRequest(srv.URL)); err == nil {
		t.Fatalf("expected timeout error")
	}
}

func TestChatClientNarrate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("got auth header %q", got)
		}
		content, _ := json.Marshal("```json\n" + cardJSON + "\n```")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":`+string(content)+`},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	card, err := NewChatClient("test-key", "", time.Second).Narrate(context.Background(), sampleRequest(srv.URL+"/v1"))
	if err != nil {
		t.Fatalf("narrate: %v", err)
	}
	if err := game.ValidateNarratedCard(card); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if card.Meta["mood"] != "tired" {
		t.Fatalf("unexpected meta %+v", card.Meta)
	}
}

func TestDecodeCardRejectsGarbage(t *testing.T) {
	if _, err := DecodeCard("not json"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		provider string
		wantNil  bool
		wantErr  bool
	}{
		{"", true, false},
		{"none", true, false},
		{"http", false, false},
		{"OpenAI", false, false},
		{"carrier-pigeon", true, true},
	}
	for _, tc := range tests {
		n, err := New(Options{Provider: tc.provider})
		if (err != nil) != tc.wantErr {
			t.Fatalf("%q: got err %v", tc.provider, err)
		}
		if (n == nil) != tc.wantNil {
			t.Fatalf("%q: got narrator %v", tc.provider, n)
		}
	}
}
