package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"raisingsim/internal/config"
	"raisingsim/internal/game"
	"raisingsim/internal/session"
	"raisingsim/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Driver = store.DriverMemory
	engine := game.NewEngine(game.EngineConfig{TickMonths: 2, Rand: game.NewSeededRand(7)}, nil, nil)
	return New(cfg, nil, engine, session.NewManager(), store.NewMemory())
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

type createResponse struct {
	ID    string     `json:"id"`
	State game.State `json:"state"`
}

func createGame(t *testing.T, s *Server) createResponse {
	t.Helper()
	rec := do(t, s, http.MethodPost, "/v1/games", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", rec.Code, rec.Body.String())
	}
	return decode[createResponse](t, rec)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
}

func TestGameFlow(t *testing.T) {
	s := newTestServer(t)
	created := createGame(t, s)
	if len(created.State.Characters) != 1 || created.State.Money != game.StartingMoney {
		t.Fatalf("unexpected initial state: %+v", created.State)
	}
	base := "/v1/games/" + created.ID
	first := created.State.Characters[0]

	rec := do(t, s, http.MethodPost, base+"/characters", game.CharacterInput{Name: "Mina", Personality: "ENFP", BirthMonth: 4, BirthDay: 2})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d body=%s", rec.Code, rec.Body.String())
	}
	mina := decode[game.Character](t, rec)

	rec = do(t, s, http.MethodPut, base+"/relations/"+first.ID+"/"+mina.ID, map[string]any{"preset": "rivals"})
	if rec.Code != http.StatusOK {
		t.Fatalf("preset status = %d body=%s", rec.Code, rec.Body.String())
	}
	if rel := decode[game.Relationship](t, rec); rel.Preset != game.PresetRivals {
		t.Fatalf("preset = %q", rel.Preset)
	}

	rec = do(t, s, http.MethodPost, base+"/advance", map[string]any{
		"selections": map[string]game.Activity{first.ID: game.ActivityStudy, mina.ID: game.ActivityArt},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("advance status = %d body=%s", rec.Code, rec.Body.String())
	}
	advanced := decode[struct {
		Entries []game.Card `json:"entries"`
		State   game.State  `json:"state"`
	}](t, rec)
	if len(advanced.Entries) == 0 || advanced.State.PeriodIndex != 2 || advanced.State.SetupUnlocked {
		t.Fatalf("unexpected advance result: period=%d entries=%d", advanced.State.PeriodIndex, len(advanced.Entries))
	}

	rec = do(t, s, http.MethodPost, base+"/characters", game.CharacterInput{Name: "Late"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("add after lock status = %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, base+"/cards?pending=1", nil)
	pending := decode[struct {
		Cards []game.Card `json:"cards"`
	}](t, rec)
	if len(pending.Cards) == 0 {
		t.Fatalf("expected pending cards after advance")
	}
	cardID := pending.Cards[0].ID

	rec = do(t, s, http.MethodPost, base+"/cards/"+cardID+"/choice", map[string]any{"tag": "a"})
	resolved := decode[struct {
		Resolved bool        `json:"resolved"`
		Entries  []game.Card `json:"entries"`
	}](t, rec)
	if !resolved.Resolved || len(resolved.Entries) == 0 {
		t.Fatalf("expected first choice to resolve, got %+v", resolved)
	}
	rec = do(t, s, http.MethodPost, base+"/cards/"+cardID+"/choice", map[string]any{"tag": "B"})
	if again := decode[struct {
		Resolved bool `json:"resolved"`
	}](t, rec); again.Resolved {
		t.Fatalf("second choice on the same card should be ignored")
	}

	rec = do(t, s, http.MethodPost, base+"/save", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d body=%s", rec.Code, rec.Body.String())
	}

	other := createGame(t, s)
	rec = do(t, s, http.MethodPost, "/v1/games/"+other.ID+"/load?slot="+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("load status = %d body=%s", rec.Code, rec.Body.String())
	}
	loaded := decode[struct {
		State game.State `json:"state"`
	}](t, rec)
	if loaded.State.PeriodIndex != 2 || len(loaded.State.Characters) != 2 {
		t.Fatalf("loaded state mismatch: period=%d characters=%d", loaded.State.PeriodIndex, len(loaded.State.Characters))
	}

	rec = do(t, s, http.MethodGet, base+"/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") {
		t.Fatalf("content disposition = %q", cd)
	}
	if !strings.Contains(rec.Body.String(), "exported_at") {
		t.Fatalf("export body missing timestamp: %s", rec.Body.String())
	}
}

func TestDomainErrors(t *testing.T) {
	s := newTestServer(t)
	created := createGame(t, s)
	base := "/v1/games/" + created.ID
	only := created.State.Characters[0].ID

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"missing session", http.MethodGet, "/v1/games/nope", nil, http.StatusNotFound},
		{"missing character", http.MethodDelete, base + "/characters/nope", nil, http.StatusNotFound},
		{"last character", http.MethodDelete, base + "/characters/" + only, nil, http.StatusConflict},
		{"same endpoints", http.MethodPut, base + "/relations/" + only + "/" + only, map[string]any{"preset": "family"}, http.StatusBadRequest},
		{"unknown field", http.MethodPost, base + "/characters", map[string]any{"nickname": "x"}, http.StatusBadRequest},
		{"empty slot", http.MethodPost, base + "/load?slot=empty", nil, http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, s, tc.method, tc.path, tc.body)
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d body=%s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestDeleteGame(t *testing.T) {
	s := newTestServer(t)
	created := createGame(t, s)
	if rec := do(t, s, http.MethodDelete, "/v1/games/"+created.ID, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec := do(t, s, http.MethodDelete, "/v1/games/"+created.ID, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", rec.Code)
	}
}
