package game

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

type CharacterSummary struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Personality Personality `json:"personality"`
	Zodiac      Zodiac      `json:"zodiac"`
	Stats       Stats       `json:"stats"`
	Activity    Activity    `json:"activity"`
}

type RelationSummary struct {
	Key      string `json:"key"`
	Stage    Stage  `json:"stage"`
	Preset   Preset `json:"preset"`
	Affinity int    `json:"affinity"`
	Trust    int    `json:"trust"`
	Tension  int    `json:"tension"`
	Romance  int    `json:"romance"`
}

type NarrationRequest struct {
	Endpoint    string             `json:"-"`
	PeriodIndex int                `json:"period_index"`
	Money       int                `json:"money"`
	Characters  []CharacterSummary `json:"characters"`
	Relations   []RelationSummary  `json:"relations"`
}

// NarratedCard is the card-shaped reply of a narration collaborator.
type NarratedCard struct {
	Title     string         `json:"title"`
	Narration string         `json:"narration"`
	Dialogues []Dialogue     `json:"dialogues"`
	Choices   []Choice       `json:"choices"`
	Meta      map[string]any `json:"meta"`
}

type Narrator interface {
	Narrate(ctx context.Context, req NarrationRequest) (NarratedCard, error)
}

const maxNarratedDialogues = 6

var ErrInvalidNarration = errors.New("invalid narration response")

func ValidateNarratedCard(card NarratedCard) error {
	if strings.TrimSpace(card.Title) == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidNarration)
	}
	if strings.TrimSpace(card.Narration) == "" {
		return fmt.Errorf("%w: missing narration", ErrInvalidNarration)
	}
	if len(card.Dialogues) > maxNarratedDialogues {
		return fmt.Errorf("%w: %d dialogue lines", ErrInvalidNarration, len(card.Dialogues))
	}
	for _, d := range card.Dialogues {
		if strings.TrimSpace(d.Speaker) == "" || strings.TrimSpace(d.Line) == "" {
			return fmt.Errorf("%w: empty dialogue line", ErrInvalidNarration)
		}
	}
	if len(card.Choices) != 3 {
		return fmt.Errorf("%w: %d choices", ErrInvalidNarration, len(card.Choices))
	}
	seen := map[ChoiceTag]bool{}
	for _, ch := range card.Choices {
		switch ch.Tag {
		case ChoiceA, ChoiceB, ChoiceC:
		default:
			return fmt.Errorf("%w: choice tag %q", ErrInvalidNarration, ch.Tag)
		}
		if seen[ch.Tag] {
			return fmt.Errorf("%w: duplicate choice tag %q", ErrInvalidNarration, ch.Tag)
		}
		seen[ch.Tag] = true
		if strings.TrimSpace(ch.Label) == "" {
			return fmt.Errorf("%w: empty choice label", ErrInvalidNarration)
		}
	}
	return nil
}

func BuildNarrationRequest(s *State, selections map[string]Activity) NarrationRequest {
	req := NarrationRequest{
		Endpoint:    s.Settings.Endpoint,
		PeriodIndex: s.PeriodIndex,
		Money:       s.Money,
	}
	for _, c := range s.Characters {
		req.Characters = append(req.Characters, CharacterSummary{
			ID:          c.ID,
			Name:        c.Name,
			Personality: c.Personality,
			Zodiac:      c.Zodiac,
			Stats:       c.Stats,
			Activity:    selections[c.ID],
		})
	}
	keys := make([]string, 0, len(s.Relations))
	for k := range s.Relations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if len(req.Relations) >= MaxNarratedRelations {
			break
		}
		rel := s.Relations[k]
		req.Relations = append(req.Relations, RelationSummary{
			Key:      k,
			Stage:    rel.Stage,
			Preset:   rel.Preset,
			Affinity: rel.Affinity,
			Trust:    rel.Trust,
			Tension:  rel.Tension,
			Romance:  rel.Romance,
		})
	}
	return req
}
