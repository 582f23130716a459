package game

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	DefaultTickMonths       = 2
	DefaultNarrationTimeout = 8 * time.Second

	secondPersonalChance = 0.60
	eventHighStress      = 70

	relationEventBase        = 0.08
	relationEventSharedTrust = 0.22
	relationEventAffinity    = 0.18
	relationEventStress      = 0.20
)

type EngineConfig struct {
	TickMonths       int
	NarrationTimeout time.Duration
	Rand             Rand
}

type Engine struct {
	log              *slog.Logger
	mu               sync.Mutex
	rand             Rand
	narrator         Narrator
	tickMonths       int
	narrationTimeout time.Duration
}

func NewEngine(cfg EngineConfig, narrator Narrator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TickMonths != 1 && cfg.TickMonths != 2 {
		cfg.TickMonths = DefaultTickMonths
	}
	if cfg.NarrationTimeout <= 0 {
		cfg.NarrationTimeout = DefaultNarrationTimeout
	}
	r := cfg.Rand
	if r == nil {
		seed, err := NewSeed()
		if err != nil {
			seed = time.Now().UnixNano()
		}
		r = NewSeededRand(seed)
	}
	return &Engine{
		log:              logger,
		rand:             r,
		narrator:         narrator,
		tickMonths:       cfg.TickMonths,
		narrationTimeout: cfg.NarrationTimeout,
	}
}

func (e *Engine) TickMonths() int { return e.tickMonths }

func (e *Engine) Float64() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rand.Float64()
}

func (e *Engine) Intn(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rand.Intn(n)
}

// AdvancePeriod plays one period for every character. selections maps character
// id to activity; characters without a selection rest. Malformed selections and a
// finished game are rejected before anything is mutated.
func (e *Engine) AdvancePeriod(ctx context.Context, s *State, selections map[string]Activity) ([]*Card, error) {
	if s.Finished() {
		return nil, ErrHorizonReached
	}
	for id, a := range selections {
		if s.Character(id) == nil {
			return nil, ErrCharacterNotFound
		}
		if !a.Valid() {
			return nil, ErrUnknownActivity
		}
	}

	period := s.PeriodIndex
	months := PeriodMonths(period, e.tickMonths)
	chosen := make(map[string]Activity, len(s.Characters))
	before := make(map[string]int, len(s.Characters))
	for _, c := range s.Characters {
		a, ok := selections[c.ID]
		if !ok {
			a = ActivityRest
		}
		chosen[c.ID] = a
		before[c.ID] = c.Stats.Growth()
	}

	var entries []*Card
	for _, c := range s.Characters {
		results := make([]ActivityResult, 0, len(months))
		for range months {
			results = append(results, ApplyActivity(s, c, chosen[c.ID], e))
		}
		entries = append(entries, taskCard(e, period, c, chosen[c.ID], results))
	}

	for _, c := range s.Characters {
		if !containsInt(months, c.Birthday.Month) {
			continue
		}
		ApplyBirthday(s, c)
		entries = append(entries, birthdayCard(e, period, c, others(s, c.ID)))
	}

	growth := make(map[string]int, len(s.Characters))
	for _, c := range s.Characters {
		growth[c.ID] = c.Stats.Growth() - before[c.ID]
	}
	entries = append(entries, e.relationPass(s, period, chosen, growth)...)

	for _, c := range s.Characters {
		entries = append(entries, personalCard(e, period, c))
		if chance(e, secondPersonalChance) {
			entries = append(entries, personalCard(e, period, c))
		}
	}

	if containsInt(months, YearEndMonth) {
		entries = append(entries, tournamentCard(period))
	}

	highlight := highlightCard(period)
	e.narrate(ctx, s, chosen, highlight)
	entries = append(entries, highlight)

	s.PeriodIndex = clamp(period+e.tickMonths, 0, HorizonMonths)
	s.SetupUnlocked = false
	s.Log = append(s.Log, entries...)

	e.log.Debug("period advanced", "period_index", s.PeriodIndex, "entries", len(entries), "money", s.Money)
	return entries, nil
}

func (e *Engine) relationPass(s *State, period int, chosen map[string]Activity, growth map[string]int) []*Card {
	s.EnsureRelations()
	var entries []*Card
	for _, from := range s.Characters {
		for _, to := range s.Characters {
			if from.ID == to.ID {
				continue
			}
			rel := s.Relation(from.ID, to.ID)
			shared := chosen[from.ID] == chosen[to.ID]
			Drift(rel, DriftContext{
				SameActivityGroup: shared,
				AnyHighStress:     from.Stats.Stress >= HighStress || to.Stats.Stress >= HighStress,
				IsRivalStage:      rel.Stage == StageRivals,
				IsCrush:           rel.Preset == PresetCrush,
				StatGrowthGap:     abs(growth[from.ID] - growth[to.ID]),
			})
			if ch := EvolveStage(rel, e); ch.Changed {
				entries = append(entries, stageChangeCard(e, period, from, to, ch))
			}

			reverse := s.Relation(to.ID, from.ID)
			p, kind := relationEventOdds(rel, reverse, shared, from, to)
			if !chance(e, p) {
				continue
			}
			if kind == "" {
				kind = pick(e, relationEventKinds)
			}
			entries = append(entries, relationEventCard(e, period, from, to, rel, kind))
		}
	}
	return entries
}

// relationEventOdds picks the highest applicable trigger probability and the
// sub-kind that context implies; an empty kind means none is implied.
func relationEventOdds(rel, reverse *Relationship, shared bool, from, to *Character) (float64, RelationEventKind) {
	p, kind := relationEventBase, RelationEventKind("")
	if shared && rel.Trust >= 30 && relationEventSharedTrust > p {
		p, kind = relationEventSharedTrust, RelationCooperation
	}
	if (from.Stats.Stress >= eventHighStress || to.Stats.Stress >= eventHighStress) && relationEventStress > p {
		p, kind = relationEventStress, RelationArgument
	}
	if reverse != nil && rel.Affinity >= 40 && reverse.Affinity >= 40 && relationEventAffinity > p {
		p, kind = relationEventAffinity, RelationBonding
	}
	return p, kind
}

func (e *Engine) narrate(ctx context.Context, s *State, chosen map[string]Activity, card *Card) {
	if e.narrator == nil || !s.Settings.NarrationEnabled || strings.TrimSpace(s.Settings.Endpoint) == "" {
		fallbackHighlight(card, s)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, e.narrationTimeout)
	defer cancel()

	resp, err := e.narrator.Narrate(ctx, BuildNarrationRequest(s, chosen))
	if err == nil {
		err = ValidateNarratedCard(resp)
	}
	if err != nil {
		e.log.Warn("narration unavailable, using fallback", "period_index", card.PeriodIndex, "err", err)
		fallbackHighlight(card, s)
		return
	}
	card.Title = strings.TrimSpace(resp.Title)
	card.Narration = strings.TrimSpace(resp.Narration)
	card.Dialogues = resp.Dialogues
	card.Meta.Source = SourceAI
	card.Meta.Extra = resp.Meta
}

func others(s *State, id string) []*Character {
	out := make([]*Character, 0, len(s.Characters))
	for _, c := range s.Characters {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
