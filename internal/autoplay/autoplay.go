package autoplay

import (
	"context"
	"fmt"
	"log/slog"

	"raisingsim/internal/game"
)

// Summary is what one simulated game ended with.
type Summary struct {
	Periods  int            `json:"periods"`
	Money    int            `json:"money"`
	Entries  int            `json:"entries"`
	Resolved int            `json:"resolved"`
	Stages   map[string]int `json:"stages"`
	Growth   map[string]int `json:"growth"`
}

type Player struct {
	engine *game.Engine
	rand   game.Rand
	log    *slog.Logger
}

// NewPlayer rolls selections and choices from r, or from the engine itself when r is nil.
func NewPlayer(engine *game.Engine, r game.Rand, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	if r == nil {
		r = engine
	}
	return &Player{engine: engine, rand: r, log: logger}
}

// NewRoster builds a fresh game with n characters and random relationship presets.
func (p *Player) NewRoster(n int) (*game.State, error) {
	if n < 1 || n > game.MaxCharacters {
		return nil, fmt.Errorf("roster size must be between 1 and %d, got %d", game.MaxCharacters, n)
	}
	st := game.NewState()
	personalities := game.Personalities()
	st.Characters[0].Personality = personalities[p.rand.Intn(len(personalities))]
	for i := 1; i < n; i++ {
		_, err := st.AddCharacter(game.CharacterInput{
			Name:        fmt.Sprintf("Sim %d", i+1),
			Personality: personalities[p.rand.Intn(len(personalities))],
			BirthMonth:  p.rand.Intn(12) + 1,
			BirthDay:    p.rand.Intn(28) + 1,
		})
		if err != nil {
			return nil, err
		}
	}
	presets := []game.Preset{game.PresetStrangers, game.PresetStrangers, game.PresetRivals, game.PresetFamily, game.PresetCrush}
	for _, from := range st.Characters {
		for _, to := range st.Characters {
			if from.ID == to.ID {
				continue
			}
			if _, err := st.SetRelationPreset(from.ID, to.ID, presets[p.rand.Intn(len(presets))]); err != nil {
				return nil, err
			}
		}
	}
	return st, nil
}

// Play runs st to the horizon, answering every card at random.
func (p *Player) Play(ctx context.Context, st *game.State) (Summary, error) {
	start := make(map[string]int, len(st.Characters))
	for _, c := range st.Characters {
		start[c.ID] = c.Stats.Growth()
	}
	activities := game.Activities()
	tags := []game.ChoiceTag{game.ChoiceA, game.ChoiceB, game.ChoiceC}

	sum := Summary{Stages: map[string]int{}, Growth: map[string]int{}}
	for !st.Finished() {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		selections := make(map[string]game.Activity, len(st.Characters))
		for _, c := range st.Characters {
			selections[c.ID] = activities[p.rand.Intn(len(activities))]
		}
		period := st.PeriodIndex
		entries, err := p.engine.AdvancePeriod(ctx, st, selections)
		if err != nil {
			return sum, err
		}
		sum.Periods++
		sum.Entries += len(entries)
		for _, card := range st.PendingCards() {
			results, ok := p.engine.ResolveChoice(st, card.ID, tags[p.rand.Intn(len(tags))])
			if ok {
				sum.Resolved++
				sum.Entries += len(results)
			}
		}
		p.log.Info("period played",
			"period_index", period,
			"entries", len(entries),
			"money", st.Money,
		)
	}

	sum.Money = st.Money
	for _, rel := range st.Relations {
		sum.Stages[string(rel.Stage)]++
	}
	for _, c := range st.Characters {
		sum.Growth[c.Name] = c.Stats.Growth() - start[c.ID]
	}
	return sum, nil
}
