package game

import (
	"fmt"
	"strings"
)

type personalOutcome struct {
	stats map[StatKind]int
	money int
}

var personalOutcomes = map[ChoiceTag]personalOutcome{
	ChoiceA: {stats: map[StatKind]int{StatMorality: 2, StatStress: 1}},
	ChoiceB: {stats: map[StatKind]int{StatStress: -2}},
	ChoiceC: {stats: map[StatKind]int{StatStress: 2}, money: 20},
}

var birthdayProfiles = map[ChoiceTag]RelationDelta{
	ChoiceA: {Trust: 3, Affinity: 3},
	ChoiceB: {},
	ChoiceC: {Tension: 4, Affinity: -1},
}

var relationEventDeltas = map[RelationEventKind]map[ChoiceTag]RelationDelta{
	RelationBonding: {
		ChoiceA: {Trust: 3, Affinity: 3, Tension: -1, Romance: 2},
		ChoiceB: {Trust: 1, Affinity: 1},
		ChoiceC: {Affinity: -1, Tension: 2},
	},
	RelationArgument: {
		ChoiceA: {Trust: 2, Affinity: 1, Tension: -4},
		ChoiceB: {Tension: -1},
		ChoiceC: {Trust: -3, Affinity: -2, Tension: 5},
	},
	RelationCooperation: {
		ChoiceA: {Trust: 3, Affinity: 2, Tension: -1, Romance: 1},
		ChoiceB: {Trust: 1},
		ChoiceC: {Trust: -1, Affinity: -1, Tension: 3},
	},
}

var tournamentPayouts = map[ChoiceTag]int{
	ChoiceA: 80,
	ChoiceB: 40,
	ChoiceC: 0,
}

// ResolveChoice applies tag to the card with cardID and appends the follow-up
// entries to the log. It reports false and leaves s untouched when the card is
// unknown, carries no choices, is already resolved, does not offer tag, or
// refers to a character or relationship that no longer exists.
func (e *Engine) ResolveChoice(s *State, cardID string, tag ChoiceTag) ([]*Card, bool) {
	card := s.Card(cardID)
	if card == nil || len(card.Choices) == 0 || card.Resolved() || !card.hasChoice(tag) {
		return nil, false
	}

	var result *Card
	switch card.Kind {
	case CardPersonal:
		result = e.resolvePersonal(s, card, tag)
	case CardBirthday:
		result = e.resolveBirthday(s, card, tag)
	case CardRelationEvent:
		result = e.resolveRelationEvent(s, card, tag)
	case CardTournament:
		result = e.resolveTournament(s, card, tag)
	}
	if result == nil {
		return nil, false
	}
	s.Log = append(s.Log, result)
	return []*Card{result}, true
}

func (e *Engine) resolvePersonal(s *State, card *Card, tag ChoiceTag) *Card {
	c := s.Character(card.Meta.CharacterID)
	if c == nil {
		return nil
	}
	card.ChoiceMade = tag
	out := personalOutcomes[tag]
	applied := map[StatKind]int{}
	for _, k := range statOrder {
		if d, ok := out.stats[k]; ok {
			if v := c.Stats.Add(k, d); v != 0 {
				applied[k] = v
			}
		}
	}
	money := addMoney(s, out.money)

	result := resultCard(e, card, card.PeriodIndex, fmt.Sprintf("%s: how it turned out", c.Name))
	result.Narration += "\n\n" + formatChanges(applied, money)
	result.Dialogues = []Dialogue{dialogueLine(e, c, toneChoice)}
	return result
}

func (e *Engine) resolveBirthday(s *State, card *Card, tag ChoiceTag) *Card {
	c := s.Character(card.Meta.CharacterID)
	if c == nil {
		return nil
	}
	card.ChoiceMade = tag
	profile := birthdayProfiles[tag]

	var lines []string
	for _, other := range others(s, c.ID) {
		for _, rel := range []*Relationship{s.Relation(other.ID, c.ID), s.Relation(c.ID, other.ID)} {
			if rel == nil {
				continue
			}
			d := rel.Apply(profile)
			ch := EvolveStage(rel, e)
			line := fmt.Sprintf("%s: %s", rel.Key(), formatRelationChanges(d))
			if ch.Changed {
				line += fmt.Sprintf(" (%s -> %s)", ch.Previous, ch.Next)
			}
			lines = append(lines, line)
		}
	}
	result := resultCard(e, card, card.PeriodIndex, fmt.Sprintf("Birthday: %s, afterwards", c.Name))
	if len(lines) == 0 {
		result.Narration += "\n\n[changes] no change"
	} else {
		result.Narration += "\n\n[changes] " + strings.Join(lines, "; ")
	}
	return result
}

func (e *Engine) resolveRelationEvent(s *State, card *Card, tag ChoiceTag) *Card {
	rel := s.Relation(card.Meta.FromID, card.Meta.ToID)
	from := s.Character(card.Meta.FromID)
	to := s.Character(card.Meta.ToID)
	if rel == nil || from == nil || to == nil {
		return nil
	}
	table, ok := relationEventDeltas[card.Meta.RelationEvent]
	if !ok {
		table = relationEventDeltas[RelationCooperation]
	}
	card.ChoiceMade = tag
	d := rel.Apply(table[tag])
	ch := EvolveStage(rel, e)

	result := resultCard(e, card, card.PeriodIndex, fmt.Sprintf("Relationship: %s -> %s", from.Name, to.Name))
	result.Narration += "\n\n[changes] " + formatRelationChanges(d)
	if ch.Changed {
		result.Narration += fmt.Sprintf("\n[stage] %q -> %q", ch.Previous, ch.Next)
	}
	result.Dialogues = []Dialogue{dialogueLine(e, from, toneChoice), dialogueLine(e, to, toneAction)}
	return result
}

func (e *Engine) resolveTournament(s *State, card *Card, tag ChoiceTag) *Card {
	card.ChoiceMade = tag
	money := addMoney(s, tournamentPayouts[tag])
	result := resultCard(e, card, card.PeriodIndex, "Year-end tournament: result")
	result.Narration += "\n\n" + formatChanges(nil, money)
	return result
}
