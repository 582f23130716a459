package game

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	SourceEngine   = "engine"
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

func newCard(kind CardKind, period int, title, narration string) *Card {
	return &Card{
		ID:          uuid.NewString(),
		Kind:        kind,
		PeriodIndex: period,
		Title:       title,
		Narration:   narration,
		Meta:        CardMeta{Source: SourceEngine},
	}
}

func threeChoices(a, b, c string) []Choice {
	return []Choice{{Tag: ChoiceA, Label: a}, {Tag: ChoiceB, Label: b}, {Tag: ChoiceC, Label: c}}
}

type tone string

const (
	toneAction tone = "action"
	toneChoice tone = "choice"
)

var tonePacks = map[string]map[tone][]string{
	"NT": {
		toneAction: {"Let's sort this out and be done.", "Priorities first.", "I hate wasted effort."},
		toneChoice: {"I've run the numbers.", "Fewer variables, please.", "The answer was obvious."},
	},
	"NF": {
		toneAction: {"It weighs on me, but I'll try.", "I don't want anyone hurt.", "Let's see where this goes."},
		toneChoice: {"Whatever I won't regret.", "I can't just walk past this.", "I'll follow my heart."},
	},
	"SJ": {
		toneAction: {"One step at a time.", "Basics first.", "Stay steady."},
		toneChoice: {"The safe option.", "No need to stir things up.", "By the book."},
	},
	"SP": {
		toneAction: {"Alright, let's go!", "Just do it.", "This could get fun."},
		toneChoice: {"Now's the moment!", "Whichever is more fun.", "Going for it."},
	},
}

func temperament(p Personality) string {
	p = Personality(strings.ToUpper(string(p)))
	if len(p) != 4 {
		return "NT"
	}
	if p[1] == 'N' {
		return "N" + string(p[2])
	}
	return "S" + string(p[3])
}

func dialogueLine(r Rand, c *Character, t tone) Dialogue {
	pack, ok := tonePacks[temperament(c.Personality)]
	if !ok {
		pack = tonePacks["NT"]
	}
	lines := pack[t]
	if len(lines) == 0 {
		lines = pack[toneAction]
	}
	return Dialogue{Speaker: c.Name, Line: pick(r, lines)}
}

var activityLabels = map[Activity]string{
	ActivityStudy: "Study",
	ActivityWork:  "Work",
	ActivityRest:  "Rest",
	ActivityArt:   "Art",
	ActivityTrain: "Training",
}

func ActivityLabel(a Activity) string {
	if l, ok := activityLabels[a]; ok {
		return l
	}
	return string(a)
}

func taskCard(r Rand, period int, c *Character, a Activity, results []ActivityResult) *Card {
	wins := 0
	stats := map[StatKind]int{}
	money := 0
	leveled := false
	for _, res := range results {
		if res.Succeeded {
			wins++
		}
		for k, v := range res.StatDeltas {
			stats[k] += v
		}
		money += res.MoneyDelta
		leveled = leveled || res.LeveledUp
	}
	var outcome string
	switch {
	case wins == len(results):
		outcome = "went well"
	case wins == 0:
		outcome = "did not go well"
	default:
		outcome = "had ups and downs"
	}
	text := fmt.Sprintf("%s's %s %s (%d/%d).\n\n%s", c.Name, strings.ToLower(ActivityLabel(a)), outcome, wins, len(results), formatChanges(stats, money))
	if leveled {
		text += fmt.Sprintf("\n%s skill is now level %d.", ActivityLabel(a), c.Skills[a].Level)
	}
	card := newCard(CardTask, period, fmt.Sprintf("%s: %s", c.Name, ActivityLabel(a)), text)
	card.Dialogues = []Dialogue{dialogueLine(r, c, toneAction)}
	card.Meta.CharacterID = c.ID
	card.Meta.Activity = a
	return card
}

func birthdayCard(r Rand, period int, c *Character, others []*Character) *Card {
	card := newCard(CardBirthday, period, fmt.Sprintf("Birthday: %s", c.Name), "A date circled on the calendar. The mood shifts for a moment.")
	if len(others) > 0 {
		friend := pick(r, others)
		card.Dialogues = append(card.Dialogues, Dialogue{Speaker: friend.Name, Line: "It's your birthday. Take it easy today."})
	}
	card.Dialogues = append(card.Dialogues, dialogueLine(r, c, toneAction))
	card.Choices = threeChoices("Celebrate together", "Keep it modest", "Skip it")
	card.Meta.CharacterID = c.ID
	return card
}

type personalEvent struct {
	title  string
	labels [3]string
}

var personalEvents = []personalEvent{
	{"Heard a strange rumor", [3]string{"Dig into it", "Let it go", "Use it"}},
	{"Someone asked for help", [3]string{"Help out", "Pretend not to notice", "Name a price"}},
	{"Ran into an old enemy", [3]string{"Avoid them", "Stand ground", "Talk it out"}},
	{"A sudden impulse", [3]string{"Hold back", "Buy a little", "Splurge"}},
	{"A small misunderstanding", [3]string{"Clear it up now", "Give it time", "Leave it"}},
}

func personalCard(r Rand, period int, c *Character) *Card {
	ev := pick(r, personalEvents)
	card := newCard(CardPersonal, period, fmt.Sprintf("%s (%s)", ev.title, c.Name), "Pick one and the next scene follows.")
	card.Dialogues = []Dialogue{dialogueLine(r, c, toneChoice)}
	card.Choices = threeChoices(ev.labels[0], ev.labels[1], ev.labels[2])
	card.Meta.CharacterID = c.ID
	return card
}

type relationEventText struct {
	title  string
	labels [3]string
}

var relationEventTexts = map[RelationEventKind]relationEventText{
	RelationCooperation: {"Had to work on something together", [3]string{"Sync up", "Each on their own", "Compete"}},
	RelationArgument:    {"Words got crossed", [3]string{"Apologize", "Let it slide", "Hit back"}},
	RelationBonding:     {"Found unexpected common ground", [3]string{"Admit it", "Play it cool", "Twist it"}},
}

var relationEventKinds = []RelationEventKind{RelationBonding, RelationArgument, RelationCooperation}

func relationEventCard(r Rand, period int, from, to *Character, rel *Relationship, kind RelationEventKind) *Card {
	txt := relationEventText{title: "Something happened", labels: [3]string{"Lean in", "Stay neutral", "Push back"}}
	if t, ok := relationEventTexts[kind]; ok {
		txt = t
	}
	card := newCard(CardRelationEvent, period, fmt.Sprintf("%s: %s -> %s", txt.title, from.Name, to.Name),
		fmt.Sprintf("Currently %s (preset %s).", rel.Stage, rel.Preset))
	card.Dialogues = []Dialogue{dialogueLine(r, from, toneChoice), dialogueLine(r, to, toneAction)}
	card.Choices = threeChoices(txt.labels[0], txt.labels[1], txt.labels[2])
	card.Meta.FromID = from.ID
	card.Meta.ToID = to.ID
	card.Meta.RelationEvent = kind
	return card
}

func stageChangeCard(r Rand, period int, from, to *Character, ch StageChange) *Card {
	card := newCard(CardStageChange, period, fmt.Sprintf("Relationship: %s -> %s", from.Name, to.Name),
		fmt.Sprintf("%q became %q.", ch.Previous, ch.Next))
	card.Dialogues = []Dialogue{dialogueLine(r, from, toneAction)}
	card.Meta.FromID = from.ID
	card.Meta.ToID = to.ID
	return card
}

func tournamentCard(period int) *Card {
	card := newCard(CardTournament, period, "Year-end tournament", "The last contest of the year. How hard do you push?")
	card.Choices = threeChoices("Go all out", "Play it safe", "Sit this one out")
	return card
}

func highlightCard(period int) *Card {
	return newCard(CardHighlight, period, "Highlight", "")
}

func fallbackHighlight(card *Card, s *State) {
	cal := CalendarAt(card.PeriodIndex)
	names := make([]string, 0, len(s.Characters))
	for _, c := range s.Characters {
		names = append(names, c.Name)
	}
	card.Title = fmt.Sprintf("Year %d, month %d", cal.Year, cal.Month)
	card.Narration = fmt.Sprintf("Another stretch of days passes for %s. Small habits pile up into something bigger.", strings.Join(names, ", "))
	card.Dialogues = nil
	card.Meta.Source = SourceFallback
}

var afterChoice = map[ChoiceTag][]string{
	ChoiceA: {"Moved right away. Results followed quickly.", "Stepped forward once more. The air changed.", "A fast decision tipped the scales."},
	ChoiceB: {"Slowed down. Fewer accidents, at least.", "Let it pass quietly. Only an echo remained.", "Took a step back. Things settled."},
	ChoiceC: {"Crossed a line. Reactions were split.", "Pushed too hard and felt it.", "Greed crept in. Gains and losses alike."},
}

func resultCard(r Rand, source *Card, period int, title string) *Card {
	card := newCard(CardResult, period, title, pick(r, afterChoice[source.ChoiceMade]))
	card.Meta.ResultOf = source.ID
	card.Meta.CharacterID = source.Meta.CharacterID
	card.Meta.FromID = source.Meta.FromID
	card.Meta.ToID = source.Meta.ToID
	return card
}

// formatChanges renders every nonzero stat and money change, or "no change".
func formatChanges(stats map[StatKind]int, money int) string {
	var parts []string
	for _, k := range statOrder {
		if v := stats[k]; v != 0 {
			parts = append(parts, fmt.Sprintf("%s %+d", k, v))
		}
	}
	if money != 0 {
		parts = append(parts, fmt.Sprintf("money %+d", money))
	}
	if len(parts) == 0 {
		return "[changes] no change"
	}
	return "[changes] " + strings.Join(parts, ", ")
}

func formatRelationChanges(d RelationDelta) string {
	var parts []string
	for _, f := range []struct {
		name string
		v    int
	}{{"trust", d.Trust}, {"affinity", d.Affinity}, {"tension", d.Tension}, {"romance", d.Romance}} {
		if f.v != 0 {
			parts = append(parts, fmt.Sprintf("%s %+d", f.name, f.v))
		}
	}
	if len(parts) == 0 {
		return "no change"
	}
	return strings.Join(parts, ", ")
}
