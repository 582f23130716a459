package game

import "testing"

func newTestCharacter() *Character {
	return NewCharacter(CharacterInput{Name: "Tester", Personality: "ISTJ", BirthMonth: 6, BirthDay: 1})
}

func TestApplyActivitySuccess(t *testing.T) {
	s := NewState()
	c := newTestCharacter()
	res := ApplyActivity(s, c, ActivityStudy, always(0))
	if !res.Succeeded {
		t.Fatalf("expected success")
	}
	if c.Stats.Intellect != 13 || c.Stats.Stress != 12 {
		t.Fatalf("got intellect=%d stress=%d want 13/12", c.Stats.Intellect, c.Stats.Stress)
	}
	if got := c.Skills[ActivityStudy].Exp; got != 2 {
		t.Fatalf("got exp %d want 2", got)
	}
}

func TestApplyActivityFailure(t *testing.T) {
	s := NewState()
	c := newTestCharacter()
	res := ApplyActivity(s, c, ActivityStudy, always(0.999))
	if res.Succeeded {
		t.Fatalf("expected failure")
	}
	if c.Stats.Intellect != 11 || c.Stats.Stress != 12 {
		t.Fatalf("got intellect=%d stress=%d want 11/12", c.Stats.Intellect, c.Stats.Stress)
	}
	if got := c.Skills[ActivityStudy].Exp; got != 1 {
		t.Fatalf("got exp %d want 1", got)
	}

	ApplyActivity(s, c, ActivityWork, always(0.999))
	if s.Money != StartingMoney+30 {
		t.Fatalf("got money %d want %d", s.Money, StartingMoney+30)
	}
}

func TestWorkBonusMoney(t *testing.T) {
	s := NewState()
	c := newTestCharacter()
	c.Skills[ActivityWork] = Skill{Level: 4}
	res := ApplyActivity(s, c, ActivityWork, always(0))
	if res.MoneyDelta != 50+2*10 {
		t.Fatalf("got money delta %d want 70", res.MoneyDelta)
	}
}

func TestUnknownActivityIsNoop(t *testing.T) {
	s := NewState()
	c := newTestCharacter()
	before := c.Stats
	ApplyActivity(s, c, Activity("nap"), always(0))
	if c.Stats != before || s.Money != StartingMoney {
		t.Fatalf("expected no change for unknown activity")
	}
}

func TestClampingInvariant(t *testing.T) {
	s := NewState()
	s.Money = MaxMoney - 10
	c := newTestCharacter()
	r := NewSeededRand(42)
	acts := Activities()
	for i := 0; i < 2000; i++ {
		a := acts[r.Intn(len(acts))]
		ApplyActivity(s, c, a, r)
		if i%12 == 0 {
			ApplyBirthday(s, c)
		}
		for _, k := range statOrder {
			if v := c.Stats.Get(k); v < MinStat || v > MaxStat {
				t.Fatalf("step %d: stat %s=%d out of range", i, k, v)
			}
		}
		if s.Money < MinMoney || s.Money > MaxMoney {
			t.Fatalf("step %d: money %d out of range", i, s.Money)
		}
	}
}

func TestSkillLevelsOnThreshold(t *testing.T) {
	s := NewState()
	c := newTestCharacter()
	r := always(0)
	prevLevel := 0
	for i := 0; i < 40; i++ {
		before := c.Skills[ActivityTrain]
		res := ApplyActivity(s, c, ActivityTrain, r)
		after := c.Skills[ActivityTrain]
		if after.Level < prevLevel {
			t.Fatalf("level decreased from %d to %d", prevLevel, after.Level)
		}
		crossed := before.Exp+successExp >= ExpNeeded(before.Level)
		if crossed != res.LeveledUp || crossed != (after.Level == before.Level+1) {
			t.Fatalf("step %d: crossed=%v leveled=%v before=%+v after=%+v", i, crossed, res.LeveledUp, before, after)
		}
		prevLevel = after.Level
	}
	if prevLevel < 3 {
		t.Fatalf("expected several level ups, got level %d", prevLevel)
	}
}

func TestSuccessProbabilityBounds(t *testing.T) {
	for _, p := range Personalities() {
		for m := 1; m <= 12; m++ {
			c := NewCharacter(CharacterInput{Personality: p, BirthMonth: m, BirthDay: 10})
			for _, a := range Activities() {
				got := SuccessProbability(c, a)
				if got < MinSuccess || got > MaxSuccess {
					t.Fatalf("%s/%s/%s: probability %f out of range", p, c.Zodiac, a, got)
				}
			}
		}
	}
	if PersonalityBias("XXXX", ActivityStudy) != 1 {
		t.Fatalf("expected neutral bias for unknown personality")
	}
}

func TestApplyBirthday(t *testing.T) {
	s := NewState()
	c := newTestCharacter()
	ApplyBirthday(s, c)
	if c.Stats.Stress != 4 || c.Stats.Charm != 11 || s.Money != StartingMoney-20 {
		t.Fatalf("got stress=%d charm=%d money=%d", c.Stats.Stress, c.Stats.Charm, s.Money)
	}
	s.Money = 5
	ApplyBirthday(s, c)
	if s.Money != 0 || c.Stats.Stress != 0 {
		t.Fatalf("expected clamped money and stress, got money=%d stress=%d", s.Money, c.Stats.Stress)
	}
}

func TestEvolveStage(t *testing.T) {
	tests := []struct {
		name string
		rel  Relationship
		roll float64
		want Stage
	}{
		{"strangers to friends", Relationship{Affinity: 20, Trust: 30, Tension: 10, Stage: StageStrangers}, 0.5, StageFriends},
		{"strangers chain to close", Relationship{Affinity: 40, Trust: 50, Tension: 10, Stage: StageStrangers}, 0.5, StageClose},
		{"friends stay with tension", Relationship{Affinity: 40, Trust: 50, Tension: 60, Stage: StageFriends}, 0.5, StageFriends},
		{"rivals cool off", Relationship{Affinity: 12, Trust: 30, Tension: 20, Stage: StageRivals, Preset: PresetRivals}, 0.5, StageFriends},
		{"family forced", Relationship{Affinity: 0, Trust: 30, Tension: 20, Stage: StageFriends, Preset: PresetFamily}, 0.5, StageFamily},
		{"close breaks on tension", Relationship{Affinity: 80, Trust: 90, Tension: 90, Stage: StageClose}, 0.5, StageBroken},
		{"low trust breaks", Relationship{Affinity: 20, Trust: 8, Tension: 10, Stage: StageFriends}, 0.5, StageBroken},
		{"broken overrides fresh promotion", Relationship{Affinity: 20, Trust: 30, Tension: 88, Stage: StageStrangers}, 0.5, StageBroken},
		{"family can break", Relationship{Affinity: 30, Trust: 5, Tension: 10, Stage: StageFamily, Preset: PresetFamily}, 0.5, StageBroken},
		{"romance to dating", Relationship{Affinity: 50, Trust: 60, Tension: 20, Romance: 65, Stage: StageClose}, 0.1, StageDating},
		{"romance roll misses", Relationship{Affinity: 50, Trust: 60, Tension: 20, Romance: 65, Stage: StageClose}, 0.9, StageClose},
		{"dating to partners", Relationship{Affinity: 60, Trust: 75, Tension: 20, Romance: 85, Stage: StageDating}, 0.1, StagePartners},
		{"partners stay", Relationship{Affinity: 60, Trust: 75, Tension: 20, Romance: 85, Stage: StagePartners}, 0.0, StagePartners},
		{"family skips romance", Relationship{Affinity: 60, Trust: 75, Tension: 20, Romance: 85, Stage: StageFamily, Preset: PresetFamily}, 0.0, StageFamily},
	}
	for _, tc := range tests {
		rel := tc.rel
		prev := rel.Stage
		got := EvolveStage(&rel, always(tc.roll))
		if got.Next != tc.want || rel.Stage != tc.want {
			t.Fatalf("%s: got %s want %s", tc.name, got.Next, tc.want)
		}
		if got.Previous != prev || got.Changed != (prev != tc.want) {
			t.Fatalf("%s: unexpected change report %+v", tc.name, got)
		}
	}
}

func TestEvolveStageSettles(t *testing.T) {
	rel := Relationship{Affinity: 20, Trust: 30, Tension: 10, Stage: StageStrangers}
	first := EvolveStage(&rel, always(0))
	if !first.Changed || rel.Stage != StageFriends {
		t.Fatalf("expected friends, got %+v", first)
	}
	second := EvolveStage(&rel, always(0))
	if second.Changed {
		t.Fatalf("expected no change on re-apply, got %+v", second)
	}
}

func TestDrift(t *testing.T) {
	tests := []struct {
		name string
		ctx  DriftContext
		want RelationDelta
	}{
		{"none", DriftContext{}, RelationDelta{}},
		{"shared", DriftContext{SameActivityGroup: true}, RelationDelta{Trust: 2, Affinity: 1}},
		{"gap", DriftContext{StatGrowthGap: GrowthGapThreshold}, RelationDelta{Tension: 2}},
		{"small gap", DriftContext{StatGrowthGap: GrowthGapThreshold - 1}, RelationDelta{}},
		{"stress", DriftContext{AnyHighStress: true}, RelationDelta{Tension: 2, Trust: -1}},
		{"rivals", DriftContext{IsRivalStage: true}, RelationDelta{Tension: 1, Affinity: -1}},
		{"crush", DriftContext{IsCrush: true}, RelationDelta{Romance: 1}},
	}
	for _, tc := range tests {
		rel := NewRelationship("a", "b", PresetStrangers)
		if got := Drift(rel, tc.ctx); got != tc.want {
			t.Fatalf("%s: got %+v want %+v", tc.name, got, tc.want)
		}
	}

	rel := &Relationship{Affinity: -100, Trust: 0, Tension: 100}
	Drift(rel, DriftContext{AnyHighStress: true, IsRivalStage: true})
	if rel.Affinity != -100 || rel.Trust != 0 || rel.Tension != 100 {
		t.Fatalf("expected clamped drift, got %+v", rel)
	}
}
