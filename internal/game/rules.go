package game

import "math"

type statDelta struct {
	stat  StatKind
	delta int
}

type activityRule struct {
	stats []statDelta
	money int
}

var activityTable = map[Activity]activityRule{
	ActivityStudy: {stats: []statDelta{{StatIntellect, 3}, {StatStress, 2}}},
	ActivityWork:  {stats: []statDelta{{StatStress, 3}}, money: 50},
	ActivityRest:  {stats: []statDelta{{StatStress, -4}}},
	ActivityArt:   {stats: []statDelta{{StatArt, 3}, {StatCharm, 1}, {StatStress, 1}}},
	ActivityTrain: {stats: []statDelta{{StatStrength, 3}, {StatStress, 2}}},
}

const (
	failureScale      = 0.45
	failureBonusScale = 0.6
	failureStress     = 1
	successExp        = 2
	failureExp        = 1
	workBonusMoney    = 10

	birthdayStress = -6
	birthdayCharm  = 1
	birthdayCost   = 20
)

var letterBias = map[byte]map[Activity]float64{
	'I': {ActivityStudy: 1.08, ActivityRest: 1.04},
	'E': {ActivityWork: 1.08, ActivityArt: 1.03},
	'N': {ActivityArt: 1.08, ActivityStudy: 1.04},
	'S': {ActivityTrain: 1.08, ActivityWork: 1.04},
	'T': {ActivityStudy: 1.04, ActivityTrain: 1.04},
	'F': {ActivityArt: 1.06, ActivityRest: 1.04},
	'J': {ActivityWork: 1.05, ActivityStudy: 1.03},
	'P': {ActivityRest: 1.06, ActivityArt: 1.03},
}

var zodiacBias = map[Zodiac]map[Activity]float64{
	ZodiacAries:       {ActivityTrain: 1.06},
	ZodiacLeo:         {ActivityTrain: 1.06},
	ZodiacSagittarius: {ActivityTrain: 1.06},
	ZodiacTaurus:      {ActivityWork: 1.06},
	ZodiacVirgo:       {ActivityWork: 1.06},
	ZodiacCapricorn:   {ActivityWork: 1.06},
	ZodiacGemini:      {ActivityStudy: 1.06},
	ZodiacLibra:       {ActivityStudy: 1.06},
	ZodiacAquarius:    {ActivityStudy: 1.06},
	ZodiacCancer:      {ActivityArt: 1.06, ActivityRest: 1.03},
	ZodiacScorpio:     {ActivityArt: 1.06, ActivityRest: 1.03},
	ZodiacPisces:      {ActivityArt: 1.06, ActivityRest: 1.03},
}

func PersonalityBias(p Personality, a Activity) float64 {
	if !p.Valid() {
		return 1
	}
	bias := 1.0
	for i := 0; i < len(p); i++ {
		if m, ok := letterBias[p[i]][a]; ok {
			bias *= m
		}
	}
	return bias
}

func ZodiacBias(z Zodiac, a Activity) float64 {
	if m, ok := zodiacBias[z][a]; ok {
		return m
	}
	return 1
}

func SuccessProbability(c *Character, a Activity) float64 {
	return clampFloat(BaseSuccess*PersonalityBias(c.Personality, a)*ZodiacBias(c.Zodiac, a), MinSuccess, MaxSuccess)
}

func ExpNeeded(level int) int { return 6 + 2*level }

func SkillBonus(level int) int { return level / 2 }

type ActivityResult struct {
	Activity    Activity         `json:"activity"`
	Succeeded   bool             `json:"succeeded"`
	Probability float64          `json:"probability"`
	StatDeltas  map[StatKind]int `json:"stat_deltas"`
	MoneyDelta  int              `json:"money_delta"`
	LeveledUp   bool             `json:"leveled_up"`
}

// ApplyActivity rolls one tick of activity a for c and writes the clamped result
// into c and s.Money. Unknown activities are a no-op.
func ApplyActivity(s *State, c *Character, a Activity, r Rand) ActivityResult {
	res := ActivityResult{Activity: a, StatDeltas: map[StatKind]int{}}
	rule, ok := activityTable[a]
	if !ok {
		return res
	}
	res.Probability = SuccessProbability(c, a)
	res.Succeeded = chance(r, res.Probability)

	skill := c.Skills[a]
	bonus := SkillBonus(skill.Level)
	for _, sd := range rule.stats {
		var d int
		switch {
		case res.Succeeded && sd.stat == StatStress:
			d = sd.delta
		case res.Succeeded:
			d = sd.delta + bonus
		case sd.stat == StatStress:
			d = scaleRound(sd.delta, failureScale) + failureStress
		default:
			d = scaleRound(sd.delta, failureScale) + int(float64(bonus)*failureBonusScale)
		}
		if applied := c.Stats.Add(sd.stat, d); applied != 0 {
			res.StatDeltas[sd.stat] += applied
		}
	}

	money := rule.money
	if a == ActivityWork {
		money += bonus * workBonusMoney
	}
	if !res.Succeeded {
		money = scaleRound(rule.money, failureBonusScale)
		if a == ActivityWork {
			money += int(float64(bonus*workBonusMoney) * failureBonusScale)
		}
	}
	res.MoneyDelta = addMoney(s, money)

	if res.Succeeded {
		skill.Exp += successExp
	} else {
		skill.Exp += failureExp
	}
	if need := ExpNeeded(skill.Level); skill.Exp >= need {
		skill.Exp -= need
		skill.Level++
		res.LeveledUp = true
	}
	if c.Skills == nil {
		c.Skills = map[Activity]Skill{}
	}
	c.Skills[a] = skill
	return res
}

type BirthdayResult struct {
	StatDeltas map[StatKind]int `json:"stat_deltas"`
	MoneyDelta int              `json:"money_delta"`
}

func ApplyBirthday(s *State, c *Character) BirthdayResult {
	res := BirthdayResult{StatDeltas: map[StatKind]int{}}
	if d := c.Stats.Add(StatStress, birthdayStress); d != 0 {
		res.StatDeltas[StatStress] = d
	}
	if d := c.Stats.Add(StatCharm, birthdayCharm); d != 0 {
		res.StatDeltas[StatCharm] = d
	}
	res.MoneyDelta = addMoney(s, -birthdayCost)
	return res
}

func addMoney(s *State, d int) int {
	before := s.Money
	s.Money = ClampMoney(before + d)
	return s.Money - before
}

func scaleRound(v int, f float64) int {
	return int(math.Round(float64(v) * f))
}

type StageChange struct {
	Previous Stage `json:"previous"`
	Next     Stage `json:"next"`
	Changed  bool  `json:"changed"`
}

const (
	datingChance   = 0.25
	partnersChance = 0.15
)

// EvolveStage runs the stage rules in priority order; later rules override
// earlier ones in the same call, and broken is checked after every promotion.
// r is only drawn from when a romance promotion is eligible.
func EvolveStage(rel *Relationship, r Rand) StageChange {
	prev := rel.Stage
	if rel.Stage == StageStrangers && rel.Affinity >= 15 && rel.Trust >= 25 {
		rel.Stage = StageFriends
	}
	if rel.Stage == StageFriends && rel.Affinity >= 35 && rel.Trust >= 45 && rel.Tension <= 50 {
		rel.Stage = StageClose
	}
	if rel.Stage == StageRivals && rel.Tension <= 25 && rel.Affinity >= 10 {
		rel.Stage = StageFriends
	}
	if rel.Preset == PresetFamily {
		rel.Stage = StageFamily
	}
	if rel.Stage != StageBroken && (rel.Tension >= 85 || rel.Trust <= 8) {
		rel.Stage = StageBroken
	}
	if rel.Stage != StageFamily && rel.Stage != StageBroken {
		switch {
		case rel.Stage == StageDating:
			if rel.Romance >= 80 && rel.Trust >= 70 && chance(r, partnersChance) {
				rel.Stage = StagePartners
			}
		case rel.Stage != StagePartners:
			if rel.Romance >= 60 && rel.Affinity >= 45 && rel.Trust >= 55 && rel.Tension <= 35 && chance(r, datingChance) {
				rel.Stage = StageDating
			}
		}
	}
	return StageChange{Previous: prev, Next: rel.Stage, Changed: prev != rel.Stage}
}

type DriftContext struct {
	SameActivityGroup bool
	AnyHighStress     bool
	IsRivalStage      bool
	IsCrush           bool
	StatGrowthGap     int
}

const GrowthGapThreshold = 6

// Drift is the passive per-period nudge applied before EvolveStage.
func Drift(rel *Relationship, ctx DriftContext) RelationDelta {
	var d RelationDelta
	if ctx.SameActivityGroup {
		d.Trust += 2
		d.Affinity++
	}
	if ctx.StatGrowthGap >= GrowthGapThreshold {
		d.Tension += 2
	}
	if ctx.AnyHighStress {
		d.Tension += 2
		d.Trust--
	}
	if ctx.IsRivalStage {
		d.Tension++
		d.Affinity--
	}
	if ctx.IsCrush {
		d.Romance++
	}
	return rel.Apply(d)
}
