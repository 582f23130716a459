package game

type Personality string

var personalities = []Personality{
	"INTJ", "INTP", "ENTJ", "ENTP",
	"INFJ", "INFP", "ENFJ", "ENFP",
	"ISTJ", "ISFJ", "ESTJ", "ESFJ",
	"ISTP", "ISFP", "ESTP", "ESFP",
}

const DefaultPersonality Personality = "INTJ"

func Personalities() []Personality {
	out := make([]Personality, len(personalities))
	copy(out, personalities)
	return out
}

func (p Personality) Valid() bool {
	for _, v := range personalities {
		if v == p {
			return true
		}
	}
	return false
}

type Zodiac string

const (
	ZodiacCapricorn   Zodiac = "Capricorn"
	ZodiacAquarius    Zodiac = "Aquarius"
	ZodiacPisces      Zodiac = "Pisces"
	ZodiacAries       Zodiac = "Aries"
	ZodiacTaurus      Zodiac = "Taurus"
	ZodiacGemini      Zodiac = "Gemini"
	ZodiacCancer      Zodiac = "Cancer"
	ZodiacLeo         Zodiac = "Leo"
	ZodiacVirgo       Zodiac = "Virgo"
	ZodiacLibra       Zodiac = "Libra"
	ZodiacScorpio     Zodiac = "Scorpio"
	ZodiacSagittarius Zodiac = "Sagittarius"
)

type Activity string

const (
	ActivityStudy Activity = "study"
	ActivityWork  Activity = "work"
	ActivityRest  Activity = "rest"
	ActivityArt   Activity = "art"
	ActivityTrain Activity = "train"
)

var activities = []Activity{ActivityStudy, ActivityWork, ActivityRest, ActivityArt, ActivityTrain}

func Activities() []Activity {
	out := make([]Activity, len(activities))
	copy(out, activities)
	return out
}

func (a Activity) Valid() bool {
	_, ok := activityTable[a]
	return ok
}

type StatKind string

const (
	StatIntellect StatKind = "intellect"
	StatCharm     StatKind = "charm"
	StatStrength  StatKind = "strength"
	StatArt       StatKind = "art"
	StatMorality  StatKind = "morality"
	StatStress    StatKind = "stress"
)

var statOrder = []StatKind{StatIntellect, StatCharm, StatStrength, StatArt, StatMorality, StatStress}

type Stats struct {
	Intellect int `json:"intellect"`
	Charm     int `json:"charm"`
	Strength  int `json:"strength"`
	Art       int `json:"art"`
	Morality  int `json:"morality"`
	Stress    int `json:"stress"`
}

func (s *Stats) field(k StatKind) *int {
	switch k {
	case StatIntellect:
		return &s.Intellect
	case StatCharm:
		return &s.Charm
	case StatStrength:
		return &s.Strength
	case StatArt:
		return &s.Art
	case StatMorality:
		return &s.Morality
	case StatStress:
		return &s.Stress
	}
	return nil
}

func (s Stats) Get(k StatKind) int {
	if p := s.field(k); p != nil {
		return *p
	}
	return 0
}

// Add applies d to stat k and returns the change actually applied after clamping.
func (s *Stats) Add(k StatKind, d int) int {
	p := s.field(k)
	if p == nil {
		return 0
	}
	before := *p
	*p = ClampStat(before + d)
	return *p - before
}

// Growth sums every stat except stress.
func (s Stats) Growth() int {
	return s.Intellect + s.Charm + s.Strength + s.Art + s.Morality
}

type Skill struct {
	Level int `json:"level"`
	Exp   int `json:"exp"`
}

type Birthday struct {
	Month int `json:"month"`
	Day   int `json:"day"`
}

type Character struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Personality Personality        `json:"personality"`
	Birthday    Birthday           `json:"birthday"`
	Zodiac      Zodiac             `json:"zodiac"`
	Stats       Stats              `json:"stats"`
	Skills      map[Activity]Skill `json:"skills"`
}

type Stage string

const (
	StageStrangers Stage = "strangers"
	StageFriends   Stage = "friends"
	StageClose     Stage = "close"
	StageRivals    Stage = "rivals"
	StageFamily    Stage = "family"
	StageCrush     Stage = "crush"
	StageDating    Stage = "dating"
	StagePartners  Stage = "partners"
	StageBroken    Stage = "broken"
)

func (st Stage) valid() bool {
	switch st {
	case StageStrangers, StageFriends, StageClose, StageRivals, StageFamily,
		StageCrush, StageDating, StagePartners, StageBroken:
		return true
	}
	return false
}

type Preset string

const (
	PresetStrangers Preset = "strangers"
	PresetRivals    Preset = "rivals"
	PresetFamily    Preset = "family"
	PresetCrush     Preset = "crush"
)

func (p Preset) Valid() bool {
	switch p {
	case PresetStrangers, PresetRivals, PresetFamily, PresetCrush:
		return true
	}
	return false
}

type Relationship struct {
	FromID   string `json:"from_id"`
	ToID     string `json:"to_id"`
	Affinity int    `json:"affinity"`
	Trust    int    `json:"trust"`
	Tension  int    `json:"tension"`
	Romance  int    `json:"romance"`
	Preset   Preset `json:"preset"`
	Stage    Stage  `json:"stage"`
}

func (r *Relationship) Key() string { return RelationKey(r.FromID, r.ToID) }

// RelationDelta is a signed change to a relationship's numeric fields.
type RelationDelta struct {
	Trust    int `json:"trust,omitempty"`
	Affinity int `json:"affinity,omitempty"`
	Tension  int `json:"tension,omitempty"`
	Romance  int `json:"romance,omitempty"`
}

func (r *Relationship) Apply(d RelationDelta) RelationDelta {
	before := *r
	r.Trust = clamp(r.Trust+d.Trust, 0, 100)
	r.Affinity = clamp(r.Affinity+d.Affinity, -100, 100)
	r.Tension = clamp(r.Tension+d.Tension, 0, 100)
	r.Romance = clamp(r.Romance+d.Romance, 0, 100)
	return RelationDelta{
		Trust:    r.Trust - before.Trust,
		Affinity: r.Affinity - before.Affinity,
		Tension:  r.Tension - before.Tension,
		Romance:  r.Romance - before.Romance,
	}
}

type Settings struct {
	NarrationEnabled bool   `json:"narration_enabled"`
	Endpoint         string `json:"endpoint"`
}

type State struct {
	PeriodIndex   int                      `json:"period_index"`
	Money         int                      `json:"money"`
	Characters    []*Character             `json:"characters"`
	Relations     map[string]*Relationship `json:"relations"`
	Log           []*Card                  `json:"log"`
	Settings      Settings                 `json:"settings"`
	SetupUnlocked bool                     `json:"setup_unlocked"`
}

type CardKind string

const (
	CardTask          CardKind = "task"
	CardBirthday      CardKind = "birthday"
	CardPersonal      CardKind = "personal-event"
	CardRelationEvent CardKind = "relation-event"
	CardStageChange   CardKind = "stage-change"
	CardTournament    CardKind = "tournament"
	CardHighlight     CardKind = "highlight"
	CardResult        CardKind = "result"
)

type ChoiceTag string

const (
	ChoiceA ChoiceTag = "A"
	ChoiceB ChoiceTag = "B"
	ChoiceC ChoiceTag = "C"
)

type Choice struct {
	Tag   ChoiceTag `json:"tag"`
	Label string    `json:"label"`
}

type Dialogue struct {
	Speaker string `json:"speaker"`
	Line    string `json:"line"`
}

type RelationEventKind string

const (
	RelationBonding     RelationEventKind = "bonding"
	RelationArgument    RelationEventKind = "argument"
	RelationCooperation RelationEventKind = "cooperation"
)

type CardMeta struct {
	CharacterID   string            `json:"character_id,omitempty"`
	FromID        string            `json:"from_id,omitempty"`
	ToID          string            `json:"to_id,omitempty"`
	RelationEvent RelationEventKind `json:"relation_event,omitempty"`
	Activity      Activity          `json:"activity,omitempty"`
	Source        string            `json:"source,omitempty"`
	ResultOf      string            `json:"result_of,omitempty"`
	Extra         map[string]any    `json:"extra,omitempty"`
}

type Card struct {
	ID          string     `json:"id"`
	Kind        CardKind   `json:"kind"`
	PeriodIndex int        `json:"period_index"`
	Title       string     `json:"title"`
	Narration   string     `json:"narration"`
	Dialogues   []Dialogue `json:"dialogues,omitempty"`
	Choices     []Choice   `json:"choices,omitempty"`
	ChoiceMade  ChoiceTag  `json:"choice_made,omitempty"`
	Meta        CardMeta   `json:"meta"`
}

func (c *Card) Resolved() bool { return c.ChoiceMade != "" }

func (c *Card) Pending() bool { return len(c.Choices) > 0 && !c.Resolved() }

func (c *Card) hasChoice(tag ChoiceTag) bool {
	for _, ch := range c.Choices {
		if ch.Tag == tag {
			return true
		}
	}
	return false
}
