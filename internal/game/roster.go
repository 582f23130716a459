package game

import (
	"strings"

	"github.com/google/uuid"
)

type CharacterInput struct {
	Name        string      `json:"name"`
	Personality Personality `json:"personality"`
	BirthMonth  int         `json:"birth_month"`
	BirthDay    int         `json:"birth_day"`
}

type CharacterEdit struct {
	Name        *string      `json:"name,omitempty"`
	Personality *Personality `json:"personality,omitempty"`
	BirthMonth  *int         `json:"birth_month,omitempty"`
	BirthDay    *int         `json:"birth_day,omitempty"`
}

func normalizePersonality(p Personality) Personality {
	p = Personality(strings.ToUpper(strings.TrimSpace(string(p))))
	if !p.Valid() {
		return DefaultPersonality
	}
	return p
}

func NewCharacter(in CharacterInput) *Character {
	month := clamp(in.BirthMonth, 1, 12)
	day := clamp(in.BirthDay, 1, 31)
	skills := make(map[Activity]Skill, len(activities))
	for _, a := range activities {
		skills[a] = Skill{}
	}
	return &Character{
		ID:          uuid.NewString(),
		Name:        sanitizeName(in.Name),
		Personality: normalizePersonality(in.Personality),
		Birthday:    Birthday{Month: month, Day: day},
		Zodiac:      ZodiacFor(month, day),
		Stats: Stats{
			Intellect: DefaultStat,
			Charm:     DefaultStat,
			Strength:  DefaultStat,
			Art:       DefaultStat,
			Morality:  DefaultStat,
			Stress:    DefaultStat,
		},
		Skills: skills,
	}
}

func NewState() *State {
	first := NewCharacter(CharacterInput{Name: DefaultName, Personality: DefaultPersonality, BirthMonth: 1, BirthDay: 1})
	return &State{
		PeriodIndex:   0,
		Money:         StartingMoney,
		Characters:    []*Character{first},
		Relations:     map[string]*Relationship{},
		Log:           []*Card{},
		SetupUnlocked: true,
	}
}

func NewRelationship(fromID, toID string, preset Preset) *Relationship {
	r := &Relationship{FromID: fromID, ToID: toID, Preset: preset}
	switch preset {
	case PresetRivals:
		r.Affinity, r.Trust, r.Tension, r.Romance, r.Stage = -10, 20, 45, 0, StageRivals
	case PresetFamily:
		r.Affinity, r.Trust, r.Tension, r.Romance, r.Stage = 35, 55, 10, 0, StageFamily
	case PresetCrush:
		r.Affinity, r.Trust, r.Tension, r.Romance, r.Stage = 15, 25, 15, 35, StageCrush
	default:
		r.Preset = PresetStrangers
		r.Affinity, r.Trust, r.Tension, r.Romance, r.Stage = 0, 10, 10, 0, StageStrangers
	}
	return r
}

func (s *State) Character(id string) *Character {
	for _, c := range s.Characters {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (s *State) CharacterByName(name string) *Character {
	name = strings.TrimSpace(name)
	for _, c := range s.Characters {
		if strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

func (s *State) Relation(fromID, toID string) *Relationship {
	return s.Relations[RelationKey(fromID, toID)]
}

// EnsureRelations creates a strangers record for every ordered pair that lacks one
// and reports how many were created.
func (s *State) EnsureRelations() int {
	if s.Relations == nil {
		s.Relations = map[string]*Relationship{}
	}
	created := 0
	for _, from := range s.Characters {
		for _, to := range s.Characters {
			if from.ID == to.ID {
				continue
			}
			key := RelationKey(from.ID, to.ID)
			if _, ok := s.Relations[key]; ok {
				continue
			}
			s.Relations[key] = NewRelationship(from.ID, to.ID, PresetStrangers)
			created++
		}
	}
	return created
}

func (s *State) AddCharacter(in CharacterInput) (*Character, error) {
	if !s.SetupUnlocked {
		return nil, ErrSetupLocked
	}
	if len(s.Characters) >= MaxCharacters {
		return nil, ErrRosterFull
	}
	c := NewCharacter(in)
	s.Characters = append(s.Characters, c)
	s.EnsureRelations()
	return c, nil
}

func (s *State) EditCharacter(id string, edit CharacterEdit) (*Character, error) {
	if !s.SetupUnlocked {
		return nil, ErrSetupLocked
	}
	c := s.Character(id)
	if c == nil {
		return nil, ErrCharacterNotFound
	}
	if edit.Name != nil {
		c.Name = sanitizeName(*edit.Name)
	}
	if edit.Personality != nil {
		c.Personality = normalizePersonality(*edit.Personality)
	}
	if edit.BirthMonth != nil {
		c.Birthday.Month = clamp(*edit.BirthMonth, 1, 12)
	}
	if edit.BirthDay != nil {
		c.Birthday.Day = clamp(*edit.BirthDay, 1, 31)
	}
	c.Zodiac = ZodiacFor(c.Birthday.Month, c.Birthday.Day)
	return c, nil
}

// RemoveCharacter drops the character and every relationship that references it.
func (s *State) RemoveCharacter(id string) error {
	if !s.SetupUnlocked {
		return ErrSetupLocked
	}
	idx := -1
	for i, c := range s.Characters {
		if c.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrCharacterNotFound
	}
	if len(s.Characters) <= 1 {
		return ErrLastCharacter
	}
	s.Characters = append(s.Characters[:idx], s.Characters[idx+1:]...)
	for key, rel := range s.Relations {
		if rel.FromID == id || rel.ToID == id {
			delete(s.Relations, key)
		}
	}
	return nil
}

// SetRelationPreset resets the directed record from->to to the preset's baseline.
func (s *State) SetRelationPreset(fromID, toID string, preset Preset) (*Relationship, error) {
	if !s.SetupUnlocked {
		return nil, ErrSetupLocked
	}
	if !preset.Valid() {
		return nil, ErrUnknownPreset
	}
	if fromID == toID {
		return nil, ErrSameCharacter
	}
	if s.Character(fromID) == nil || s.Character(toID) == nil {
		return nil, ErrCharacterNotFound
	}
	if s.Relations == nil {
		s.Relations = map[string]*Relationship{}
	}
	rel := NewRelationship(fromID, toID, preset)
	s.Relations[rel.Key()] = rel
	return rel, nil
}

func (s *State) UpdateSettings(settings Settings) {
	settings.Endpoint = strings.TrimSpace(settings.Endpoint)
	s.Settings = settings
}

// Normalize repairs a freshly decoded state: nil maps, derived zodiac signs,
// skill records and missing relationship records.
func (s *State) Normalize() {
	if s.Relations == nil {
		s.Relations = map[string]*Relationship{}
	}
	if s.Log == nil {
		s.Log = []*Card{}
	}
	for _, c := range s.Characters {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		c.Name = sanitizeName(c.Name)
		c.Personality = normalizePersonality(c.Personality)
		for _, k := range statOrder {
			p := c.Stats.field(k)
			*p = ClampStat(*p)
		}
		c.Birthday.Month = clamp(c.Birthday.Month, 1, 12)
		c.Birthday.Day = clamp(c.Birthday.Day, 1, 31)
		c.Zodiac = ZodiacFor(c.Birthday.Month, c.Birthday.Day)
		if c.Skills == nil {
			c.Skills = map[Activity]Skill{}
		}
		for _, a := range activities {
			sk := c.Skills[a]
			c.Skills[a] = Skill{Level: max(sk.Level, 0), Exp: max(sk.Exp, 0)}
		}
	}
	for key, rel := range s.Relations {
		if rel == nil || rel.FromID == rel.ToID || s.Character(rel.FromID) == nil || s.Character(rel.ToID) == nil {
			delete(s.Relations, key)
			continue
		}
		if !rel.Preset.Valid() {
			rel.Preset = PresetStrangers
		}
		if !rel.Stage.valid() {
			rel.Stage = NewRelationship(rel.FromID, rel.ToID, rel.Preset).Stage
		}
		rel.Apply(RelationDelta{})
		if k := rel.Key(); k != key {
			delete(s.Relations, key)
			s.Relations[k] = rel
		}
	}
	s.Money = ClampMoney(s.Money)
	s.PeriodIndex = clamp(s.PeriodIndex, 0, HorizonMonths)
	s.EnsureRelations()
}

func (s *State) Finished() bool { return s.PeriodIndex >= HorizonMonths }

func (s *State) Card(id string) *Card {
	for _, c := range s.Log {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (s *State) PendingCards() []*Card {
	var out []*Card
	for _, c := range s.Log {
		if c.Pending() {
			out = append(out, c)
		}
	}
	return out
}
