package game

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	MaxCharacters = 4
	HorizonMonths = 120
	YearEndMonth  = 12

	StartingMoney = 100
	MinMoney      = 0
	MaxMoney      = 999_999

	MinStat = 0
	MaxStat = 100

	MaxNameRunes = 20
	DefaultName  = "Protagonist"
	DefaultStat  = 10

	BaseSuccess = 0.62
	MinSuccess  = 0.05
	MaxSuccess  = 0.95

	HighStress           = 80
	MaxNarratedRelations = 10
)

var (
	ErrSetupLocked       = errors.New("setup is locked after the first period")
	ErrRosterFull        = errors.New("roster is full")
	ErrLastCharacter     = errors.New("cannot remove the last character")
	ErrCharacterNotFound = errors.New("character not found")
	ErrSameCharacter     = errors.New("relationship endpoints must differ")
	ErrUnknownActivity   = errors.New("unknown activity")
	ErrUnknownPreset     = errors.New("unknown relationship preset")
	ErrHorizonReached    = errors.New("game has reached its final period")
)

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func ClampStat(v int) int  { return clamp(v, MinStat, MaxStat) }
func ClampMoney(v int) int { return clamp(v, MinMoney, MaxMoney) }

type zodiacCutoff struct {
	sign Zodiac
	day  int
}

// Indexed by month-1: the sign that ends in that month and the last day it covers.
var zodiacCutoffs = [12]zodiacCutoff{
	{ZodiacCapricorn, 19},
	{ZodiacAquarius, 18},
	{ZodiacPisces, 20},
	{ZodiacAries, 19},
	{ZodiacTaurus, 20},
	{ZodiacGemini, 20},
	{ZodiacCancer, 22},
	{ZodiacLeo, 22},
	{ZodiacVirgo, 22},
	{ZodiacLibra, 22},
	{ZodiacScorpio, 21},
	{ZodiacSagittarius, 21},
}

func ZodiacFor(month, day int) Zodiac {
	month = clamp(month, 1, 12)
	day = clamp(day, 1, 31)
	entry := zodiacCutoffs[month-1]
	if day <= entry.day {
		return entry.sign
	}
	return zodiacCutoffs[month%12].sign
}

// Calendar is the 1-based year and month a period index falls on.
type Calendar struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func CalendarAt(periodIndex int) Calendar {
	periodIndex = clamp(periodIndex, 0, HorizonMonths)
	return Calendar{Year: periodIndex/12 + 1, Month: periodIndex%12 + 1}
}

// PeriodNumber is the 1-based number of the period starting at periodIndex.
func PeriodNumber(periodIndex, tickMonths int) int {
	if tickMonths < 1 {
		tickMonths = 1
	}
	return clamp(periodIndex, 0, HorizonMonths)/tickMonths + 1
}

// PeriodMonths lists the calendar months (1-12) covered by the period starting at periodIndex.
func PeriodMonths(periodIndex, tickMonths int) []int {
	if tickMonths < 1 {
		tickMonths = 1
	}
	out := make([]int, 0, tickMonths)
	for i := 0; i < tickMonths && periodIndex+i < HorizonMonths; i++ {
		out = append(out, (periodIndex+i)%12+1)
	}
	return out
}

func RelationKey(fromID, toID string) string {
	return fromID + "->" + toID
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(norm.NFC.String(name))
	if name == "" {
		return DefaultName
	}
	if utf8.RuneCountInString(name) > MaxNameRunes {
		name = string([]rune(name)[:MaxNameRunes])
	}
	return name
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
