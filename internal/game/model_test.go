package game

import (
	"testing"
	"unicode/utf8"
)

type scriptedRand struct {
	floats []float64
	i      int
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.5
	}
	v := r.floats[r.i%len(r.floats)]
	r.i++
	return v
}

func (r *scriptedRand) Intn(n int) int { return 0 }

func always(v float64) *scriptedRand { return &scriptedRand{floats: []float64{v}} }

func TestZodiacFor(t *testing.T) {
	tests := []struct {
		month, day int
		want       Zodiac
	}{
		{1, 19, ZodiacCapricorn},
		{1, 20, ZodiacAquarius},
		{2, 18, ZodiacAquarius},
		{2, 19, ZodiacPisces},
		{3, 21, ZodiacAries},
		{7, 22, ZodiacCancer},
		{7, 23, ZodiacLeo},
		{12, 21, ZodiacSagittarius},
		{12, 22, ZodiacCapricorn},
		{0, 0, ZodiacCapricorn},
		{13, 40, ZodiacCapricorn},
	}
	for _, tc := range tests {
		if got := ZodiacFor(tc.month, tc.day); got != tc.want {
			t.Fatalf("month=%d day=%d got=%s want=%s", tc.month, tc.day, got, tc.want)
		}
	}
	if ZodiacFor(1, 19) == ZodiacFor(1, 20) {
		t.Fatalf("expected 1/19 and 1/20 to map to different signs")
	}
}

func TestCalendarAt(t *testing.T) {
	tests := []struct {
		index int
		want  Calendar
	}{
		{0, Calendar{Year: 1, Month: 1}},
		{11, Calendar{Year: 1, Month: 12}},
		{12, Calendar{Year: 2, Month: 1}},
		{119, Calendar{Year: 10, Month: 12}},
	}
	for _, tc := range tests {
		if got := CalendarAt(tc.index); got != tc.want {
			t.Fatalf("index=%d got=%+v want=%+v", tc.index, got, tc.want)
		}
	}
	if got := PeriodNumber(10, 2); got != 6 {
		t.Fatalf("got period number %d want 6", got)
	}
}

func TestPeriodMonths(t *testing.T) {
	got := PeriodMonths(10, 2)
	if len(got) != 2 || got[0] != 11 || got[1] != 12 {
		t.Fatalf("got %v want [11 12]", got)
	}
	got = PeriodMonths(119, 2)
	if len(got) != 1 || got[0] != 12 {
		t.Fatalf("expected the horizon to cut the last period short, got %v", got)
	}
}

func TestSanitizeName(t *testing.T) {
	if got := sanitizeName("   "); got != DefaultName {
		t.Fatalf("got %q want default name", got)
	}
	long := "abcdefghijklmnopqrstuvwxyz"
	if got := sanitizeName(long); utf8.RuneCountInString(got) != MaxNameRunes {
		t.Fatalf("got %d runes want %d", utf8.RuneCountInString(got), MaxNameRunes)
	}
	// decomposed Hangul jamo compose into a single syllable
	if got := sanitizeName("\u1112\u1161\u11ab"); got != "\ud55c" {
		t.Fatalf("got %q want composed syllable", got)
	}
}

func TestClampMoneyAndStat(t *testing.T) {
	if ClampMoney(-5) != 0 || ClampMoney(2_000_000) != MaxMoney {
		t.Fatalf("money clamp out of range")
	}
	if ClampStat(-1) != 0 || ClampStat(101) != 100 {
		t.Fatalf("stat clamp out of range")
	}
}
