package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"raisingsim/internal/game"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

var (
	cardBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1).
		Width(64)
	cardTitle   = lipgloss.NewStyle().Bold(true)
	cardDim     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	cardSpeaker = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	cardChosen  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
)

var kindColors = map[game.CardKind]lipgloss.Color{
	game.CardTask:          lipgloss.Color("12"),
	game.CardBirthday:      lipgloss.Color("13"),
	game.CardPersonal:      lipgloss.Color("11"),
	game.CardRelationEvent: lipgloss.Color("14"),
	game.CardStageChange:   lipgloss.Color("9"),
	game.CardTournament:    lipgloss.Color("3"),
	game.CardHighlight:     lipgloss.Color("10"),
	game.CardResult:        lipgloss.Color("7"),
}

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptChoice(label string, options []string, defaultValue string) (string, error) {
	normalized := make(map[string]struct{}, len(options))
	for _, opt := range options {
		normalized[strings.ToLower(strings.TrimSpace(opt))] = struct{}{}
	}
	for {
		fmt.Printf("%s (%s) [%s]: ", label, strings.Join(options, "/"), defaultValue)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.ToLower(strings.TrimSpace(text))
		if text == "" {
			text = strings.ToLower(strings.TrimSpace(defaultValue))
		}
		if _, ok := normalized[text]; ok {
			return text, nil
		}
		printWarn("Invalid option. Please pick one of the listed values.")
	}
}

func renderStatus(st *game.State, tickMonths int) error {
	cal := game.CalendarAt(st.PeriodIndex)
	accent.Printf("Year %d, month %d", cal.Year, cal.Month)
	neutral.Printf("  (period %d)  money %d\n", game.PeriodNumber(st.PeriodIndex, tickMonths), st.Money)
	if st.Finished() {
		warn.Println("The final period has been played.")
	} else if st.SetupUnlocked {
		printInfo("Setup is open: add, edit, remove and preset are allowed until the first advance.")
	}
	fmt.Println()

	for _, c := range st.Characters {
		accent.Printf("%s", c.Name)
		neutral.Printf("  %s  %s  born %d/%d\n", c.Personality, c.Zodiac, c.Birthday.Month, c.Birthday.Day)
		s := c.Stats
		fmt.Printf("  INT %3d  CHA %3d  STR %3d  ART %3d  MOR %3d  ", s.Intellect, s.Charm, s.Strength, s.Art, s.Morality)
		fmt.Println(colorizeStress(s.Stress))
		var skills []string
		for _, a := range game.Activities() {
			sk := c.Skills[a]
			skills = append(skills, fmt.Sprintf("%s Lv%d (%d xp)", game.ActivityLabel(a), sk.Level, sk.Exp))
		}
		fmt.Println(cardDim.Render("  " + strings.Join(skills, "  ")))
	}

	if len(st.Relations) == 0 {
		return nil
	}
	fmt.Println()
	keys := make([]string, 0, len(st.Relations))
	for k := range st.Relations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		r := st.Relations[k]
		fmt.Printf("%-24s %-10s aff %4d  trust %3d  tension %3d  romance %3d\n",
			truncate(nameOf(st, r.FromID)+" -> "+nameOf(st, r.ToID), 24), r.Stage, r.Affinity, r.Trust, r.Tension, r.Romance)
	}
	return nil
}

func renderEntries(st *game.State, entries []*game.Card) {
	for _, c := range entries {
		fmt.Println(renderCard(st, c))
	}
}

func renderCard(st *game.State, c *game.Card) string {
	col, ok := kindColors[c.Kind]
	if !ok {
		col = lipgloss.Color("7")
	}
	var b strings.Builder
	header := cardTitle.Foreground(col).Render(c.Title)
	cal := game.CalendarAt(c.PeriodIndex)
	b.WriteString(header + cardDim.Render(fmt.Sprintf("  Y%d M%d  %s", cal.Year, cal.Month, c.Kind)))
	if c.Narration != "" {
		b.WriteString("\n" + c.Narration)
	}
	for _, d := range c.Dialogues {
		b.WriteString("\n" + cardSpeaker.Render(d.Speaker+":") + " " + d.Line)
	}
	for _, ch := range c.Choices {
		line := fmt.Sprintf("[%s] %s", ch.Tag, ch.Label)
		if ch.Tag == c.ChoiceMade {
			line = cardChosen.Render(line + "  *")
		}
		b.WriteString("\n" + line)
	}
	if c.Pending() {
		b.WriteString("\n" + cardDim.Render("card "+shortID(c.ID)))
	}
	return cardBox.BorderForeground(col).Render(b.String())
}

func nameOf(st *game.State, id string) string {
	if c := st.Character(id); c != nil {
		return c.Name
	}
	return "?"
}

func colorizeStress(v int) string {
	label := fmt.Sprintf("STRESS %3d", v)
	switch {
	case v >= game.HighStress:
		return danger.Sprint(label)
	case v >= game.HighStress/2:
		return warn.Sprint(label)
	default:
		return success.Sprint(label)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
