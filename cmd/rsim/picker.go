package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"raisingsim/internal/game"
)

type pickerKeys struct {
	Up     key.Binding
	Down   key.Binding
	Pick   key.Binding
	Select key.Binding
	Skip   key.Binding
}

var defaultPickerKeys = pickerKeys{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "previous")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "next")),
	Pick:   key.NewBinding(key.WithKeys("a", "b", "c", "A", "B", "C"), key.WithHelp("a/b/c", "choose")),
	Select: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "confirm")),
	Skip:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "answer later")),
}

type pickerModel struct {
	st     *game.State
	card   *game.Card
	keys   pickerKeys
	cursor int
	picked game.ChoiceTag
	done   bool
}

func newPickerModel(st *game.State, card *game.Card) pickerModel {
	return pickerModel{st: st, card: card, keys: defaultPickerKeys}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.Skip):
		m.done = true
		return m, tea.Quit
	case key.Matches(km, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(km, m.keys.Down):
		if m.cursor < len(m.card.Choices)-1 {
			m.cursor++
		}
	case key.Matches(km, m.keys.Pick):
		tag := game.ChoiceTag(strings.ToUpper(km.String()))
		for i, ch := range m.card.Choices {
			if ch.Tag == tag {
				m.cursor = i
				m.picked = tag
				m.done = true
				return m, tea.Quit
			}
		}
	case key.Matches(km, m.keys.Select):
		if len(m.card.Choices) > 0 {
			m.picked = m.card.Choices[m.cursor].Tag
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	preview := *m.card
	preview.Choices = nil
	b.WriteString(renderCard(m.st, &preview))
	b.WriteString("\n")
	for i, ch := range m.card.Choices {
		line := "  [" + string(ch.Tag) + "] " + ch.Label
		if i == m.cursor {
			line = cardChosen.Render("> [" + string(ch.Tag) + "] " + ch.Label)
		}
		b.WriteString(line + "\n")
	}
	help := make([]string, 0, 5)
	for _, k := range []key.Binding{m.keys.Up, m.keys.Down, m.keys.Pick, m.keys.Select, m.keys.Skip} {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString(cardDim.Render(strings.Join(help, "  ")))
	return b.String()
}

// pickChoice asks for a choice on card. An empty tag means the player wants to stop.
func pickChoice(st *game.State, card *game.Card) (game.ChoiceTag, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return promptCardChoice(st, card)
	}
	out, err := tea.NewProgram(newPickerModel(st, card)).Run()
	if err != nil {
		return "", err
	}
	return out.(pickerModel).picked, nil
}

func promptCardChoice(st *game.State, card *game.Card) (game.ChoiceTag, error) {
	preview := *card
	preview.Choices = nil
	fmt.Println(renderCard(st, &preview))
	options := make([]string, 0, len(card.Choices)+1)
	for _, ch := range card.Choices {
		printInfo("[" + string(ch.Tag) + "] " + ch.Label)
		options = append(options, strings.ToLower(string(ch.Tag)))
	}
	options = append(options, "skip")
	choice, err := promptChoice("Your answer", options, options[0])
	if err != nil {
		return "", err
	}
	if choice == "skip" {
		return "", nil
	}
	return game.ChoiceTag(strings.ToUpper(choice)), nil
}
