package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	cl "raisingsim/internal/cli"
	"raisingsim/internal/config"
	"raisingsim/internal/export"
	"raisingsim/internal/game"
	"raisingsim/internal/narration"
	"raisingsim/internal/store"
)

var errNoGame = errors.New("no game in this slot; run `rsim new` first")

type app struct {
	cfg  config.Config
	log  *slog.Logger
	slot string
}

func main() {
	a := &app{}

	root := &cobra.Command{
		Use:          "rsim",
		Short:        "Raise a small cast of characters one period at a time",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVar(&a.slot, "slot", "", "save slot to play (defaults to the last one used)")

	root.AddCommand(
		newNewCmd(a),
		newSlotCmd(a),
		newStatusCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newRemoveCmd(a),
		newPresetCmd(a),
		newSettingsCmd(a),
		newAdvanceCmd(a),
		newPendingCmd(a),
		newChooseCmd(a),
		newLogCmd(a),
		newPlayCmd(a),
		newExportCmd(a),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) setup() error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}
	if cfg.Store.Driver == store.DriverSQLite && strings.TrimSpace(cfg.Store.SQLitePath) == "" {
		path, err := cl.DefaultSQLitePath()
		if err != nil {
			return err
		}
		cfg.Store.SQLitePath = path
	}
	a.cfg = cfg
	level := cfg.SlogLevel()
	if level < slog.LevelWarn {
		level = slog.LevelWarn
	}
	a.log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if strings.TrimSpace(a.slot) == "" {
		p, err := cl.LoadProfile()
		if err != nil {
			return err
		}
		a.slot = p.Slot
	}
	return nil
}

func (a *app) key() string {
	return cl.SlotKey(a.cfg.SaveKey, a.slot)
}

func (a *app) engine() (*game.Engine, error) {
	narrator, err := narration.New(a.cfg.NarrationOptions())
	if err != nil {
		return nil, err
	}
	return game.NewEngine(a.cfg.EngineOptions(), narrator, a.log), nil
}

// withGame loads the slot, runs fn and saves the result when fn succeeds and save is set.
func (a *app) withGame(ctx context.Context, save bool, fn func(ctx context.Context, st *game.State) error) error {
	b, err := store.Open(ctx, a.cfg.StoreOptions(), a.log)
	if err != nil {
		return err
	}
	defer b.Close()

	st, ok := store.LoadState(ctx, b, a.key(), a.log)
	if !ok {
		return errNoGame
	}
	if err := fn(ctx, st); err != nil {
		return err
	}
	if !save {
		return nil
	}
	return store.SaveState(ctx, b, a.key(), st)
}

func newNewCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new game in the current slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := store.Open(ctx, a.cfg.StoreOptions(), a.log)
			if err != nil {
				return err
			}
			defer b.Close()
			if _, exists := store.LoadState(ctx, b, a.key(), a.log); exists && !force {
				return fmt.Errorf("slot %q already has a game; pass --force to overwrite", a.slot)
			}
			st := game.NewState()
			st.UpdateSettings(a.cfg.NewGameSettings())
			if err := store.SaveState(ctx, b, a.key(), st); err != nil {
				return err
			}
			if err := cl.SaveProfile(cl.Profile{Slot: a.slot}); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("New game started in slot %q.", a.slot))
			return renderStatus(st, a.cfg.Engine.TickMonths)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing game")
	return cmd
}

func newSlotCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "slot [name]",
		Short: "Show or switch the default save slot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				printInfo("Current slot: " + a.slot)
				return nil
			}
			if err := cl.SaveProfile(cl.Profile{Slot: args[0]}); err != nil {
				return err
			}
			printSuccess("Switched to slot " + strings.ToLower(strings.TrimSpace(args[0])) + ".")
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the roster, relationships and calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGame(cmd.Context(), false, func(ctx context.Context, st *game.State) error {
				return renderStatus(st, a.cfg.Engine.TickMonths)
			})
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	var (
		name        string
		personality string
		birthday    string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a character (setup only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(name) == "" {
				v, err := promptRequired("Name")
				if err != nil {
					return err
				}
				name = v
			}
			month, day, err := parseBirthday(birthday)
			if err != nil {
				return err
			}
			return a.withGame(cmd.Context(), true, func(ctx context.Context, st *game.State) error {
				c, err := st.AddCharacter(game.CharacterInput{
					Name:        name,
					Personality: game.Personality(personality),
					BirthMonth:  month,
					BirthDay:    day,
				})
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Added %s (%s, %s).", c.Name, c.Personality, c.Zodiac))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "character name")
	cmd.Flags().StringVar(&personality, "personality", string(game.DefaultPersonality), "four-letter personality type")
	cmd.Flags().StringVar(&birthday, "birthday", "1-1", "birthday as month-day")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var (
		name        string
		personality string
		birthday    string
	)
	cmd := &cobra.Command{
		Use:   "edit <character>",
		Short: "Edit a character (setup only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var edit game.CharacterEdit
			if cmd.Flags().Changed("name") {
				edit.Name = &name
			}
			if cmd.Flags().Changed("personality") {
				p := game.Personality(personality)
				edit.Personality = &p
			}
			if cmd.Flags().Changed("birthday") {
				month, day, err := parseBirthday(birthday)
				if err != nil {
					return err
				}
				edit.BirthMonth, edit.BirthDay = &month, &day
			}
			return a.withGame(cmd.Context(), true, func(ctx context.Context, st *game.State) error {
				target, err := findCharacter(st, args[0])
				if err != nil {
					return err
				}
				c, err := st.EditCharacter(target.ID, edit)
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("Updated %s (%s, %s).", c.Name, c.Personality, c.Zodiac))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&personality, "personality", "", "new personality type")
	cmd.Flags().StringVar(&birthday, "birthday", "", "new birthday as month-day")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <character>",
		Short: "Remove a character and their relationships (setup only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGame(cmd.Context(), true, func(ctx context.Context, st *game.State) error {
				target, err := findCharacter(st, args[0])
				if err != nil {
					return err
				}
				if err := st.RemoveCharacter(target.ID); err != nil {
					return err
				}
				printSuccess("Removed " + target.Name + ".")
				return nil
			})
		},
	}
}

func newPresetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "preset <from> <to> <strangers|rivals|family|crush>",
		Short: "Set how one character starts out feeling about another (setup only)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGame(cmd.Context(), true, func(ctx context.Context, st *game.State) error {
				from, err := findCharacter(st, args[0])
				if err != nil {
					return err
				}
				to, err := findCharacter(st, args[1])
				if err != nil {
					return err
				}
				rel, err := st.SetRelationPreset(from.ID, to.ID, game.Preset(strings.ToLower(args[2])))
				if err != nil {
					return err
				}
				printSuccess(fmt.Sprintf("%s -> %s is now %s.", from.Name, to.Name, rel.Stage))
				return nil
			})
		},
	}
}

func newSettingsCmd(a *app) *cobra.Command {
	var (
		narrate  bool
		endpoint string
	)
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change narration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			changed := cmd.Flags().Changed("narration") || cmd.Flags().Changed("endpoint")
			return a.withGame(cmd.Context(), changed, func(ctx context.Context, st *game.State) error {
				next := st.Settings
				if cmd.Flags().Changed("narration") {
					next.NarrationEnabled = narrate
				}
				if cmd.Flags().Changed("endpoint") {
					next.Endpoint = strings.TrimSpace(endpoint)
				}
				st.UpdateSettings(next)
				printInfo(fmt.Sprintf("narration: %s  endpoint: %s", onOff(st.Settings.NarrationEnabled), orDash(st.Settings.Endpoint)))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&narrate, "narration", false, "enable narrated highlights")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "narration endpoint URL")
	return cmd
}

func newAdvanceCmd(a *app) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "advance",
		Short: "Play one period",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.engine()
			if err != nil {
				return err
			}
			return a.withGame(cmd.Context(), true, func(ctx context.Context, st *game.State) error {
				selections, err := collectSelections(st, sets)
				if err != nil {
					return err
				}
				entries, err := eng.AdvancePeriod(ctx, st, selections)
				if err != nil {
					return err
				}
				renderEntries(st, entries)
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "activity for a character as name=activity (repeatable)")
	return cmd
}

func newPendingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List cards still waiting for a choice",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGame(cmd.Context(), false, func(ctx context.Context, st *game.State) error {
				cards := st.PendingCards()
				if len(cards) == 0 {
					printInfo("Nothing is waiting on you.")
					return nil
				}
				for _, c := range cards {
					fmt.Println(renderCard(st, c))
				}
				return nil
			})
		},
	}
}

func newChooseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "choose <card> <A|B|C>",
		Short: "Answer a pending card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.engine()
			if err != nil {
				return err
			}
			return a.withGame(cmd.Context(), true, func(ctx context.Context, st *game.State) error {
				card, err := findPendingCard(st, args[0])
				if err != nil {
					return err
				}
				return resolve(eng, st, card, game.ChoiceTag(strings.ToUpper(strings.TrimSpace(args[1]))))
			})
		},
	}
}

func newLogCmd(a *app) *cobra.Command {
	var last int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the story so far",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withGame(cmd.Context(), false, func(ctx context.Context, st *game.State) error {
				cards := st.Log
				if last > 0 && len(cards) > last {
					cards = cards[len(cards)-last:]
				}
				if len(cards) == 0 {
					printInfo("The story has not started yet.")
					return nil
				}
				for _, c := range cards {
					fmt.Println(renderCard(st, c))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&last, "last", 20, "number of entries to show (0 for all)")
	return cmd
}

func newPlayCmd(a *app) *cobra.Command {
	var periods int
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Advance and answer every card interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.engine()
			if err != nil {
				return err
			}
			if periods < 1 {
				periods = 1
			}
			return a.withGame(cmd.Context(), true, func(ctx context.Context, st *game.State) error {
				for i := 0; i < periods; i++ {
					if st.Finished() {
						printWarn("The final period has been played.")
						return nil
					}
					selections, err := collectSelections(st, nil)
					if err != nil {
						return err
					}
					entries, err := eng.AdvancePeriod(ctx, st, selections)
					if err != nil {
						return err
					}
					renderEntries(st, entries)
					for _, card := range st.PendingCards() {
						tag, err := pickChoice(st, card)
						if err != nil {
							return err
						}
						if tag == "" {
							printWarn("Left the remaining cards for later.")
							return nil
						}
						if err := resolve(eng, st, card, tag); err != nil {
							return err
						}
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&periods, "periods", "n", 1, "number of periods to play")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [path]",
		Short: "Write the whole game to a JSON file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			path := export.Filename(now)
			if len(args) == 1 {
				path = args[0]
			}
			return a.withGame(cmd.Context(), false, func(ctx context.Context, st *game.State) error {
				if err := export.WriteFile(path, st, now); err != nil {
					return err
				}
				printSuccess("Exported to " + path + ".")
				return nil
			})
		},
	}
}

func resolve(eng *game.Engine, st *game.State, card *game.Card, tag game.ChoiceTag) error {
	entries, ok := eng.ResolveChoice(st, card.ID, tag)
	if !ok {
		return fmt.Errorf("choice %q is not available on this card", tag)
	}
	renderEntries(st, entries)
	return nil
}

func collectSelections(st *game.State, sets []string) (map[string]game.Activity, error) {
	out := make(map[string]game.Activity, len(st.Characters))
	for _, raw := range sets {
		name, activity, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q, want name=activity", raw)
		}
		c, err := findCharacter(st, name)
		if err != nil {
			return nil, err
		}
		a := game.Activity(strings.ToLower(strings.TrimSpace(activity)))
		if !a.Valid() {
			return nil, fmt.Errorf("%w: %q", game.ErrUnknownActivity, activity)
		}
		out[c.ID] = a
	}
	if len(sets) > 0 {
		return out, nil
	}
	options := make([]string, 0, len(game.Activities()))
	for _, a := range game.Activities() {
		options = append(options, string(a))
	}
	for _, c := range st.Characters {
		choice, err := promptChoice(c.Name+" will", options, string(game.ActivityRest))
		if err != nil {
			return nil, err
		}
		out[c.ID] = game.Activity(choice)
	}
	return out, nil
}

func findCharacter(st *game.State, ref string) (*game.Character, error) {
	if c := st.Character(ref); c != nil {
		return c, nil
	}
	if c := st.CharacterByName(ref); c != nil {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %q", game.ErrCharacterNotFound, ref)
}

// findPendingCard accepts a full card id or any unambiguous prefix of a pending one.
func findPendingCard(st *game.State, ref string) (*game.Card, error) {
	ref = strings.TrimSpace(ref)
	if c := st.Card(ref); c != nil {
		return c, nil
	}
	var match *game.Card
	for _, c := range st.PendingCards() {
		if strings.HasPrefix(c.ID, ref) {
			if match != nil {
				return nil, fmt.Errorf("card prefix %q is ambiguous", ref)
			}
			match = c
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no pending card matches %q", ref)
	}
	return match, nil
}

func parseBirthday(raw string) (int, int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, 1, nil
	}
	m, d, ok := strings.Cut(raw, "-")
	if !ok {
		m, d, ok = strings.Cut(raw, "/")
	}
	if !ok {
		return 0, 0, fmt.Errorf("invalid birthday %q, want month-day", raw)
	}
	month, err := strconv.Atoi(strings.TrimSpace(m))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid birthday month %q", m)
	}
	day, err := strconv.Atoi(strings.TrimSpace(d))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid birthday day %q", d)
	}
	return month, day, nil
}
