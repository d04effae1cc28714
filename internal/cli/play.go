package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/robalobadob/wordimize/internal/config"
	"github.com/robalobadob/wordimize/internal/daily"
	"github.com/robalobadob/wordimize/internal/game"
	"github.com/robalobadob/wordimize/internal/logging"
	"github.com/robalobadob/wordimize/internal/tui"
	"github.com/robalobadob/wordimize/internal/words"
)

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		Long: `Play a round in the terminal.

Keys: a or + to answer, enter to submit, esc to cancel,
r for a new source word, q to quit.`,
		Args: cobra.NoArgs,
		RunE: runPlay,
	}
	cmd.Flags().Bool("daily", false, "Play today's daily word")
	return cmd
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath(cmd))
	if err != nil {
		return err
	}
	// The terminal belongs to the game screen.
	logging.Discard()

	lists, err := words.Load(cfg.SourceFile, cfg.DictionaryFile)
	if err != nil {
		return err
	}
	isDaily, _ := cmd.Flags().GetBool("daily")
	round, picker, err := newPlayRound(cfg, lists, isDaily, time.Now())
	if err != nil {
		return err
	}

	if err := tui.Run(cmd.Context(), round, lists, picker); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d words found in round %d\n", round.Source, round.Found(), round.Number)
	return nil
}

// newPlayRound builds the local round and where its next source words come from.
func newPlayRound(cfg *config.Config, lists *words.Lists, isDaily bool, now time.Time) (*game.Round, game.Picker, error) {
	picker := game.RandomPicker(lists)
	mode := game.ModeFree
	if isDaily {
		picker = daily.Picker(lists, now, cfg.DailySalt)
		mode = game.ModeDaily
	}
	round, err := game.New(picker.Pick(1),
		game.WithMode(mode),
		game.WithMaxMistakes(cfg.MaxMistakes),
		game.WithMinLength(cfg.MinLength),
	)
	if err != nil {
		return nil, nil, err
	}
	return round, picker, nil
}
