package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vytor/quizflash/internal/models"
)

func newSourcesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the available question sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := c.app.Quiz.Sources(c.ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range sources {
				fmt.Fprintf(out, "%s\t%s\n", s.Name, s.DisplayName)
			}
			return nil
		},
	}
}

func newRemainingCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "remaining [source...]",
		Short: "Count the questions not yet mastered",
		Long:  "Count the questions not yet mastered in the given sources, or in every source when none is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.app.Quiz.Remaining(c.ctx, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Remaining questions: %d of %d (%d mastered)\n", r.Remaining, r.Total, r.Mastered)
			if len(r.Failed) > 0 {
				fmt.Fprintf(out, "Unavailable: %s\n", strings.Join(r.Failed, ", "))
			}
			return nil
		},
	}
}

func newPlayCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "play [source...]",
		Short: "Play a quiz in the terminal",
		Long: "Play a quiz over the given sources, or every source when none is given. " +
			"Answer with the option number; q quits and discards the attempt.",
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := c.app.Quiz.Start(c.ctx, args)
			if err != nil {
				return err
			}
			return c.play(cmd.InOrStdin(), cmd.OutOrStdout(), view)
		},
	}
}

// play runs the answer/next loop until the session finishes or the player
// quits.
func (c *cli) play(in io.Reader, out io.Writer, view *models.SessionView) error {
	scanner := bufio.NewScanner(in)
	if len(view.FailedSource) > 0 {
		fmt.Fprintf(out, "Unavailable sources skipped: %s\n", strings.Join(view.FailedSource, ", "))
	}

	for view.State != models.StateFinished {
		q := view.Question
		fmt.Fprintf(out, "\nQuestion %d/%d: %s\n", view.Index+1, view.Total, q.Text)
		if q.PreviousOutcome == models.Incorrect {
			fmt.Fprintln(out, "  (missed last time)")
		}
		for i, opt := range q.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
		}

		choice, ok := readChoice(scanner, out, len(q.Options))
		if !ok {
			fmt.Fprintln(out, "Quiz abandoned.")
			return c.app.Quiz.Abandon(c.ctx)
		}

		answered, err := c.app.Quiz.Answer(c.ctx, view.SessionID, q.Options[choice])
		if err != nil {
			return err
		}
		if fb := answered.LastAnswer; fb.Correct {
			fmt.Fprintln(out, "Correct!")
		} else {
			fmt.Fprintf(out, "Wrong. The answer was: %s\n", fb.CorrectOption)
		}

		view, err = c.app.Quiz.Next(c.ctx, view.SessionID)
		if err != nil {
			return err
		}
	}

	r := view.Result
	fmt.Fprintf(out, "\nScore: %d/%d (%d wrong) in %s\n", r.Score, r.Total, r.Wrong, r.Elapsed.Round(time.Second))
	return nil
}

// readChoice prompts until a valid option number is entered. It returns
// false on q or end of input.
func readChoice(scanner *bufio.Scanner, out io.Writer, n int) (int, bool) {
	for {
		fmt.Fprintf(out, "Answer [1-%d, q to quit]: ", n)
		if !scanner.Scan() {
			return 0, false
		}
		text := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(text, "q") {
			return 0, false
		}
		i, err := strconv.Atoi(text)
		if err == nil && i >= 1 && i <= n {
			return i - 1, true
		}
		fmt.Fprintln(out, "Please enter an option number.")
	}
}
