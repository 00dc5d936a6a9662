package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"medical-intake/internal/intake"
)

const resetCommand = ":reset"

func newInterviewCmd(opts *options) *cobra.Command {
	var step string

	cmd := &cobra.Command{
		Use:   "interview",
		Short: "Run an interview reading patient lines from stdin",
		Long: `Read one patient utterance per line and print the next block of
questions, if any.

Type :reset to start a new session with every topic eligible again.

Examples:
  intake interview
  echo "I have been diagnosed with diabetes" | intake interview`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInterview(cmd, opts.catalog, step)
		},
	}
	cmd.Flags().StringVar(&step, "step", "", "checklist step passed to the engine")
	return cmd
}

func runInterview(cmd *cobra.Command, catalog intake.Catalog, step string) error {
	out := cmd.OutOrStdout()
	engine := intake.NewEngine(catalog)
	var history []intake.Entry

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == resetCommand {
			engine.ResetSession()
			history = nil
			fmt.Fprintln(out, "-- session reset")
			continue
		}

		history = append(history, intake.Entry{Speaker: intake.SpeakerPatient, Text: line})
		questions := engine.GenerateQuestion(history, step)
		if len(questions) == 0 {
			fmt.Fprintln(out, "-- no new topic")
			continue
		}

		fmt.Fprintf(out, "== %s [%s]\n", questions[0].Module, questions[0].Sentiment)
		for i, q := range questions {
			fmt.Fprintf(out, "%d. %s\n", i+1, q.Question)
			history = append(history, intake.Entry{Speaker: "Assistant", Text: q.Question})
		}

		if len(engine.CoveredTopics()) == catalog.Len() {
			fmt.Fprintln(out, "-- all topics covered")
		}
	}
	return scanner.Err()
}
