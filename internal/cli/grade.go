package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lms-quiz-service/internal/config"
	"lms-quiz-service/internal/normalize"
	"lms-quiz-service/internal/scoring"
)

// NewGradeCmd scores an answers file against a quiz file offline.
func NewGradeCmd(configPath *string) *cobra.Command {
	var (
		quizFile    string
		answersFile string
		threshold   int
		autoGrade   bool
	)
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Score an answers JSON file against a quiz JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = cfg.Scoring.PassThreshold
			}
			if !cmd.Flags().Changed("auto-grade") {
				autoGrade = cfg.Scoring.AutoGradeShortAnswers
			}

			rawQuiz, err := os.ReadFile(quizFile)
			if err != nil {
				return fmt.Errorf("read quiz: %w", err)
			}
			quiz, err := normalize.DecodeQuiz(rawQuiz)
			if err != nil {
				return err
			}

			rawAnswers, err := os.ReadFile(answersFile)
			if err != nil {
				return fmt.Errorf("read answers: %w", err)
			}
			var answers map[string]any
			if err := json.Unmarshal(rawAnswers, &answers); err != nil {
				return fmt.Errorf("decode answers: %w", err)
			}

			result := scoring.NewEngine(scoring.WithAutoGrade(autoGrade)).Score(quiz, normalize.Answers(answers), threshold)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVar(&quizFile, "quiz", "", "quiz JSON file")
	cmd.Flags().StringVar(&answersFile, "answers", "", "answers JSON file ({questionId: value})")
	cmd.Flags().IntVar(&threshold, "threshold", scoring.DefaultPassThreshold, "pass threshold percentage")
	cmd.Flags().BoolVar(&autoGrade, "auto-grade", false, "grade short answers by exact match")
	_ = cmd.MarkFlagRequired("quiz")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}
