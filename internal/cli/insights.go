package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ember-coach/ember/internal/domain"
)

func init() {
	rootCmd.AddCommand(insightsCmd)
}

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show your behavior features and drift risk",
	RunE:  runInsights,
}

func runInsights(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	features, pred, err := d.Coach().Insights(currentUser())
	if err != nil {
		return err
	}

	fmt.Printf("Observed window: %d days, %d actions\n", features.ObservedDays, features.TotalActions)
	fmt.Printf("Daily engagement:  %.2f actions/day (consistency %.2f)\n",
		features.AvgDailyEngagement, features.EngagementConsistency)
	fmt.Printf("Progress trend:    %+.2f\n", features.ProgressTrend)
	fmt.Printf("Sentiment trend:   %+.2f\n", features.SentimentTrend)
	if features.DaysSinceLastAction == domain.NoRecentAction {
		fmt.Println("Last action:       none recorded")
	} else {
		fmt.Printf("Last action:       %d day(s) ago\n", features.DaysSinceLastAction)
	}

	fmt.Println()
	fmt.Printf("Drift risk: %.2f (confidence %.2f)\n", pred.RiskScore, pred.Confidence)
	if pred.PredictedDriftDate != nil {
		fmt.Printf("Predicted drift date: %s\n", pred.PredictedDriftDate.Format("2006-01-02"))
	}
	for _, rec := range pred.Recommendations {
		fmt.Printf("  - %s\n", rec)
	}
	return nil
}
