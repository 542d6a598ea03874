package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ember-coach/ember/internal/app/coach"
)

func init() {
	checkinCmd.Flags().StringArrayVar(&checkinDone, "done", nil, "Habit id completed today (repeatable)")
	checkinCmd.Flags().IntVar(&checkinMood, "mood", 3, "Mood 1-5")
	checkinCmd.Flags().IntVar(&checkinEnergy, "energy", 3, "Energy 1-5")
	checkinCmd.Flags().IntVar(&checkinStress, "stress", 3, "Stress 1-5")
	checkinCmd.Flags().StringVar(&checkinNote, "note", "", "Free-text reflection")
	rootCmd.AddCommand(checkinCmd)
}

var (
	checkinDone   []string
	checkinMood   int
	checkinEnergy int
	checkinStress int
	checkinNote   string
)

var checkinCmd = &cobra.Command{
	Use:   "checkin <goal-id>",
	Short: "Record today's check-in for a goal",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckin,
}

func runCheckin(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	result, err := d.Coach().SubmitCheckIn(context.Background(), coach.CheckInRequest{
		UserID:            currentUser(),
		GoalID:            args[0],
		CompletedHabitIDs: checkinDone,
		Mood:              checkinMood,
		Energy:            checkinEnergy,
		Stress:            checkinStress,
		Reflection:        checkinNote,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Checked in on %q — %.0f%% of habits done.\n", result.Goal.Title, result.CompletionRate*100)
	if result.StreakContinued {
		fmt.Printf("Streak: %d days (best %d)\n", result.Goal.CurrentStreak, result.Goal.BestStreak)
	} else {
		fmt.Println("Streak reset. Tomorrow is a fresh start.")
	}
	fmt.Printf("XP: %d (level %d)\n", result.XP.TotalXP, result.XP.Level)
	if result.LeveledUp {
		fmt.Printf("Level up! You are now level %d.\n", result.XP.Level)
	}
	for _, a := range result.NewAchievements {
		fmt.Printf("Achievement unlocked: %s %s (+%d XP)\n", a.Icon, a.Name, a.RewardXP)
	}
	for _, ch := range result.CompletedChallenges {
		fmt.Printf("Challenge complete: %s (+%d XP)\n", ch.Description, ch.RewardXP)
	}
	fmt.Println()
	fmt.Println(result.CoachReply)
	return nil
}
