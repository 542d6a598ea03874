package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	goalCreateCmd.Flags().StringArrayVar(&goalHabits, "habit", nil, "Habit to track under this goal (repeatable)")
	goalCmd.AddCommand(goalCreateCmd)
	goalCmd.AddCommand(goalListCmd)
	rootCmd.AddCommand(goalCmd)
}

var goalHabits []string

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage goals and their habit lists",
}

var goalCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new goal",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalCreate,
}

func runGoalCreate(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	goal, err := d.Coach().CreateGoal(currentUser(), args[0], goalHabits)
	if err != nil {
		return err
	}

	fmt.Printf("Created goal %q (%s)\n", goal.Title, goal.ID)
	for _, h := range goal.Habits {
		fmt.Printf("  habit %s  %s\n", h.ID, h.Text)
	}
	return nil
}

var goalListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List your goals",
	RunE:    runGoalList,
}

func runGoalList(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	goals, err := d.Coach().GoalsFor(currentUser())
	if err != nil {
		return err
	}

	if len(goals) == 0 {
		fmt.Println("No goals yet. Run 'ember goal create <title>' to get started.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTREAK\tBEST\tPROGRESS\tHABITS")
	for _, g := range goals {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.0f%%\t%d\n",
			g.ID,
			g.Title,
			g.CurrentStreak,
			g.BestStreak,
			g.Progress,
			len(g.Habits),
		)
	}
	return w.Flush()
}
