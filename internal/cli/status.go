package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show XP, level, achievements, and active challenges",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := openDaemon()
	if err != nil {
		return err
	}
	defer d.Close()

	user := currentUser()
	c := d.Coach()

	xp, err := c.XP().Current(user)
	if err != nil {
		return err
	}
	fmt.Printf("Level %d — %d XP (%.0f%% to level %d)\n",
		xp.Level, xp.TotalXP, xp.Progress*100, xp.Level+1)

	unlocked, err := c.Achievements().ListUnlocked(user)
	if err != nil {
		return err
	}
	fmt.Printf("Achievements: %d/%d unlocked\n", len(unlocked), c.Achievements().TotalCount())

	challenges, err := c.Challenges().Active(user)
	if err != nil {
		return err
	}
	if len(challenges) > 0 {
		fmt.Println("\nActive challenges:")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CHALLENGE\tPROGRESS\tREWARD\tEXPIRES")
		for _, ch := range challenges {
			fmt.Fprintf(w, "%s\t%d/%d\t%d XP\t%s\n",
				ch.Description, ch.Progress, ch.Target, ch.RewardXP,
				ch.ExpiresAt.Format("2006-01-02"))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	pending, err := c.Notifications().Pending(user, 10)
	if err != nil {
		return err
	}
	if len(pending) > 0 {
		fmt.Println("\nNotifications:")
		for _, n := range pending {
			fmt.Printf("  [%s] %s — %s\n", n.Type, n.Title, n.Body)
		}
	}
	return nil
}
