package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/assistkit/assistkit/internal/container"
	"github.com/assistkit/assistkit/internal/n8n"
)

var workflowCmd = &cobra.Command{
	Use:   "workflow",
	Short: "Invoke and schedule n8n workflows",
}

func init() {
	workflowCmd.AddCommand(workflowInvokeCmd)
	workflowCmd.AddCommand(workflowScheduleCmd)
	workflowCmd.AddCommand(workflowServeCmd)

	workflowScheduleCmd.AddCommand(scheduleListCmd)
	workflowScheduleCmd.AddCommand(scheduleAddCmd)
	workflowScheduleCmd.AddCommand(scheduleRemoveCmd)
	workflowScheduleCmd.AddCommand(scheduleEnableCmd)
	workflowScheduleCmd.AddCommand(scheduleRunCmd)
}

// ---- invoke ----------------------------------------------------------------

var workflowSession string

var workflowInvokeCmd = &cobra.Command{
	Use:   "invoke <input>",
	Short: "Send input to the workflow and print its response",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		c, err := buildContainer()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		out, err := c.Workflow().Invoke(ctx, strings.Join(args, " "), workflowSession)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	workflowInvokeCmd.Flags().StringVarP(&workflowSession, "session", "s", "", "Session ID for workflow memory")
}

// ---- schedule --------------------------------------------------------------

var workflowScheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage scheduled workflow invocations",
}

var scheduleListAll bool

var scheduleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled jobs",
	RunE: func(_ *cobra.Command, _ []string) error {
		svc, _, err := buildScheduler()
		if err != nil {
			return err
		}
		jobs := svc.ListAllJobs(scheduleListAll)
		if len(jobs) == 0 {
			fmt.Println("No scheduled jobs.")
			return nil
		}
		fmt.Printf("%-10s %-20s %-25s %-10s %-20s\n", "ID", "Name", "Schedule", "Status", "Next Run")
		fmt.Println(strings.Repeat("-", 88))
		for _, j := range jobs {
			status := "enabled"
			if !j.Enabled {
				status = "disabled"
			}
			nextRun := ""
			if j.State.NextRunAtMs != nil {
				nextRun = time.UnixMilli(*j.State.NextRunAtMs).Format("2006-01-02 15:04")
			}
			fmt.Printf("%-10s %-20s %-25s %-10s %-20s\n",
				j.ID, truncStr(j.Name, 19), truncStr(formatSchedule(j.Schedule), 24), status, nextRun)
		}
		return nil
	},
}

func init() {
	scheduleListCmd.Flags().BoolVarP(&scheduleListAll, "all", "a", false, "Include disabled jobs")
}

var (
	scheduleAddName    string
	scheduleAddInput   string
	scheduleAddEvery   int
	scheduleAddCron    string
	scheduleAddTZ      string
	scheduleAddAt      string
	scheduleAddSession string
	scheduleAddNotify  bool
)

var scheduleAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a scheduled job",
	RunE: func(_ *cobra.Command, _ []string) error {
		if scheduleAddTZ != "" && scheduleAddCron == "" {
			return fmt.Errorf("--tz can only be used with --cron")
		}

		var sched n8n.Schedule
		switch {
		case scheduleAddEvery > 0:
			everyMs := int64(scheduleAddEvery) * 1000
			sched = n8n.Schedule{Kind: "every", EveryMs: &everyMs}
		case scheduleAddCron != "":
			sched = n8n.Schedule{Kind: "cron", Expr: &scheduleAddCron}
			if scheduleAddTZ != "" {
				sched.TZ = &scheduleAddTZ
			}
		case scheduleAddAt != "":
			dt, err := time.ParseInLocation("2006-01-02T15:04:05", scheduleAddAt, time.Local)
			if err != nil {
				dt, err = time.Parse(time.RFC3339, scheduleAddAt)
				if err != nil {
					return fmt.Errorf("invalid --at value %q: %w", scheduleAddAt, err)
				}
			}
			atMs := dt.UnixMilli()
			sched = n8n.Schedule{Kind: "at", AtMs: &atMs}
		default:
			return fmt.Errorf("must specify --every, --cron, or --at")
		}

		svc, _, err := buildScheduler()
		if err != nil {
			return err
		}
		payload := n8n.Payload{
			Input:     scheduleAddInput,
			SessionID: scheduleAddSession,
			Notify:    scheduleAddNotify,
		}
		id, err := svc.AddJob(scheduleAddName, sched, payload, sched.Kind == "at")
		if err != nil {
			return err
		}
		fmt.Printf("✓ Added job '%s' (%s)\n", scheduleAddName, id)
		return nil
	},
}

func init() {
	scheduleAddCmd.Flags().StringVarP(&scheduleAddName, "name", "n", "", "Job name (required)")
	scheduleAddCmd.Flags().StringVarP(&scheduleAddInput, "input", "i", "", "Input sent to the workflow (required)")
	scheduleAddCmd.Flags().IntVarP(&scheduleAddEvery, "every", "e", 0, "Run every N seconds")
	scheduleAddCmd.Flags().StringVarP(&scheduleAddCron, "cron", "c", "", "Cron expression (e.g. '0 9 * * *')")
	scheduleAddCmd.Flags().StringVar(&scheduleAddTZ, "tz", "", "IANA timezone for --cron")
	scheduleAddCmd.Flags().StringVar(&scheduleAddAt, "at", "", "Run once at ISO datetime")
	scheduleAddCmd.Flags().StringVarP(&scheduleAddSession, "session", "s", "", "Session ID for workflow memory")
	scheduleAddCmd.Flags().BoolVar(&scheduleAddNotify, "notify", false, "Deliver the response through the notifier")

	_ = scheduleAddCmd.MarkFlagRequired("name")
	_ = scheduleAddCmd.MarkFlagRequired("input")
}

var scheduleRemoveCmd = &cobra.Command{
	Use:   "remove <job-id>",
	Short: "Remove a scheduled job",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		svc, _, err := buildScheduler()
		if err != nil {
			return err
		}
		if svc.RemoveJob(args[0]) {
			fmt.Printf("✓ Removed job %s\n", args[0])
		} else {
			fmt.Printf("Job %s not found\n", args[0])
		}
		return nil
	},
}

var scheduleDisable bool

var scheduleEnableCmd = &cobra.Command{
	Use:   "enable <job-id>",
	Short: "Enable (or disable) a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		svc, _, err := buildScheduler()
		if err != nil {
			return err
		}
		job, ok := svc.EnableJob(args[0], !scheduleDisable)
		if !ok {
			fmt.Printf("Job %s not found\n", args[0])
			return nil
		}
		action := "enabled"
		if scheduleDisable {
			action = "disabled"
		}
		fmt.Printf("✓ Job '%s' %s\n", job.Name, action)
		return nil
	},
}

func init() {
	scheduleEnableCmd.Flags().BoolVar(&scheduleDisable, "disable", false, "Disable instead of enable")
}

var scheduleRunForce bool

var scheduleRunCmd = &cobra.Command{
	Use:   "run <job-id>",
	Short: "Manually run a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		svc, c, err := buildScheduler()
		if err != nil {
			return err
		}
		wireOnJob(svc, c)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if svc.RunJob(ctx, args[0], scheduleRunForce) {
			fmt.Println("✓ Job executed")
		} else {
			fmt.Printf("Failed to run job %s (not found or disabled; use --force)\n", args[0])
		}
		return nil
	},
}

func init() {
	scheduleRunCmd.Flags().BoolVarP(&scheduleRunForce, "force", "f", false, "Run even if disabled")
}

// ---- serve -----------------------------------------------------------------

var workflowServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the workflow scheduler until interrupted",
	RunE: func(_ *cobra.Command, _ []string) error {
		svc, c, err := buildScheduler()
		if err != nil {
			return err
		}
		wireOnJob(svc, c)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return svc.Start(gctx) })

		fmt.Printf("%s Workflow scheduler running. Press Ctrl+C to stop.\n", logo)

		if err := g.Wait(); err != nil && err != context.Canceled {
			fmt.Fprintf(os.Stderr, "scheduler error: %v\n", err)
			return err
		}
		fmt.Println("\nShutdown complete.")
		return nil
	},
}

// ---- helpers ---------------------------------------------------------------

func buildScheduler() (*n8n.ScheduleService, *container.Container, error) {
	c, err := buildContainer()
	if err != nil {
		return nil, nil, err
	}
	return c.Scheduler(), c, nil
}

// wireOnJob connects fired jobs to the workflow client and, when the payload
// asks for it, the notifier.
func wireOnJob(svc *n8n.ScheduleService, c *container.Container) {
	svc.SetOnJob(func(ctx context.Context, job n8n.Job) (string, error) {
		resp, err := c.Workflow().Invoke(ctx, job.Payload.Input, job.Payload.SessionID)
		if err != nil {
			return "", err
		}
		if job.Payload.Notify {
			if nerr := c.Notifier().Notify(ctx, "Workflow '"+job.Name+"'", resp); nerr != nil {
				fmt.Fprintf(os.Stderr, "notify failed: %v\n", nerr)
			}
		}
		return resp, nil
	})
}

func formatSchedule(s n8n.Schedule) string {
	switch s.Kind {
	case "every":
		if s.EveryMs != nil {
			return fmt.Sprintf("every %ds", *s.EveryMs/1000)
		}
	case "cron":
		if s.Expr != nil {
			if s.TZ != nil {
				return *s.Expr + " (" + *s.TZ + ")"
			}
			return *s.Expr
		}
	case "at":
		return "one-time"
	}
	return s.Kind
}

func truncStr(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
