// Command huntboard is a terminal client for the Huntboard API. It renders
// the kanban board and pipeline insights, and moves applications between
// columns with the same optimistic-update flow the web client uses.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"huntboard/internal/board"
	"huntboard/internal/models"

	"github.com/spf13/cobra"
)

var (
	apiURL string
	token  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "huntboard: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "huntboard",
		Short: "Huntboard terminal client",
		Long: `Huntboard CLI talks to a running Huntboard API server. It can render your
application board, summarize your pipeline, and drag applications between
status columns from the terminal.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&apiURL, "api", envOr("HUNTBOARD_API", "http://localhost:5001"), "Base URL of the Huntboard API")
	cmd.PersistentFlags().StringVar(&token, "token", os.Getenv("HUNTBOARD_TOKEN"), "JWT bearer token (defaults to HUNTBOARD_TOKEN)")
	cmd.AddCommand(
		newBoardCmd(),
		newInsightsCmd(),
		newMoveCmd(),
	)
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newBoardCmd() *cobra.Command {
	var (
		query    string
		from     string
		until    string
		jobType  string
		status   string
		liked    bool
		sortBy   string
		desc     bool
		colsOnly []string
	)
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Render the kanban board",
		RunE: func(cmd *cobra.Command, args []string) error {
			apps, err := fetchApplications(cmd.Context())
			if err != nil {
				return err
			}

			filter := board.Filter{
				Query:     query,
				JobType:   models.JobType(jobType),
				Status:    models.Status(status),
				LikedOnly: liked,
			}
			if from != "" {
				t, parseErr := time.Parse("2006-01-02", from)
				if parseErr != nil {
					return fmt.Errorf("invalid --from date %q", from)
				}
				filter.From = t
			}
			if until != "" {
				t, parseErr := time.Parse("2006-01-02", until)
				if parseErr != nil {
					return fmt.Errorf("invalid --until date %q", until)
				}
				filter.Until = t
			}

			var visible []models.Status
			for _, raw := range colsOnly {
				st := models.Status(raw)
				if !st.Valid() {
					return fmt.Errorf("unknown status %q", raw)
				}
				visible = append(visible, st)
			}

			view := board.Build(apps, filter, board.Sort{By: sortBy, Desc: desc}, visible)
			printBoard(view)
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "Substring match on title, company, location")
	cmd.Flags().StringVar(&from, "from", "", "Earliest applied date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&until, "until", "", "Latest applied date (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(&jobType, "job-type", "", "Exact job type")
	cmd.Flags().StringVar(&status, "status", "", "Exact status")
	cmd.Flags().BoolVar(&liked, "liked", false, "Only liked applications")
	cmd.Flags().StringVar(&sortBy, "sort-by", "date_applied", "Sort key: date_applied, job_title, company")
	cmd.Flags().BoolVar(&desc, "desc", false, "Sort descending")
	cmd.Flags().StringSliceVar(&colsOnly, "columns", nil, "Only render these status columns")
	return cmd
}

func newInsightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Summarize the application pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			var insights board.Insights
			if err := apiGet(cmd.Context(), "/api/applications/insights", &insights); err != nil {
				return err
			}

			fmt.Printf("Total:      %d\n", insights.Total)
			fmt.Printf("Active:     %d\n", insights.Active)
			fmt.Printf("Offers:     %d\n", insights.Offers)
			fmt.Printf("Rejections: %d\n", insights.Rejections)
			fmt.Println("\nBy status:")
			for _, st := range models.AllStatuses {
				if n := insights.ByStatus[string(st)]; n > 0 {
					fmt.Printf("  %-13s %d\n", st, n)
				}
			}
			fmt.Println("\nBy job type:")
			for _, jt := range models.AllJobTypes {
				if n := insights.ByJobType[string(jt)]; n > 0 {
					fmt.Printf("  %-13s %d\n", jt, n)
				}
			}
			return nil
		},
	}
}

func newMoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "move <id> <status>",
		Short: "Move an application to another status column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid application id %q", args[0])
			}
			target := models.Status(args[1])
			if !target.Valid() {
				return fmt.Errorf("unknown status %q", args[1])
			}

			var app models.Application
			if err := apiGet(cmd.Context(), fmt.Sprintf("/api/applications/%d", id), &app); err != nil {
				return err
			}

			// Optimistic update: show the move immediately, confirm with the
			// server, roll back if it refuses.
			move := board.NewMove(&app)
			move.Apply(target)
			fmt.Printf("%s @ %s -> %s\n", app.JobTitle, app.Company, app.Status)

			payload := map[string]string{"status": string(target)}
			var updated models.Application
			if err := apiPut(cmd.Context(), fmt.Sprintf("/api/applications/%d", id), payload, &updated); err != nil {
				move.Revert()
				fmt.Printf("move rejected, back to %s\n", app.Status)
				return err
			}
			move.Commit()
			fmt.Printf("confirmed, history now has %d entries\n", len(updated.StatusHistory))
			return nil
		},
	}
	return cmd
}

func printBoard(view board.View) {
	fmt.Printf("%d application(s)\n", view.Total)
	for _, col := range view.Columns {
		fmt.Printf("\n== %s (%d) ==\n", col.Status, len(col.Applications))
		for i := range col.Applications {
			app := &col.Applications[i]
			liked := " "
			if app.IsLiked {
				liked = "*"
			}
			fmt.Printf("%s #%-4d %-30s %-20s %s\n",
				liked, app.ID, app.JobTitle, app.Company, app.AppliedAt().Format("2006-01-02"))
		}
	}
}

func fetchApplications(ctx context.Context) ([]models.Application, error) {
	var apps []models.Application
	if err := apiGet(ctx, "/api/applications", &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

func apiGet(ctx context.Context, path string, dest any) error {
	return apiDo(ctx, http.MethodGet, path, nil, dest)
}

func apiPut(ctx context.Context, path string, payload any, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return apiDo(ctx, http.MethodPut, path, body, dest)
}

func apiDo(ctx context.Context, method, path string, body []byte, dest any) error {
	if token == "" {
		return fmt.Errorf("no token: set --token or HUNTBOARD_TOKEN")
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, apiURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr models.ErrorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: HTTP %d", method, path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	return json.Unmarshal(data, dest)
}
