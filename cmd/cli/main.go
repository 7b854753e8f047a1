package main

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL   string
	noAutoStart bool
	rootCmd     = &cobra.Command{
		Use:           "vidgrab",
		Short:         "vidgrab CLI - fetch video metadata and downloads",
		Long:          `A command-line client for the vidgrab server. Looks up video metadata and downloads MP4 or MP3 files from YouTube, Instagram, TikTok, X/Twitter and Facebook.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:3000", "Server URL")
	rootCmd.PersistentFlags().BoolVar(&noAutoStart, "no-auto-start", false, "Don't auto-start server if not running")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)

	downloadCmd.Flags().StringP("format", "f", "mp4", "Output format (mp4, mp3)")
	downloadCmd.Flags().StringP("quality", "q", "high", "Quality (high, low)")
	downloadCmd.Flags().StringP("output", "o", "", "Output file (default download.<format>)")
	historyCmd.Flags().IntP("limit", "n", 20, "Number of records to show")
	historyCmd.Flags().StringP("status", "s", "", "Filter by status (processing, completed, failed)")
	historyCmd.Flags().String("delete", "", "Delete the record with this ID")
}

// ensureServer checks if server is running and starts it if needed (unless --no-auto-start)
func ensureServer(cmd *cobra.Command) {
	if noAutoStart {
		return
	}
	if err := ensureServerRunning(cmd.OutOrStdout()); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}
}

type infoResponse struct {
	Title     string        `json:"title"`
	Duration  int           `json:"duration"`
	Thumbnail string        `json:"thumbnail"`
	Platform  string        `json:"platform"`
	Formats   []interface{} `json:"formats"`
	Note      string        `json:"note"`
}

var infoCmd = &cobra.Command{
	Use:   "info [url]",
	Short: "Show video metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer(cmd)

		var info infoResponse
		if err := newAPIClient(serverURL).postJSON("/api/info", map[string]string{"url": args[0]}, &info); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Title:     %s\n", info.Title)
		fmt.Fprintf(out, "Platform:  %s\n", info.Platform)
		fmt.Fprintf(out, "Duration:  %s\n", formatDuration(info.Duration))
		if info.Thumbnail != "" {
			fmt.Fprintf(out, "Thumbnail: %s\n", info.Thumbnail)
		}
		fmt.Fprintf(out, "Formats:   %d\n", len(info.Formats))
		if info.Note != "" {
			fmt.Fprintf(out, "Note:      %s\n", info.Note)
		}
		return nil
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download [url]",
	Short: "Download a video as MP4 or its audio as MP3",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer(cmd)

		format, _ := cmd.Flags().GetString("format")
		quality, _ := cmd.Flags().GetString("quality")
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = "download." + format
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Downloading %s as %s (%s)...\n", args[0], format, quality)
		n, err := newAPIClient(serverURL).download(args[0], format, quality, output)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%s)\n", output, formatBytes(n))
		return nil
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the server is up",
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer(cmd)

		var health struct {
			Status  string `json:"status"`
			Message string `json:"message"`
			Version string `json:"version"`
		}
		if err := newAPIClient(serverURL).getJSON("/api/health", &health); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (version %s)\n", health.Status, health.Message, health.Version)
		return nil
	},
}

type toolsResponse struct {
	Installed bool            `json:"installed"`
	Version   *string         `json:"version"`
	Platforms map[string]bool `json:"platforms"`
	FFmpeg    struct {
		Installed bool    `json:"installed"`
		Version   *string `json:"version"`
	} `json:"ffmpeg"`
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Show which external tools the server found",
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer(cmd)

		var tools toolsResponse
		if err := newAPIClient(serverURL).getJSON("/api/check-ytdlp", &tools); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "yt-dlp: %s\n", toolLine(tools.Installed, tools.Version))
		fmt.Fprintf(out, "ffmpeg: %s\n", toolLine(tools.FFmpeg.Installed, tools.FFmpeg.Version))
		fmt.Fprintln(out, "Platforms:")
		for _, p := range []string{"youtube", "instagram", "tiktok", "twitter", "facebook"} {
			fmt.Fprintf(out, "  %-10s %s\n", p, yesNo(tools.Platforms[p]))
		}
		return nil
	},
}

type historyRecord struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Platform     string    `json:"platform"`
	Format       string    `json:"format"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"error_message"`
	SizeBytes    int64     `json:"size_bytes"`
	StartedAt    time.Time `json:"started_at"`
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent downloads",
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer(cmd)
		client := newAPIClient(serverURL)

		if id, _ := cmd.Flags().GetString("delete"); id != "" {
			if err := client.delete("/api/history/" + url.PathEscape(id)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			return nil
		}

		limit, _ := cmd.Flags().GetInt("limit")
		status, _ := cmd.Flags().GetString("status")
		query := url.Values{"limit": {strconv.Itoa(limit)}}
		if status != "" {
			query.Set("status", status)
		}

		var result struct {
			Total   int64           `json:"total"`
			Records []historyRecord `json:"records"`
		}
		if err := client.getJSON("/api/history?"+query.Encode(), &result); err != nil {
			return err
		}

		printHistory(cmd.OutOrStdout(), result.Records)
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d records\n", len(result.Records), result.Total)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show download statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer(cmd)

		var stats struct {
			Total      int64            `json:"total"`
			Processing int64            `json:"processing"`
			Completed  int64            `json:"completed"`
			Failed     int64            `json:"failed"`
			ByPlatform map[string]int64 `json:"by_platform"`
			TotalBytes int64            `json:"total_bytes"`
		}
		if err := newAPIClient(serverURL).getJSON("/api/history/stats", &stats); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Download Statistics:")
		fmt.Fprintf(out, "  Total:      %d\n", stats.Total)
		fmt.Fprintf(out, "  Processing: %d\n", stats.Processing)
		fmt.Fprintf(out, "  Completed:  %d\n", stats.Completed)
		fmt.Fprintf(out, "  Failed:     %d\n", stats.Failed)
		fmt.Fprintf(out, "  Served:     %s\n", formatBytes(stats.TotalBytes))
		for platform, n := range stats.ByPlatform {
			fmt.Fprintf(out, "  %-11s %d\n", platform+":", n)
		}
		return nil
	},
}

func printHistory(out io.Writer, records []historyRecord) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tURL\tPLATFORM\tFORMAT\tSTATUS\tSIZE\tSTARTED")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			truncate(r.ID, 8),
			truncate(r.URL, 40),
			r.Platform,
			r.Format,
			r.Status,
			formatBytes(r.SizeBytes),
			r.StartedAt.Local().Format("2006-01-02 15:04"))
	}
	w.Flush()
}

func toolLine(installed bool, version *string) string {
	if !installed {
		return "not installed"
	}
	if version == nil {
		return "installed"
	}
	return "installed (" + *version + ")"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatDuration(seconds int) string {
	if seconds <= 0 {
		return "unknown"
	}
	return (time.Duration(seconds) * time.Second).String()
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
