package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	guildID      string
	gameName     string
	homeHandles  []string
	awayHandles  []string
	requireTeams bool
	teamEmoji    string
	teamImage    string
	kind         string
	since        string
	tribes       map[string]string
	tribeEmoji   string
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(teamCmd)
	rootCmd.AddCommand(tribeCmd)
	rootCmd.AddCommand(gameCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(ratingChangeCmd)
	rootCmd.AddCommand(recordCmd)

	rootCmd.PersistentFlags().StringVar(&guildID, "guild", "", "Guild id, defaults to the server's configured guild")

	teamAddCmd.Flags().StringVar(&teamEmoji, "emoji", "", "Team emoji")
	teamAddCmd.Flags().StringVar(&teamImage, "image", "", "Team image URL")
	teamCmd.AddCommand(teamAddCmd, teamListCmd)

	gameCreateCmd.Flags().StringVar(&gameName, "name", "", "Optional game name")
	gameCreateCmd.Flags().StringSliceVar(&homeHandles, "home", nil, "Home side player handles")
	gameCreateCmd.Flags().StringSliceVar(&awayHandles, "away", nil, "Away side player handles")
	gameCreateCmd.Flags().StringToStringVar(&tribes, "tribe", nil, "Tribe picked by a player, as handle=tribe")
	gameCreateCmd.Flags().BoolVar(&requireTeams, "require-teams", false, "Fail when a player has no single team")
	gameCreateCmd.MarkFlagRequired("home")
	gameCreateCmd.MarkFlagRequired("away")
	tribeSetCmd.Flags().StringVar(&tribeEmoji, "emoji", "", "Emoji shown next to the tribe in this guild")
	tribeCmd.AddCommand(tribeSetCmd, tribeListCmd)

	gameCmd.AddCommand(gameCreateCmd, gameShowCmd, gameWinCmd, gameDeleteCmd)

	leaderboardCmd.Flags().StringVar(&kind, "kind", "player", "player, squad or team")
	leaderboardCmd.Flags().StringVar(&since, "since", "", "Only count games after this date (YYYY-MM-DD)")
	recordCmd.Flags().StringVar(&kind, "kind", "player", "player, squad or team")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health", nil, nil)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics", nil, nil)
	},
}

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Manage teams",
}

var teamAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Register a team",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{"guild_id": guildID, "name": args[0], "emoji": teamEmoji, "image_url": teamImage}
		return performRequest(http.MethodPost, "/teams", nil, body)
	},
}

var teamListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the guild's teams",
	RunE: func(cmd *cobra.Command, args []string) error {
		var q url.Values
		if guildID != "" {
			q = url.Values{"guildID": {guildID}}
		}
		return performRequest(http.MethodGet, "/teams", q, nil)
	},
}

var tribeCmd = &cobra.Command{
	Use:   "tribe",
	Short: "Manage tribes and their guild flair",
}

var tribeSetCmd = &cobra.Command{
	Use:   "set [name]",
	Short: "Register a tribe and set its emoji for the guild",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]string{"guild_id": guildID, "name": args[0], "emoji": tribeEmoji}
		return performRequest(http.MethodPut, "/tribes", nil, body)
	},
}

var tribeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tribes with the guild's flair",
	RunE: func(cmd *cobra.Command, args []string) error {
		var q url.Values
		if guildID != "" {
			q = url.Values{"guildID": {guildID}}
		}
		return performRequest(http.MethodGet, "/tribes", q, nil)
	},
}

var gameCmd = &cobra.Command{
	Use:   "game",
	Short: "Create, complete and delete games",
}

var gameCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a game between two sides",
	RunE: func(cmd *cobra.Command, args []string) error {
		body := map[string]any{"guild_id": guildID, "name": gameName, "home": homeHandles, "away": awayHandles, "tribes": tribes}
		if cmd.Flags().Changed("require-teams") {
			body["require_teams"] = requireTeams
		}
		return performRequest(http.MethodPost, "/games", nil, body)
	},
}

var gameShowCmd = &cobra.Command{
	Use:   "show [gameID]",
	Short: "Show a game",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/games", url.Values{"gameID": {args[0]}}, nil)
	},
}

var gameWinCmd = &cobra.Command{
	Use:   "win [gameID] [home|away]",
	Short: "Declare the winning side of a game",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/games/winner", url.Values{"gameID": {args[0]}, "side": {args[1]}}, nil)
	},
}

var gameDeleteCmd = &cobra.Command{
	Use:   "delete [gameID]",
	Short: "Delete a game and revert its rating changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodPost, "/games/delete", url.Values{"gameID": {args[0]}}, nil)
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{"kind": {kind}}
		if guildID != "" {
			q.Set("guildID", guildID)
		}
		if since != "" {
			q.Set("since", since)
		}
		return performRequest(http.MethodGet, "/leaderboard", q, nil)
	},
}

var ratingChangeCmd = &cobra.Command{
	Use:   "rating-change [gameID] [playerID]",
	Short: "Show how much a game changed a player's rating",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/rating-change", url.Values{"gameID": {args[0]}, "playerID": {args[1]}}, nil)
	},
}

var recordCmd = &cobra.Command{
	Use:   "record [id]",
	Short: "Show the win/loss record of a player, squad or team",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/record", url.Values{"kind": {kind}, "id": {args[0]}}, nil)
	},
}

func performRequest(method, endpoint string, query url.Values, body any) error {
	target := host + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	fmt.Printf("Making request to %s %s\n", method, target)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}
