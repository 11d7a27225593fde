package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	feedViewerID string
	feedScope    string
	feedCursor   string
	feedLimit    int
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Fetch and print a viewer's ranked feed from a running backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		return fetchFeed()
	},
}

func init() {
	feedCmd.Flags().StringVar(&feedViewerID, "viewer", "", "Viewer user ID (required)")
	feedCmd.Flags().StringVar(&feedScope, "scope", "all", "Feed scope: all or following")
	feedCmd.Flags().StringVar(&feedCursor, "after", "", "Cursor: fetch posts after this post ID")
	feedCmd.Flags().IntVar(&feedLimit, "limit", 20, "Page size (1-100)")
	_ = feedCmd.MarkFlagRequired("viewer")
}

type feedPost struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  *struct {
		Username string `json:"username"`
	} `json:"author"`
	ReactionCount int `json:"reaction_count"`
	CommentCount  int `json:"comment_count"`
}

type feedResponse struct {
	Posts      []feedPost `json:"posts"`
	NextCursor *string    `json:"nextCursor"`
	HasMore    bool       `json:"hasMore"`
	Total      int        `json:"total"`
}

func fetchFeed() error {
	params := url.Values{}
	params.Set("viewerId", feedViewerID)
	params.Set("scope", feedScope)
	params.Set("limit", fmt.Sprintf("%d", feedLimit))
	if feedCursor != "" {
		params.Set("afterCursor", feedCursor)
	}

	resp, err := http.Get(apiURL + "/api/posts/feed?" + params.Encode())
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}

	var feed feedResponse
	if err := json.Unmarshal(body, &feed); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAUTHOR\tTITLE\tREACTIONS\tCOMMENTS")
	for _, p := range feed.Posts {
		author := "?"
		if p.Author != nil {
			author = p.Author.Username
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", p.ID, author, p.Title, p.ReactionCount, p.CommentCount)
	}
	w.Flush()

	fmt.Printf("\ntotal=%d hasMore=%v", feed.Total, feed.HasMore)
	if feed.NextCursor != nil {
		fmt.Printf(" nextCursor=%s", *feed.NextCursor)
	}
	fmt.Println()
	return nil
}
