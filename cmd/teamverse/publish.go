package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/teamverse/internal/publish"
	"github.com/jonathan/teamverse/internal/types"
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Open a pull request adding a blog post",
	Long:  "Writes a blog post and its image into the website repository on a new branch, commits, pushes and opens a pull request with gh.",
	RunE:  runPublish,
}

var (
	publishPostPath string
	publishImage    string
	publishRepo     string
	publishBranch   string
)

func init() {
	publishCmd.Flags().StringVar(&publishPostPath, "post", "", "Path to BlogPost JSON file (required)")
	publishCmd.Flags().StringVar(&publishImage, "image", "", "Path to the post image")
	publishCmd.Flags().StringVar(&publishRepo, "repo", "", "Path to the website repository (default from config)")
	publishCmd.Flags().StringVar(&publishBranch, "branch", "", "Branch name (default add-<slug>)")

	if err := publishCmd.MarkFlagRequired("post"); err != nil {
		panic(fmt.Sprintf("failed to mark post flag as required: %v", err))
	}

	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, _ []string) error {
	post, err := loadBlogPost(publishPostPath)
	if err != nil {
		return err
	}

	repo := cfg.Publish.RepoPath
	if publishRepo != "" {
		repo = publishRepo
	}

	prURL, err := publish.NewPublisher().CreateBlogPostPR(cmd.Context(), publish.Request{
		Post:      post,
		ImagePath: publishImage,
		RepoPath:  repo,
		Branch:    publishBranch,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created pull request: %s\n", prURL)
	return nil
}

func loadBlogPost(path string) (*types.BlogPost, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read post file: %w", err)
	}
	var post types.BlogPost
	if err := json.Unmarshal(content, &post); err != nil {
		return nil, fmt.Errorf("failed to unmarshal post JSON: %w", err)
	}
	return &post, nil
}
