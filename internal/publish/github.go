package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jonathan/teamverse/internal/types"
)

// Website repository layout.
var (
	articlesDir  = filepath.Join("app", "src", "data", "posts", "articles")
	imagesDir    = filepath.Join("app", "public", "assets", "posts")
	postsJSONRel = filepath.Join("app", "src", "data", "posts", "posts.json")
)

// DefaultRepoPath returns ~/PolicyEngine/policyengine-app-v2.
func DefaultRepoPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("PolicyEngine", "policyengine-app-v2")
	}
	return filepath.Join(home, "PolicyEngine", "policyengine-app-v2")
}

// Request describes one blog post publication.
type Request struct {
	Post *types.BlogPost
	// ImagePath is copied into the site assets when it exists.
	ImagePath string
	// RepoPath defaults to DefaultRepoPath.
	RepoPath string
	// Branch defaults to add-<slug>.
	Branch string
}

// Publisher writes a blog post into the website repository and opens a PR.
type Publisher struct {
	Runner Runner
	Now    func() time.Time
}

// NewPublisher creates a publisher that shells out to git and gh.
func NewPublisher() *Publisher {
	return &Publisher{Runner: ExecRunner{}, Now: time.Now}
}

type postEntry struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Tags        []string `json:"tags"`
	Authors     []string `json:"authors"`
	Filename    string   `json:"filename"`
	Image       string   `json:"image"`
}

// CreateBlogPostPR branches from main, adds the post, its image and listing
// entry, pushes and opens a pull request. It returns the PR URL printed by gh.
// Nothing is rolled back on failure.
func (p *Publisher) CreateBlogPostPR(ctx context.Context, req Request) (string, error) {
	post := req.Post
	if post == nil {
		return "", errors.New("blog post is required")
	}
	if err := post.Validate(); err != nil {
		return "", err
	}
	post.NormalizeTags()

	repo := req.RepoPath
	if repo == "" {
		repo = DefaultRepoPath()
	}
	if info, err := os.Stat(repo); err != nil || !info.IsDir() {
		return "", &RepoError{Path: repo, Message: "website repository not found", Cause: err}
	}

	slug := post.Slug()
	branch := req.Branch
	if branch == "" {
		branch = "add-" + slug
	}
	filename := slug + ".md"
	image := post.ImageName()

	log.Info().Str("repo", repo).Str("branch", branch).Str("slug", slug).Msg("publishing blog post")

	if err := p.git(ctx, repo, "checkout", "main"); err != nil {
		return "", err
	}
	if err := p.git(ctx, repo, "pull"); err != nil {
		return "", err
	}
	if err := p.git(ctx, repo, "checkout", "-b", branch); err != nil {
		return "", err
	}

	if err := os.WriteFile(filepath.Join(repo, articlesDir, filename), []byte(post.Content), 0644); err != nil {
		return "", &RepoError{Path: repo, Message: "failed to write article", Cause: err}
	}

	if req.ImagePath != "" {
		if _, err := os.Stat(req.ImagePath); err == nil {
			if err := copyFile(req.ImagePath, filepath.Join(repo, imagesDir, image)); err != nil {
				return "", &RepoError{Path: repo, Message: "failed to copy image", Cause: err}
			}
		}
	}

	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}
	entry := postEntry{
		Title:       post.Title,
		Description: post.Description,
		Date:        p.now().Format("2006-01-02"),
		Tags:        tags,
		Authors:     post.Authors,
		Filename:    filename,
		Image:       image,
	}
	if err := prependPost(filepath.Join(repo, postsJSONRel), entry); err != nil {
		return "", &RepoError{Path: repo, Message: "failed to update posts.json", Cause: err}
	}

	if err := p.git(ctx, repo, "add", "."); err != nil {
		return "", err
	}
	if err := p.git(ctx, repo, "commit", "-m", "Add blog post: "+post.Title); err != nil {
		return "", err
	}
	if err := p.git(ctx, repo, "push", "-u", "origin", branch); err != nil {
		return "", err
	}

	body := fmt.Sprintf("## Summary\n\nAdds blog post: %s\n\n%s", post.Title, post.Description)
	out, err := p.Runner.Run(ctx, repo, "gh", "pr", "create",
		"--title", "Add blog post: "+post.Title,
		"--body", body)
	if err != nil {
		return "", err
	}

	prURL := strings.TrimSpace(out)
	log.Info().Str("pr", prURL).Msg("opened pull request")
	return prURL, nil
}

func (p *Publisher) git(ctx context.Context, repo string, args ...string) error {
	_, err := p.Runner.Run(ctx, repo, "git", args...)
	return err
}

func (p *Publisher) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// prependPost inserts entry at the top of the posts listing. Existing entries
// keep their key order; only indentation is normalized.
func prependPost(path string, entry postEntry) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var posts []json.RawMessage
	if err := json.Unmarshal(data, &posts); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	var first bytes.Buffer
	if err := newEncoder(&first, "").Encode(entry); err != nil {
		return err
	}
	posts = append([]json.RawMessage{bytes.TrimSpace(first.Bytes())}, posts...)

	var out bytes.Buffer
	if err := newEncoder(&out, "  ").Encode(posts); err != nil {
		return err
	}
	return os.WriteFile(path, out.Bytes(), 0644)
}

func newEncoder(w io.Writer, indent string) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
