package git

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// prFields is the field list requested from gh for pull request views.
const prFields = "number,title,body,state,url,headRefName,baseRefName,author,createdAt,additions,deletions,changedFiles,reviews"

// ghPullRequest mirrors the JSON shape gh emits for a pull request.
type ghPullRequest struct {
	Number       int       `json:"number"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	State        string    `json:"state"`
	URL          string    `json:"url"`
	HeadRefName  string    `json:"headRefName"`
	BaseRefName  string    `json:"baseRefName"`
	CreatedAt    time.Time `json:"createdAt"`
	Additions    int       `json:"additions"`
	Deletions    int       `json:"deletions"`
	ChangedFiles int       `json:"changedFiles"`
	Author       struct {
		Login string `json:"login"`
	} `json:"author"`
	Reviews []struct {
		State string `json:"state"`
	} `json:"reviews"`
}

// requireGitHubOrigin checks that the origin remote points at GitHub,
// the only host the gh CLI can serve.
func (r *Repository) requireGitHubOrigin() error {
	url, err := r.RemoteURL("origin")
	if err != nil {
		return err
	}
	if host := DetectHost(url); host != HostGitHub {
		return &CLIError{Tool: "gh", Message: fmt.Sprintf("unsupported git host %q for %s", host, url)}
	}
	return nil
}

// CreatePullRequest creates a pull request for the current branch via
// the gh CLI and returns its state.
func (r *Repository) CreatePullRequest(opts CreatePROptions) (*PullRequest, error) {
	if opts.Title == "" {
		return nil, fmt.Errorf("pull request title is required")
	}
	if err := r.requireGitHubOrigin(); err != nil {
		return nil, err
	}
	gh, err := r.runner.LookPath("gh")
	if err != nil {
		return nil, &CLINotFoundError{Tool: "gh"}
	}

	args := []string{"pr", "create", "--title", opts.Title}
	if opts.Body != "" {
		args = append(args, "--body", opts.Body)
	} else {
		args = append(args, "--body", "")
	}
	if opts.Base != "" {
		args = append(args, "--base", opts.Base)
	}
	if opts.Head != "" {
		args = append(args, "--head", opts.Head)
	}
	if opts.Draft {
		args = append(args, "--draft")
	}
	_, stderr, err := r.runner.Run(r.path, gh, args...)
	if err != nil {
		return nil, &CLIError{Tool: "gh", Message: strings.TrimSpace(string(stderr))}
	}

	head := opts.Head
	if head == "" {
		head = r.CurrentBranch()
	}
	return r.PullRequestFor(head)
}

// PullRequestFor returns the open pull request for a branch, or nil when
// the branch has none.
func (r *Repository) PullRequestFor(branch string) (*PullRequest, error) {
	if err := r.requireGitHubOrigin(); err != nil {
		return nil, err
	}
	gh, err := r.runner.LookPath("gh")
	if err != nil {
		return nil, &CLINotFoundError{Tool: "gh"}
	}
	stdout, stderr, err := r.runner.Run(r.path, gh,
		"pr", "view", branch, "--json", prFields)
	if err != nil {
		msg := strings.TrimSpace(string(stderr))
		if strings.Contains(msg, "no pull requests found") {
			return nil, nil
		}
		return nil, &CLIError{Tool: "gh", Message: msg}
	}

	var raw ghPullRequest
	if err := json.Unmarshal(stdout, &raw); err != nil {
		return nil, &CLIError{Tool: "gh", Message: fmt.Sprintf("unexpected pr view output: %v", err)}
	}

	pr := &PullRequest{
		Number:       raw.Number,
		Title:        raw.Title,
		Body:         raw.Body,
		State:        strings.ToLower(raw.State),
		URL:          raw.URL,
		HeadBranch:   raw.HeadRefName,
		BaseBranch:   raw.BaseRefName,
		Author:       raw.Author.Login,
		Additions:    raw.Additions,
		Deletions:    raw.Deletions,
		ChangedFiles: raw.ChangedFiles,
		ReviewStatus: reviewStatus(raw.Reviews),
	}
	if !raw.CreatedAt.IsZero() {
		pr.CreatedAt = raw.CreatedAt.Unix()
	}
	return pr, nil
}

// reviewStatus collapses individual reviews into one summary state.
// Changes requested wins over approval.
func reviewStatus(reviews []struct {
	State string `json:"state"`
}) string {
	approved := false
	for _, rv := range reviews {
		switch rv.State {
		case "CHANGES_REQUESTED":
			return "changes_requested"
		case "APPROVED":
			approved = true
		}
	}
	if approved {
		return "approved"
	}
	if len(reviews) > 0 {
		return "reviewed"
	}
	return ""
}
