package git

import (
	"fmt"
	"sort"
	"strings"
)

// Remotes lists the configured remotes.
func (r *Repository) Remotes() ([]Remote, error) {
	remotes, err := r.repo.Remotes()
	if err != nil {
		return nil, fmt.Errorf("failed to list remotes: %w", err)
	}
	result := []Remote{}
	for _, rem := range remotes {
		cfg := rem.Config()
		out := Remote{Name: cfg.Name}
		if len(cfg.URLs) > 0 {
			out.FetchURL = cfg.URLs[0]
		}
		if len(cfg.URLs) > 1 {
			out.PushURL = cfg.URLs[1]
		}
		result = append(result, out)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// RemoteURL returns the fetch URL of a named remote.
func (r *Repository) RemoteURL(name string) (string, error) {
	rem, err := r.repo.Remote(name)
	if err != nil {
		return "", &RemoteNotFoundError{Name: name}
	}
	urls := rem.Config().URLs
	if len(urls) == 0 {
		return "", &RemoteNotFoundError{Name: name}
	}
	return urls[0], nil
}

// DetectHost classifies the hosting service behind a remote URL.
func DetectHost(url string) HostType {
	u := strings.ToLower(url)
	switch {
	case strings.Contains(u, "github.com"):
		return HostGitHub
	case strings.Contains(u, "gitlab"):
		return HostGitLab
	case strings.Contains(u, "dev.azure.com"), strings.Contains(u, "visualstudio.com"):
		return HostAzureDevOps
	case strings.Contains(u, "bitbucket"):
		return HostBitbucket
	default:
		return HostUnknown
	}
}

// PushBranch pushes a branch via the git CLI. Force pushes use
// force-with-lease so a moved remote head is never clobbered blindly.
func (r *Repository) PushBranch(remote, branch string, force bool) error {
	if remote == "" {
		remote = "origin"
	}
	if branch == "" {
		branch = r.CurrentBranch()
		if branch == "" {
			return fmt.Errorf("no branch to push")
		}
	}
	if _, err := r.repo.Remote(remote); err != nil {
		return &RemoteNotFoundError{Name: remote}
	}
	gitPath, err := r.runner.LookPath("git")
	if err != nil {
		return &CLINotFoundError{Tool: "git"}
	}

	args := []string{"push", "--set-upstream"}
	if force {
		args = append(args, "--force-with-lease")
	}
	args = append(args, remote, branch)
	_, stderr, err := r.runner.Run(r.path, gitPath, args...)
	if err != nil {
		return &CLIError{Tool: "git", Message: strings.TrimSpace(string(stderr))}
	}
	return nil
}
