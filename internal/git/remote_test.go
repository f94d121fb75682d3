package git

import (
	"errors"
	"testing"

	"github.com/go-git/go-git/v5/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addOrigin(t *testing.T, r *Repository, url string) {
	t.Helper()
	_, err := r.repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})
	require.NoError(t, err)
}

func TestDetectHost(t *testing.T) {
	tests := []struct {
		url  string
		want HostType
	}{
		{"https://github.com/owner/repo.git", HostGitHub},
		{"git@github.com:owner/repo.git", HostGitHub},
		{"https://gitlab.com/owner/repo.git", HostGitLab},
		{"https://gitlab.example.org/owner/repo.git", HostGitLab},
		{"https://dev.azure.com/org/project/_git/repo", HostAzureDevOps},
		{"https://org.visualstudio.com/project/_git/repo", HostAzureDevOps},
		{"https://bitbucket.org/owner/repo.git", HostBitbucket},
		{"https://git.internal.example.com/repo.git", HostUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectHost(tt.url), tt.url)
	}
}

func TestRemotes(t *testing.T) {
	r := newTestRepo(t)
	remotes, err := r.Remotes()
	require.NoError(t, err)
	assert.Empty(t, remotes)

	addOrigin(t, r, "https://github.com/owner/repo.git")
	remotes, err = r.Remotes()
	require.NoError(t, err)
	require.Len(t, remotes, 1)
	assert.Equal(t, "origin", remotes[0].Name)
	assert.Equal(t, "https://github.com/owner/repo.git", remotes[0].FetchURL)
}

func TestRemoteURL(t *testing.T) {
	r := newTestRepo(t)
	_, err := r.RemoteURL("origin")
	var notFound *RemoteNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "REMOTE_NOT_FOUND", ErrorCode(err))

	addOrigin(t, r, "git@github.com:owner/repo.git")
	url, err := r.RemoteURL("origin")
	require.NoError(t, err)
	assert.Equal(t, "git@github.com:owner/repo.git", url)
}

func TestPushBranch(t *testing.T) {
	r := newTestRepo(t)
	commitFile(t, r, "a.txt", "one\n", "first")
	addOrigin(t, r, "https://github.com/owner/repo.git")

	runner := &fakeRunner{}
	r.runner = runner

	require.NoError(t, r.PushBranch("", "", false))
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{"git", "push", "--set-upstream", "origin", "main"}, runner.calls[0])
}

func TestPushBranchForceUsesLease(t *testing.T) {
	r := newTestRepo(t)
	commitFile(t, r, "a.txt", "one\n", "first")
	addOrigin(t, r, "https://github.com/owner/repo.git")

	runner := &fakeRunner{}
	r.runner = runner

	require.NoError(t, r.PushBranch("origin", "main", true))
	require.Len(t, runner.calls, 1)
	assert.Contains(t, runner.calls[0], "--force-with-lease")
}

func TestPushBranchUnknownRemote(t *testing.T) {
	r := newTestRepo(t)
	commitFile(t, r, "a.txt", "one\n", "first")

	err := r.PushBranch("nowhere", "main", false)
	var notFound *RemoteNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestPushBranchReportsCLIFailure(t *testing.T) {
	r := newTestRepo(t)
	commitFile(t, r, "a.txt", "one\n", "first")
	addOrigin(t, r, "https://github.com/owner/repo.git")

	r.runner = &fakeRunner{results: []fakeResult{
		{stderr: []byte("fatal: could not read from remote\n"), err: errors.New("exit status 128")},
	}}

	err := r.PushBranch("origin", "main", false)
	var cliErr *CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, "CLI_ERROR", ErrorCode(err))
	assert.Contains(t, cliErr.Message, "could not read from remote")
}
