package server

import (
	"net/http"
	"strconv"

	"polaris/internal/git"
)

// repoPath resolves the repository path for a request. An explicit
// `path` query parameter wins, otherwise the active workspace is used.
func (s *Server) repoPath(r *http.Request) (string, bool) {
	if path := r.URL.Query().Get("path"); path != "" {
		return path, true
	}
	if ws := s.activeWorkspace(); ws != nil {
		return ws.Root, true
	}
	return "", false
}

// openRepo opens the repository for a request, writing the error
// response itself when it fails.
func (s *Server) openRepo(w http.ResponseWriter, r *http.Request) *git.Repository {
	path, ok := s.repoPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "no workspace open and no path given")
		return nil
	}
	repo, err := git.Open(path)
	if err != nil {
		writeGitError(w, err)
		return nil
	}
	return repo
}

func (s *Server) handleIsRepository(w http.ResponseWriter, r *http.Request) {
	path, ok := s.repoPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "no workspace open and no path given")
		return
	}
	writeJSON(w, map[string]bool{"isRepository": git.IsRepository(path)})
}

func (s *Server) handleGitStatus(w http.ResponseWriter, r *http.Request) {
	path, ok := s.repoPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "no workspace open and no path given")
		return
	}
	// A directory that is not a repository yet is a normal state for
	// the UI, reported rather than treated as an error.
	if !git.IsRepository(path) {
		writeJSON(w, &git.RepositoryStatus{Exists: false})
		return
	}
	repo, err := git.Open(path)
	if err != nil {
		writeGitError(w, err)
		return
	}
	status, err := repo.Status()
	if err != nil {
		writeGitError(w, err)
		return
	}
	writeJSON(w, status)
}

func (s *Server) handleGitInit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path          string `json:"path"`
		InitialBranch string `json:"initialBranch"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	path := req.Path
	if path == "" {
		ws := s.activeWorkspace()
		if ws == nil {
			writeError(w, http.StatusBadRequest, "no workspace open and no path given")
			return
		}
		path = ws.Root
	}
	repo, err := git.Init(path, req.InitialBranch)
	if err != nil {
		writeGitError(w, err)
		return
	}
	status, err := repo.Status()
	if err != nil {
		writeGitError(w, err)
		return
	}
	writeJSON(w, status)
}

func (s *Server) handleWorktreeDiff(w http.ResponseWriter, r *http.Request) {
	repo := s.openRepo(w, r)
	if repo == nil {
		return
	}
	entries, err := repo.WorktreeDiff()
	if err != nil {
		writeGitError(w, err)
		return
	}
	writeJSON(w, entries)
}

func (s *Server) handleIndexDiff(w http.ResponseWriter, r *http.Request) {
	repo := s.openRepo(w, r)
	if repo == nil {
		return
	}
	entries, err := repo.IndexDiff()
	if err != nil {
		writeGitError(w, err)
		return
	}
	writeJSON(w, entries)
}

func (s *Server) handleCommitDiff(w http.ResponseWriter, r *http.Request) {
	base := r.URL.Query().Get("base")
	if base == "" {
		writeError(w, http.StatusBadRequest, "base is required")
		return
	}
	repo := s.openRepo(w, r)
	if repo == nil {
		return
	}
	entries, err := repo.CommitDiff(base)
	if err != nil {
		writeGitError(w, err)
		return
	}
	writeJSON(w, entries)
}

func (s *Server) handleFileDiff(w http.ResponseWriter, r *http.Request) {
	file := r.URL.Query().Get("file")
	if file == "" {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	repo := s.openRepo(w, r)
	if repo == nil {
		return
	}
	staged, _ := strconv.ParseBool(r.URL.Query().Get("staged"))

	var entry *git.DiffEntry
	var err error
	if staged {
		entry, err = repo.IndexFileDiff(file)
	} else {
		entry, err = repo.WorktreeFileDiff(file)
	}
	if err != nil {
		writeGitError(w, err)
		return
	}
	writeJSON(w, entry)
}

func (s *Server) handleStage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path  string   `json:"path"`
		File  string   `json:"file"`
		Files []string `json:"files"`
		All   bool     `json:"all"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	repo := s.openRepoAt(w, r, req.Path)
	if repo == nil {
		return
	}
	if req.All {
		if err := repo.StageAll(); err != nil {
			writeGitError(w, err)
			return
		}
		writeJSON(w, nil)
		return
	}
	files := req.Files
	if req.File != "" {
		files = append(files, req.File)
	}
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files given")
		return
	}
	for _, f := range files {
		if err := repo.StageFile(f); err != nil {
			writeGitError(w, err)
			return
		}
	}
	writeJSON(w, nil)
}

func (s *Server) handleUnstage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path  string   `json:"path"`
		File  string   `json:"file"`
		Files []string `json:"files"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	repo := s.openRepoAt(w, r, req.Path)
	if repo == nil {
		return
	}
	files := req.Files
	if req.File != "" {
		files = append(files, req.File)
	}
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files given")
		return
	}
	for _, f := range files {
		if err := repo.UnstageFile(f); err != nil {
			writeGitError(w, err)
			return
		}
	}
	writeJSON(w, nil)
}

func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
		File string `json:"file"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.File == "" {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	repo := s.openRepoAt(w, r, req.Path)
	if repo == nil {
		return
	}
	if err := repo.DiscardChanges(req.File); err != nil {
		writeGitError(w, err)
		return
	}
	writeJSON(w, nil)
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path     string   `json:"path"`
		Message  string   `json:"message"`
		StageAll bool     `json:"stageAll"`
		Files    []string `json:"files"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	repo := s.openRepoAt(w, r, req.Path)
	if repo == nil {
		return
	}
	hash, err := repo.Commit(req.Message, req.StageAll, req.Files)
	if err != nil {
		writeGitError(w, err)
		return
	}
	writeJSON(w, map[string]string{"commit": hash})
}

func (s *Server) handleBranches(w http.ResponseWriter, r *http.Request) {
	repo := s.openRepo(w, r)
	if repo == nil {
		return
	}
	branches, err := repo.Branches()
	if err != nil {
		writeGitError(w, err)
		return
	}
	writeJSON(w, branches)
}

func (s *Server) handleCreateBranch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path     string `json:"path"`
		Name     string `json:"name"`
		Checkout bool   `json:"checkout"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	repo := s.openRepoAt(w, r, req.Path)
	if repo == nil {
		return
	}
	if err := repo.CreateBranch(req.Name, req.Checkout); err != nil {
		writeGitError(w, err)
		return
	}
	writeJSON(w, nil)
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	repo := s.openRepoAt(w, r, req.Path)
	if repo == nil {
		return
	}
	if err := repo.CheckoutBranch(req.Name); err != nil {
		writeGitError(w, err)
		return
	}
	writeJSON(w, nil)
}

func (s *Server) handleRemotes(w http.ResponseWriter, r *http.Request) {
	repo := s.openRepo(w, r)
	if repo == nil {
		return
	}
	remotes, err := repo.Remotes()
	if err != nil {
		writeGitError(w, err)
		return
	}
	type remoteInfo struct {
		git.Remote
		Host git.HostType `json:"host"`
	}
	out := make([]remoteInfo, 0, len(remotes))
	for _, rem := range remotes {
		out = append(out, remoteInfo{Remote: rem, Host: git.DetectHost(rem.FetchURL)})
	}
	writeJSON(w, out)
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path   string `json:"path"`
		Remote string `json:"remote"`
		Branch string `json:"branch"`
		Force  bool   `json:"force"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	repo := s.openRepoAt(w, r, req.Path)
	if repo == nil {
		return
	}
	if err := repo.PushBranch(req.Remote, req.Branch, req.Force); err != nil {
		writeGitError(w, err)
		return
	}
	writeJSON(w, nil)
}

func (s *Server) handleCreatePullRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
		git.CreatePROptions
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	repo := s.openRepoAt(w, r, req.Path)
	if repo == nil {
		return
	}
	pr, err := repo.CreatePullRequest(req.CreatePROptions)
	if err != nil {
		writeGitError(w, err)
		return
	}
	writeJSON(w, pr)
}

func (s *Server) handlePullRequestStatus(w http.ResponseWriter, r *http.Request) {
	repo := s.openRepo(w, r)
	if repo == nil {
		return
	}
	branch := r.URL.Query().Get("branch")
	if branch == "" {
		branch = repo.CurrentBranch()
	}
	pr, err := repo.PullRequestFor(branch)
	if err != nil {
		writeGitError(w, err)
		return
	}
	writeJSON(w, pr)
}

// openRepoAt is openRepo with an explicit body supplied path taking
// precedence over the query parameter.
func (s *Server) openRepoAt(w http.ResponseWriter, r *http.Request, path string) *git.Repository {
	if path == "" {
		return s.openRepo(w, r)
	}
	repo, err := git.Open(path)
	if err != nil {
		writeGitError(w, err)
		return nil
	}
	return repo
}
