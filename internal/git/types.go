package git

// FileState classifies a path on one axis of the repository status.
type FileState string

const (
	StateAdded    FileState = "added"
	StateModified FileState = "modified"
	StateDeleted  FileState = "deleted"
	StateRenamed  FileState = "renamed"
	StateCopied   FileState = "copied"
	StateUnmerged FileState = "unmerged"
)

// FileChange represents one changed path on the staged or unstaged axis.
type FileChange struct {
	Path      string    `json:"path"`
	Status    FileState `json:"status"`
	OldPath   string    `json:"oldPath,omitempty"`
	Additions *int      `json:"additions,omitempty"`
	Deletions *int      `json:"deletions,omitempty"`
}

// RepositoryStatus is the aggregated snapshot returned for a working copy.
type RepositoryStatus struct {
	Exists      bool         `json:"exists"`
	IsEmpty     bool         `json:"isEmpty"`
	Branch      string       `json:"branch"`
	Commit      string       `json:"commit"`
	ShortCommit string       `json:"shortCommit"`
	Ahead       int          `json:"ahead"`
	Behind      int          `json:"behind"`
	Staged      []FileChange `json:"staged"`
	Unstaged    []FileChange `json:"unstaged"`
	Untracked   []string     `json:"untracked"`
	Conflicted  []string     `json:"conflicted"`
}

// ChangeType classifies a single diff entry.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeDeleted  ChangeType = "deleted"
	ChangeModified ChangeType = "modified"
	ChangeRenamed  ChangeType = "renamed"
	ChangeCopied   ChangeType = "copied"
)

// StatusHint tells the UI which two sides a diff entry compares and
// whether the path is in an ambiguous dual state.
type StatusHint struct {
	HasConflict bool   `json:"hasConflict"`
	Message     string `json:"message,omitempty"`
	CurrentView string `json:"currentView"`
}

// DiffEntry represents one file in a diff between two repository states.
type DiffEntry struct {
	FilePath       string      `json:"filePath"`
	OldFilePath    string      `json:"oldFilePath,omitempty"`
	ChangeType     ChangeType  `json:"changeType"`
	OldContent     *string     `json:"oldContent,omitempty"`
	NewContent     *string     `json:"newContent,omitempty"`
	Additions      *int        `json:"additions,omitempty"`
	Deletions      *int        `json:"deletions,omitempty"`
	IsBinary       bool        `json:"isBinary"`
	ContentOmitted bool        `json:"contentOmitted,omitempty"`
	StatusHint     *StatusHint `json:"statusHint,omitempty"`
}

// Branch represents a local or remote branch head.
type Branch struct {
	Name       string `json:"name"`
	IsCurrent  bool   `json:"isCurrent"`
	IsRemote   bool   `json:"isRemote"`
	Commit     string `json:"commit"`
	CommitDate int64  `json:"commitDate,omitempty"`
}

// Remote represents a configured remote and its URLs.
type Remote struct {
	Name     string `json:"name"`
	FetchURL string `json:"fetchUrl"`
	PushURL  string `json:"pushUrl,omitempty"`
}

// HostType identifies the hosting service behind a remote URL.
type HostType string

const (
	HostGitHub      HostType = "github"
	HostGitLab      HostType = "gitlab"
	HostAzureDevOps HostType = "azure_devops"
	HostBitbucket   HostType = "bitbucket"
	HostUnknown     HostType = "unknown"
)

// PullRequest represents a pull request as reported by the host CLI.
type PullRequest struct {
	Number       int    `json:"number"`
	Title        string `json:"title"`
	Body         string `json:"body,omitempty"`
	State        string `json:"state"`
	URL          string `json:"url"`
	HeadBranch   string `json:"headBranch"`
	BaseBranch   string `json:"baseBranch"`
	Author       string `json:"author,omitempty"`
	CreatedAt    int64  `json:"createdAt,omitempty"`
	Additions    int    `json:"additions"`
	Deletions    int    `json:"deletions"`
	ChangedFiles int    `json:"changedFiles"`
	ReviewStatus string `json:"reviewStatus,omitempty"`
}

// CreatePROptions holds the parameters for creating a pull request.
type CreatePROptions struct {
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
	Base  string `json:"base,omitempty"`
	Head  string `json:"head,omitempty"`
	Draft bool   `json:"draft,omitempty"`
}

// Diff view labels surfaced to the UI alongside single file diffs.
const (
	viewHeadWorktree  = "HEAD vs 工作区"
	viewIndexWorktree = "暂存区 vs 工作区"
	viewHeadIndex     = "HEAD vs 暂存区"

	msgBothModified  = "暂存区和工作区都有修改"
	msgStagedDeleted = "暂存区标记为删除，但工作区有新内容"
)
