package git

import (
	"bytes"
	"os/exec"
)

// commandRunner abstracts external tool invocation so tests can stub
// out git and gh.
type commandRunner interface {
	Run(dir, name string, args ...string) (stdout []byte, stderr []byte, err error)
	LookPath(name string) (string, error)
}

type execRunner struct{}

func (execRunner) Run(dir, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	var out, errOut bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errOut
	err := cmd.Run()
	return out.Bytes(), errOut.Bytes(), err
}

func (execRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
