// Package model resolves the model descriptor a service is bound to: its
// repository directory and the weight files found inside it.
package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mlserved/internal/common/fsutil"
	"mlserved/internal/mllib"
	"mlserved/pkg/apidata"
)

// Model is the descriptor handed to a backend. Repo is resolved to an
// absolute path before the backend is constructed.
type Model struct {
	Repo    string
	Weights string
	Config  map[string]string
}

// Repository returns the repository directory.
func (m Model) Repository() string { return m.Repo }

// New resolves the "repository" parameter of ad. Relative paths are taken
// against reposRoot. A missing directory is created only when
// "create_repository" is true.
func New(ad apidata.APIData, reposRoot string) (Model, error) {
	repo := strings.TrimSpace(ad.GetString("repository", ""))
	if repo == "" {
		return Model{}, mllib.ErrBadParam("missing model repository")
	}
	repo, err := fsutil.ExpandHome(repo)
	if err != nil {
		return Model{}, mllib.ErrBadParam(err.Error())
	}
	if !filepath.IsAbs(repo) && reposRoot != "" {
		root, err := fsutil.ExpandHome(reposRoot)
		if err != nil {
			return Model{}, mllib.ErrBadParam(err.Error())
		}
		repo = filepath.Join(root, repo)
	}
	abs, err := filepath.Abs(repo)
	if err != nil {
		return Model{}, mllib.ErrBadParam(fmt.Sprintf("abs path %s: %v", repo, err))
	}

	fi, err := os.Stat(abs)
	switch {
	case err == nil && !fi.IsDir():
		return Model{}, mllib.ErrBadParam("model repository " + abs + " is not a directory")
	case err != nil && !os.IsNotExist(err):
		return Model{}, mllib.ErrBadParam("cannot access model repository " + abs + ": " + err.Error())
	case err != nil:
		if !ad.GetBool("create_repository", false) {
			return Model{}, mllib.ErrBadParam("model repository " + abs + " does not exist")
		}
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return Model{}, mllib.ErrInternal("failed creating model repository " + abs + ": " + err.Error())
		}
	}

	m := Model{Repo: abs, Config: map[string]string{}}
	if w := ad.GetString("weights", ""); w != "" {
		m.Weights = w
		if !filepath.IsAbs(w) {
			m.Weights = filepath.Join(abs, w)
		}
	}
	return m, nil
}

// Lookup returns the explicit weights file if set, otherwise the first file
// in the repository with the given extension.
func (m Model) Lookup(ext string) (string, error) {
	if m.Weights != "" {
		if !fsutil.PathExists(m.Weights) {
			return "", mllib.ErrBadParam("weights file " + m.Weights + " not found")
		}
		return m.Weights, nil
	}
	files, err := fsutil.FindByExt(m.Repo, ext)
	if err != nil {
		return "", mllib.ErrBadParam(err.Error())
	}
	if len(files) == 0 {
		return "", mllib.ErrBadParam("no " + ext + " file in repository " + m.Repo)
	}
	return files[0], nil
}

// Path joins name onto the repository directory.
func (m Model) Path(name string) string { return filepath.Join(m.Repo, name) }
