// Package gittest provides an in-memory repository implementing the git
// Gateway port, for tests that exercise workflows without a git binary.
package gittest

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"

	domain "github.com/ryangerardwilson/gitguru/internal/git/domain"
)

type commit struct {
	id      domain.CommitID
	parents []domain.CommitID
	files   map[string]string
	message string
}

type branch struct {
	tip   domain.CommitID
	order int
}

// Repo is a small commit graph with branches, a single working tree and
// three-way merges at file granularity.
type Repo struct {
	commits   map[domain.CommitID]*commit
	branches  map[string]*branch
	current   string
	detached  bool
	dirty     map[string]string
	unmerged  []string
	mergeHead domain.CommitID
	pushed    map[string]domain.CommitID
	seq       int
	order     int

	// Calls records every mutating gateway call in order, e.g. "commit:<id>".
	Calls []string
	// Errors injects a failure for the named gateway method (e.g. "Push").
	Errors map[string]error
}

// NewRepo returns a repository with an initial commit on main, checked out.
func NewRepo() *Repo {
	r := &Repo{
		commits:  map[domain.CommitID]*commit{},
		branches: map[string]*branch{},
		dirty:    map[string]string{},
		pushed:   map[string]domain.CommitID{},
		Errors:   map[string]error{},
	}
	root := r.newCommit(nil, map[string]string{"README.md": "# repo\n"}, "Initial commit")
	r.setBranch("main", root)
	r.current = "main"
	return r
}

func (r *Repo) newCommit(parents []domain.CommitID, files map[string]string, message string) domain.CommitID {
	r.seq++
	id := domain.CommitID(fmt.Sprintf("%07x%033d", r.seq, 0))
	r.commits[id] = &commit{id: id, parents: parents, files: files, message: message}
	return id
}

func (r *Repo) setBranch(name string, tip domain.CommitID) {
	if b, ok := r.branches[name]; ok {
		b.tip = tip
		return
	}
	r.order++
	r.branches[name] = &branch{tip: tip, order: r.order}
}

func (r *Repo) injected(op string) error {
	if err, ok := r.Errors[op]; ok {
		return err
	}
	return nil
}

// Branch creates name at the tip of from without checking it out.
func (r *Repo) Branch(name, from string) domain.CommitID {
	tip := r.branches[from].tip
	r.setBranch(name, tip)
	return tip
}

// CommitOn adds a commit to branch that writes the given files.
func (r *Repo) CommitOn(name string, files map[string]string) domain.CommitID {
	b := r.branches[name]
	snapshot := maps.Clone(r.commits[b.tip].files)
	maps.Copy(snapshot, files)
	id := r.newCommit([]domain.CommitID{b.tip}, snapshot, "commit on "+name)
	b.tip = id
	return id
}

// WriteFile changes a file in the working tree without committing it.
func (r *Repo) WriteFile(path, content string) {
	r.dirty[path] = content
}

// Detach puts HEAD in detached state.
func (r *Repo) Detach() {
	r.detached = true
}

// Tip returns the tip of name, or "" if absent.
func (r *Repo) Tip(name string) domain.CommitID {
	if b, ok := r.branches[name]; ok {
		return b.tip
	}
	return ""
}

// Has reports whether name exists.
func (r *Repo) Has(name string) bool {
	_, ok := r.branches[name]
	return ok
}

// Parents returns the parents of id.
func (r *Repo) Parents(id domain.CommitID) []domain.CommitID {
	if c, ok := r.commits[id]; ok {
		return slices.Clone(c.parents)
	}
	return nil
}

// Message returns the message of id.
func (r *Repo) Message(id domain.CommitID) string {
	if c, ok := r.commits[id]; ok {
		return c.message
	}
	return ""
}

// Pushed returns what was last pushed for name.
func (r *Repo) Pushed(name string) (domain.CommitID, bool) {
	id, ok := r.pushed[name]
	return id, ok
}

// Current returns the checked out branch.
func (r *Repo) Current() string {
	return r.current
}

// ListBranches implements the gateway port.
func (r *Repo) ListBranches(_ context.Context) ([]domain.Branch, error) {
	if err := r.injected("ListBranches"); err != nil {
		return nil, err
	}
	out := make([]domain.Branch, 0, len(r.branches))
	for name, b := range r.branches {
		out = append(out, domain.Branch{
			Name:      name,
			Tip:       b.tip,
			IsCurrent: !r.detached && name == r.current,
			Order:     b.order,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

// CurrentBranch implements the gateway port.
func (r *Repo) CurrentBranch(_ context.Context) (string, error) {
	if r.detached {
		return "", domain.ErrDetachedHead
	}
	return r.current, nil
}

// HeadCommit implements the gateway port.
func (r *Repo) HeadCommit(_ context.Context, name string) (domain.CommitID, error) {
	b, ok := r.branches[name]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, domain.ErrBranchNotFound)
	}
	return b.tip, nil
}

// IsDirty implements the gateway port.
func (r *Repo) IsDirty(_ context.Context, name string) (bool, error) {
	if r.detached || name != r.current {
		return false, nil
	}
	return len(r.dirty) > 0, nil
}

// CommitAll implements the gateway port.
func (r *Repo) CommitAll(_ context.Context, message string) (domain.CommitID, error) {
	if err := r.injected("CommitAll"); err != nil {
		return "", err
	}
	if len(r.dirty) == 0 {
		return "", domain.ErrNothingToCommit
	}
	b := r.branches[r.current]
	snapshot := maps.Clone(r.commits[b.tip].files)
	maps.Copy(snapshot, r.dirty)
	parents := []domain.CommitID{b.tip}
	if r.mergeHead != "" {
		// Staging everything marks the conflicts resolved and the commit
		// concludes the merge, as git does.
		parents = append(parents, r.mergeHead)
	}
	id := r.newCommit(parents, snapshot, message)
	b.tip = id
	r.dirty = map[string]string{}
	r.unmerged, r.mergeHead = nil, ""
	r.Calls = append(r.Calls, "commit:"+string(id))
	return id, nil
}

// Checkout implements the gateway port.
func (r *Repo) Checkout(_ context.Context, name string) error {
	if err := r.injected("Checkout"); err != nil {
		return err
	}
	if _, ok := r.branches[name]; !ok {
		return fmt.Errorf("%s: %w", name, domain.ErrBranchNotFound)
	}
	if len(r.unmerged) > 0 {
		return fmt.Errorf("cannot check out %s: you need to resolve your current index first", name)
	}
	r.current = name
	r.detached = false
	r.Calls = append(r.Calls, "checkout:"+name)
	return nil
}

// CreateBranch implements the gateway port.
func (r *Repo) CreateBranch(_ context.Context, name, from string) error {
	if err := r.injected("CreateBranch"); err != nil {
		return err
	}
	if _, ok := r.branches[name]; ok {
		return fmt.Errorf("%s: %w", name, domain.ErrBranchExists)
	}
	src, ok := r.branches[from]
	if !ok {
		return fmt.Errorf("%s: %w", from, domain.ErrBranchNotFound)
	}
	r.setBranch(name, src.tip)
	r.Calls = append(r.Calls, "branch:"+name)
	return nil
}

// DeleteBranch implements the gateway port.
func (r *Repo) DeleteBranch(ctx context.Context, name string, force bool) error {
	if err := r.injected("DeleteBranch"); err != nil {
		return err
	}
	b, ok := r.branches[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, domain.ErrBranchNotFound)
	}
	if name == r.current && !r.detached {
		return fmt.Errorf("cannot delete branch %q checked out", name)
	}
	if !force {
		merged, _ := r.IsAncestorOrEqual(ctx, b.tip, r.branches[r.current].tip)
		if !merged {
			return fmt.Errorf("the branch %q is not fully merged", name)
		}
	}
	delete(r.branches, name)
	r.Calls = append(r.Calls, "delete:"+name)
	return nil
}

// Merge implements the gateway port with a --no-ff three-way merge.
func (r *Repo) Merge(ctx context.Context, source, target string) (domain.MergeResult, error) {
	if err := r.injected("Merge"); err != nil {
		return domain.MergeResult{}, err
	}
	if target != r.current {
		return domain.MergeResult{}, fmt.Errorf("merge target %q is not checked out", target)
	}
	if r.mergeHead != "" {
		return domain.MergeResult{}, errors.New("you have not concluded your merge (MERGE_HEAD exists)")
	}
	src, ok := r.branches[source]
	if !ok {
		return domain.MergeResult{}, fmt.Errorf("%s: %w", source, domain.ErrBranchNotFound)
	}
	dst := r.branches[target]

	if up, _ := r.IsAncestorOrEqual(ctx, src.tip, dst.tip); up {
		return domain.MergeResult{Status: domain.MergeMerged, Commit: dst.tip}, nil
	}

	base := r.mergeBase(src.tip, dst.tip)
	baseFiles := map[string]string{}
	if base != "" {
		baseFiles = r.commits[base].files
	}
	ours, theirs := r.commits[dst.tip].files, r.commits[src.tip].files

	merged := map[string]string{}
	var conflicts []string
	for path := range unionKeys(ours, theirs, baseFiles) {
		o, t, b := ours[path], theirs[path], baseFiles[path]
		switch {
		case o == t:
			merged[path] = o
		case t == b:
			merged[path] = o
		case o == b:
			merged[path] = t
		default:
			conflicts = append(conflicts, path)
		}
	}
	if len(conflicts) > 0 {
		sort.Strings(conflicts)
		for _, path := range conflicts {
			r.dirty[path] = fmt.Sprintf("<<<<<<< HEAD\n%s=======\n%s>>>>>>> %s\n", ours[path], theirs[path], source)
		}
		r.unmerged, r.mergeHead = conflicts, src.tip
		r.Calls = append(r.Calls, "conflict:"+source)
		return domain.MergeResult{Status: domain.MergeConflicted, Paths: conflicts}, nil
	}
	for path, content := range merged {
		if content == "" {
			delete(merged, path)
		}
	}

	id := r.newCommit([]domain.CommitID{dst.tip, src.tip}, merged, fmt.Sprintf("Merge %s into %s", source, target))
	dst.tip = id
	r.Calls = append(r.Calls, "merge:"+string(id))
	return domain.MergeResult{Status: domain.MergeMerged, Commit: id}, nil
}

// UnmergedPaths implements the gateway port.
func (r *Repo) UnmergedPaths(_ context.Context) ([]string, error) {
	if err := r.injected("UnmergedPaths"); err != nil {
		return nil, err
	}
	return slices.Clone(r.unmerged), nil
}

// MergeInProgress implements the gateway port.
func (r *Repo) MergeInProgress(_ context.Context) (bool, error) {
	return r.mergeHead != "", nil
}

// Resolve writes the resolved content of a conflicted path and stages it,
// leaving the merge to be concluded by a commit.
func (r *Repo) Resolve(path, content string) {
	r.dirty[path] = content
	r.unmerged = slices.DeleteFunc(r.unmerged, func(p string) bool { return p == path })
}

// IsAncestorOrEqual implements the gateway port.
func (r *Repo) IsAncestorOrEqual(_ context.Context, a, b domain.CommitID) (bool, error) {
	if _, ok := r.commits[a]; !ok {
		return false, fmt.Errorf("unknown commit %s", a)
	}
	return r.ancestors(b)[a], nil
}

// Push implements the gateway port.
func (r *Repo) Push(_ context.Context, name string) error {
	if err := r.injected("Push"); err != nil {
		return err
	}
	b, ok := r.branches[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, domain.ErrBranchNotFound)
	}
	r.pushed[name] = b.tip
	r.Calls = append(r.Calls, "push:"+name)
	return nil
}

// ancestors returns id and every commit reachable from it.
func (r *Repo) ancestors(id domain.CommitID) map[domain.CommitID]bool {
	seen := map[domain.CommitID]bool{}
	stack := []domain.CommitID{id}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[c] {
			continue
		}
		seen[c] = true
		if cm, ok := r.commits[c]; ok {
			stack = append(stack, cm.parents...)
		}
	}
	return seen
}

// mergeBase returns the most recent common ancestor of a and b.
func (r *Repo) mergeBase(a, b domain.CommitID) domain.CommitID {
	inA := r.ancestors(a)
	var best domain.CommitID
	for c := range r.ancestors(b) {
		if inA[c] && (best == "" || c > best) {
			best = c
		}
	}
	return best
}

func unionKeys(ms ...map[string]string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, m := range ms {
		for k := range m {
			out[k] = struct{}{}
		}
	}
	return out
}

// ErrInjected is a convenience error for Errors.
var ErrInjected = errors.New("injected failure")
