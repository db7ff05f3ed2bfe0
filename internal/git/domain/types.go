// Package domain provides domain types for git operations.
package domain

// CommitID is an opaque full commit hash.
type CommitID string

// Short returns the first n characters of the hash.
func (c CommitID) Short(n int) string {
	if n <= 0 || len(c) <= n {
		return string(c)
	}
	return string(c[:n])
}

// Branch holds a local branch and the commit it points at.
type Branch struct {
	Name      string   // Branch name (e.g., "main", "0.0.1/tom/feature/user-auth")
	Tip       CommitID // Commit currently referenced by the branch
	IsCurrent bool     // True if this is the currently checked out branch
	Order     int      // Creation order reported by the repository, oldest first
}

// MergeStatus is the outcome of a merge attempt.
type MergeStatus string

const (
	MergeMerged     MergeStatus = "merged"
	MergeConflicted MergeStatus = "conflicted"
)

// MergeResult holds the outcome of merging one branch into another.
type MergeResult struct {
	Status MergeStatus
	Commit CommitID // New tip of the target (MergeMerged only)
	Paths  []string // Conflicting paths (MergeConflicted only)
}

// Merged reports whether the merge completed.
func (r MergeResult) Merged() bool {
	return r.Status == MergeMerged
}
