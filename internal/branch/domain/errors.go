package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Category groups error kinds by how the caller should react to them.
type Category string

const (
	// CategoryValidation errors are local, non-retryable and raised before any mutation.
	CategoryValidation Category = "validation"
	// CategoryPolicy errors block the requested operation entirely.
	CategoryPolicy Category = "policy"
	// CategoryOrchestration errors are fatal preconditions of the current command.
	CategoryOrchestration Category = "orchestration"
	// CategoryConflict errors leave the repository in a recoverable conflict state.
	CategoryConflict Category = "conflict"
	// CategoryBatch errors describe one failed item of a multi-item operation.
	CategoryBatch Category = "batch"
)

// Kind identifies a specific failure.
type Kind string

const (
	KindMalformedName         Kind = "MalformedName"
	KindInvalidType           Kind = "InvalidType"
	KindMissingDescription    Kind = "MissingDescription"
	KindUnexpectedDescription Kind = "UnexpectedDescription"

	KindNoMatchingRelease    Kind = "NoMatchingRelease"
	KindParentBranchNotFound Kind = "ParentBranchNotFound"

	KindBranchNotFound      Kind = "BranchNotFound"
	KindDirtySourceBranch   Kind = "DirtySourceBranch"
	KindDirtyWorkingTree    Kind = "DirtyWorkingTree"
	KindDetachedHeadState   Kind = "DetachedHeadState"
	KindBranchAlreadyExists Kind = "BranchAlreadyExists"
	KindBranchCheckedOut    Kind = "BranchCheckedOut"
	KindProtectedBranch     Kind = "ProtectedBranch"

	KindMergeConflict Kind = "MergeConflict"

	KindUnmergedBranch Kind = "UnmergedBranch"
)

var kindCategories = map[Kind]Category{
	KindMalformedName:         CategoryValidation,
	KindInvalidType:           CategoryValidation,
	KindMissingDescription:    CategoryValidation,
	KindUnexpectedDescription: CategoryValidation,
	KindNoMatchingRelease:     CategoryPolicy,
	KindParentBranchNotFound:  CategoryPolicy,
	KindBranchNotFound:        CategoryOrchestration,
	KindDirtySourceBranch:     CategoryOrchestration,
	KindDirtyWorkingTree:      CategoryOrchestration,
	KindDetachedHeadState:     CategoryOrchestration,
	KindBranchAlreadyExists:   CategoryOrchestration,
	KindBranchCheckedOut:      CategoryOrchestration,
	KindProtectedBranch:       CategoryOrchestration,
	KindMergeConflict:         CategoryConflict,
	KindUnmergedBranch:        CategoryBatch,
}

// Category returns the category the kind belongs to.
func (k Kind) Category() Category {
	return kindCategories[k]
}

// Error is the typed failure returned by the naming rules and the orchestrators.
type Error struct {
	Kind   Kind
	Ref    string   // Offending branch identifier, if any
	Detail string   // Human readable explanation
	Paths  []string // Conflicting paths (MergeConflict only)
	Err    error    // Underlying cause
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Ref != "" {
		fmt.Fprintf(&b, ": %q", e.Ref)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if len(e.Paths) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.Paths, ", "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same kind. A target with an empty Ref
// matches any ref, which is what the Err* sentinels rely on.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Ref == "" || t.Ref == e.Ref)
}

// Sentinels for errors.Is.
var (
	ErrMalformedName         = &Error{Kind: KindMalformedName}
	ErrInvalidType           = &Error{Kind: KindInvalidType}
	ErrMissingDescription    = &Error{Kind: KindMissingDescription}
	ErrUnexpectedDescription = &Error{Kind: KindUnexpectedDescription}
	ErrNoMatchingRelease     = &Error{Kind: KindNoMatchingRelease}
	ErrParentBranchNotFound  = &Error{Kind: KindParentBranchNotFound}
	ErrBranchNotFound        = &Error{Kind: KindBranchNotFound}
	ErrDirtySourceBranch     = &Error{Kind: KindDirtySourceBranch}
	ErrDirtyWorkingTree      = &Error{Kind: KindDirtyWorkingTree}
	ErrDetachedHeadState     = &Error{Kind: KindDetachedHeadState}
	ErrBranchAlreadyExists   = &Error{Kind: KindBranchAlreadyExists}
	ErrBranchCheckedOut      = &Error{Kind: KindBranchCheckedOut}
	ErrProtectedBranch       = &Error{Kind: KindProtectedBranch}
	ErrMergeConflict         = &Error{Kind: KindMergeConflict}
	ErrUnmergedBranch        = &Error{Kind: KindUnmergedBranch}
)

// NewError builds an *Error for ref.
func NewError(kind Kind, ref, detail string) *Error {
	return &Error{Kind: kind, Ref: ref, Detail: detail}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// ItemFailure records why one item of a batch failed.
type ItemFailure struct {
	Ref string
	Err error
}

// BatchError reports the failed items of a batch operation whose other items
// were still processed.
type BatchError struct {
	Op       string
	Total    int
	Failures []ItemFailure
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Err.Error())
	}
	return fmt.Sprintf("%s: %d of %d failed: %s", e.Op, len(e.Failures), e.Total, strings.Join(parts, "; "))
}

// Unwrap exposes every item failure to errors.Is and errors.As.
func (e *BatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}
