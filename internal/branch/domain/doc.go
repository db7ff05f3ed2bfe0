// Package domain implements the branch-naming convention for gitguru.
//
// This package follows the same rules as the other domain layers:
//   - Pure Go with standard library imports only
//   - No knowledge of git, the filesystem, or the CLI
//
// # Core Types
//
// Name is a parsed branch identifier of the form
// <major.minor.patch>/<owner>/<type>[/<description>]. Type is a closed set
// (feature, bugfix, hotfix, release) and each type carries its own rule for
// whether the description segment must be present.
//
// Ref is either the trunk branch or a Name. It is what the Policy returns as
// the expected parent of a branch.
//
// # Grammar and Policy
//
// Grammar parses raw strings into Names. Policy derives the expected parent of
// a Name from the set of live branch names. Both take the privileged hotfix
// owner explicitly instead of reading it from global state.
//
// # Errors
//
// Every failure of this layer and of the orchestrators built on it is an
// *Error carrying a Kind. Kinds are grouped into categories (validation,
// policy, orchestration, conflict, batch) that the CLI maps to exit codes.
package domain
