package application

import (
	"context"

	"github.com/patrickmn/go-cache"

	domain "github.com/ryangerardwilson/gitguru/internal/git/domain"
)

// MemoAncestry memoizes ancestry answers for the lifetime of one command.
// It never outlives the invocation that created it, so the repository stays
// the only source of truth across runs.
type MemoAncestry struct {
	reader AncestryReader
	cache  *cache.Cache
}

// NewMemoAncestry wraps reader with an invocation-scoped cache.
func NewMemoAncestry(reader AncestryReader) *MemoAncestry {
	return &MemoAncestry{
		reader: reader,
		cache:  cache.New(cache.NoExpiration, 0),
	}
}

// IsAncestorOrEqual implements AncestryReader.
func (m *MemoAncestry) IsAncestorOrEqual(ctx context.Context, a, b domain.CommitID) (bool, error) {
	if a == b {
		return true, nil
	}
	key := string(a) + ".." + string(b)
	if v, ok := m.cache.Get(key); ok {
		return v.(bool), nil
	}
	ok, err := m.reader.IsAncestorOrEqual(ctx, a, b)
	if err != nil {
		return false, err
	}
	m.cache.SetDefault(key, ok)
	return ok, nil
}

// Len returns the number of memoized answers.
func (m *MemoAncestry) Len() int {
	return m.cache.ItemCount()
}
