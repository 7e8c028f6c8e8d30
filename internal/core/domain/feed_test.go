package domain_test

import (
	"testing"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func products(from, to int64) []domain.Product {
	ps := make([]domain.Product, 0, to-from+1)
	for id := from; id <= to; id++ {
		ps = append(ps, domain.Product{ID: id})
	}
	return ps
}

func TestFeedStateApplyPage(t *testing.T) {
	t.Run("PagesThroughCatalog", func(t *testing.T) {
		s := domain.NewFeedState(domain.ProductFilters{}, domain.SortNewest)
		assert.True(t, s.HasMore)
		assert.Zero(t, s.Page)

		s = s.ApplyPage(1, domain.ProductPage{Results: products(1, 10), Total: 25})
		assert.Len(t, s.Items, 10)
		assert.True(t, s.HasMore)

		s = s.ApplyPage(2, domain.ProductPage{Results: products(11, 20), Total: 25})
		assert.Len(t, s.Items, 20)
		assert.True(t, s.HasMore)

		s = s.ApplyPage(3, domain.ProductPage{Results: products(21, 25), Total: 25})
		assert.Len(t, s.Items, 25)
		assert.False(t, s.HasMore)
		assert.Equal(t, 3, s.Page)
		assert.Equal(t, domain.StatusSucceeded, s.Status)
	})

	t.Run("FirstPageReplacesItems", func(t *testing.T) {
		s := domain.NewFeedState(domain.ProductFilters{}, domain.SortNewest)
		s = s.ApplyPage(1, domain.ProductPage{Results: products(1, 10), Total: 30})
		s = s.ApplyPage(1, domain.ProductPage{Results: products(50, 52), Total: 3})

		require.Len(t, s.Items, 3)
		assert.Equal(t, int64(50), s.Items[0].ID)
		assert.False(t, s.HasMore)
	})

	t.Run("SkipsDuplicates", func(t *testing.T) {
		s := domain.NewFeedState(domain.ProductFilters{}, domain.SortNewest)
		s = s.ApplyPage(1, domain.ProductPage{Results: products(1, 10), Total: 20})
		s = s.ApplyPage(2, domain.ProductPage{Results: products(8, 15), Total: 20})

		assert.Len(t, s.Items, 15)
		assert.True(t, s.HasMore)
	})

	t.Run("DuplicatePageKeepsTotal", func(t *testing.T) {
		s := domain.NewFeedState(domain.ProductFilters{}, domain.SortNewest)
		s = s.ApplyPage(1, domain.ProductPage{Results: products(1, 2), Total: 6})
		s = s.ApplyPage(2, domain.ProductPage{Results: products(3, 4), Total: 6})
		s = s.ApplyPage(3, domain.ProductPage{Results: products(3, 4), Total: 6})

		assert.Len(t, s.Items, 4)
		assert.Equal(t, 6, s.TotalCount)
		assert.True(t, s.HasMore)
		assert.Equal(t, 3, s.Page)

		s = s.ApplyPage(4, domain.ProductPage{Results: products(5, 6), Total: 6})
		assert.Len(t, s.Items, 6)
		assert.False(t, s.HasMore)
	})

	t.Run("EmptyPageEndsFeed", func(t *testing.T) {
		s := domain.NewFeedState(domain.ProductFilters{}, domain.SortNewest)
		s = s.ApplyPage(1, domain.ProductPage{Results: products(1, 10), Total: 40})
		s = s.ApplyPage(2, domain.ProductPage{Total: 40})

		assert.Equal(t, 10, s.TotalCount)
		assert.False(t, s.HasMore)
	})

	t.Run("TotalBelowItems", func(t *testing.T) {
		s := domain.NewFeedState(domain.ProductFilters{}, domain.SortNewest)
		s = s.ApplyPage(1, domain.ProductPage{Results: products(1, 10), Total: 4})

		assert.Equal(t, 10, s.TotalCount)
		assert.False(t, s.HasMore)
	})

	t.Run("ClearsError", func(t *testing.T) {
		s := domain.NewFeedState(domain.ProductFilters{}, domain.SortNewest)
		s.Status = domain.StatusFailed
		s.LastError = "boom"
		s = s.ApplyPage(1, domain.ProductPage{Results: products(1, 1), Total: 1})

		assert.Empty(t, s.LastError)
		assert.Equal(t, domain.StatusSucceeded, s.Status)
	})
}

func TestFeedStateClone(t *testing.T) {
	s := domain.NewFeedState(domain.ProductFilters{}, domain.SortNewest)
	s = s.ApplyPage(1, domain.ProductPage{Results: products(1, 2), Total: 2})

	c := s.Clone()
	c.Items[0].Name = "changed"
	assert.Empty(t, s.Items[0].Name)
}

func TestSort(t *testing.T) {
	assert.Equal(t, "price", domain.SortPriceAsc.Ordering())
	assert.Equal(t, "-price", domain.SortPriceDesc.Ordering())
	assert.Equal(t, "-created_at", domain.SortNewest.Ordering())
	assert.True(t, domain.SortNewest.Valid())
	assert.False(t, domain.Sort("rating").Valid())
}
