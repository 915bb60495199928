package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Abhishek0104/LamForGallery-sub001/pkg/models"
)

func TestSession_LastWriterWins(t *testing.T) {
	session := NewSession()

	session.SetSearchResult(models.SearchResult{IDs: []string{"photo:1", "photo:2"}})
	session.SetSearchResult(models.SearchResult{IDs: []string{"photo:3"}})
	assert.Equal(t, []string{"photo:3"}, session.SearchResult().IDs)

	session.SetSelection([]string{"photo:4"})
	session.SetSelection([]string{"photo:5", "photo:6"})
	assert.Equal(t, []string{"photo:5", "photo:6"}, session.Selection())
}

func TestSession_SnapshotsAreCopies(t *testing.T) {
	session := NewSession()
	session.SetSelection([]string{"photo:1"})

	got := session.Selection()
	got[0] = "mutated"
	assert.Equal(t, []string{"photo:1"}, session.Selection())
}

func TestSession_Source(t *testing.T) {
	session := NewSession()
	session.SetSearchResult(models.SearchResult{IDs: []string{"photo:1"}})

	t.Run("search source", func(t *testing.T) {
		ids, err := session.Source(models.SourceSearch)
		assert.NoError(t, err)
		assert.Equal(t, []string{"photo:1"}, ids)
	})

	t.Run("selection source stays empty independently", func(t *testing.T) {
		ids, err := session.Source(models.SourceSelection)
		assert.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("unknown source", func(t *testing.T) {
		_, err := session.Source("clipboard")
		assert.ErrorIs(t, err, models.ErrUnknownFilterValue)
	})
}
