package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/lab-catalog/pkg/types"
)

func TestIndex_Suggest(t *testing.T) {
	t.Parallel()

	ix := NewIndex(append(catalogEntries(),
		entry("test-9", "Perfil Lipídico", "PL2", domain.StudyIndividualTest, 0),
	))

	got := ix.Suggest("prfl", 5)
	names := make([]string, 0, len(got))
	for _, s := range got {
		names = append(names, s.Name)
	}
	assert.ElementsMatch(t, []string{"Perfil Tiroideo Completo", "Perfil Lipídico"}, names, "duplicate names collapse")

	assert.Len(t, ix.Suggest("prfl", 1), 1)
	assert.Nil(t, ix.Suggest("p", 5))
	assert.Nil(t, ix.Suggest("perfil", 0))
}

func TestIndex_SuggestOffsetsPointIntoOriginalName(t *testing.T) {
	t.Parallel()

	ix := NewIndex([]domain.CatalogEntry{
		entry("test-1", "Ácido Úrico", "", domain.StudyIndividualTest, 0),
	})
	got := ix.Suggest("acu", 5)
	require.Len(t, got, 1)

	name := got[0].Name
	var matched []rune
	for _, off := range got[0].MatchedIndexes {
		matched = append(matched, []rune(name[off:])[0])
	}
	assert.Equal(t, "ÁcÚ", string(matched))
}
