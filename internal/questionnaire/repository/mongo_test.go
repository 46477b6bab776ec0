package repository

import (
	"testing"

	"github.com/davrot/questionnaire-backend/internal/questionnaire"
	"github.com/stretchr/testify/require"
)

// Documents written before both arrays were upserted may lack users/links;
// decoding leaves those slices nil, and normalize must restore the [] shape
// the API serializes.
func TestNormalizeEmbeddedArrays(t *testing.T) {
	q := &questionnaire.Questionnaire{ID: questionnaire.QuestionnaireID, Question: "How was it?"}
	normalize(q)
	require.NotNil(t, q.Users)
	require.NotNil(t, q.Links)
	require.Empty(t, q.Users)
	require.Empty(t, q.Links)

	// populated arrays pass through untouched
	q2 := &questionnaire.Questionnaire{
		ID:    questionnaire.QuestionnaireID,
		Users: []questionnaire.User{{Name: "Alice"}},
		Links: []questionnaire.Link{{Title: "docs"}},
	}
	normalize(q2)
	require.Len(t, q2.Users, 1)
	require.Len(t, q2.Links, 1)
}
