package services

import (
	"testing"

	"github.com/aic-collections/sspad/internal/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePropsPromotesScalars(t *testing.T) {
	props, err := ParseProps(map[string]any{
		"title":      "A Letter",
		"legacy_uid": []any{"LEG-1", "LEG-2"},
		"count":      float64(3),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"A Letter"}, props["title"].Values)
	assert.Equal(t, []string{"LEG-1", "LEG-2"}, props["legacy_uid"].Values)
	assert.Equal(t, []string{"3"}, props["count"].Values)
}

func TestParsePropsDeleteAllSentinel(t *testing.T) {
	props, err := ParseProps(map[string]any{"batch_uid": ""})
	require.NoError(t, err)
	assert.True(t, props["batch_uid"].All)
	assert.Empty(t, props["batch_uid"].Values)
}

func TestParsePropsComments(t *testing.T) {
	props, err := ParseProps(map[string]any{
		"comment": []any{
			map[string]any{"category": "Conservation", "content": "verso damaged"},
			map[string]any{"content": "uncategorized"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []CommentSpec{
		{Category: "Conservation", Content: "verso damaged"},
		{Content: "uncategorized"},
	}, props["comment"].Comments)
}

func TestParsePropsRejectsObjectOnPlainProperty(t *testing.T) {
	_, err := ParseProps(map[string]any{"title": map[string]any{"x": "y"}})
	require.Error(t, err)
	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))
}

func TestParsePropsRejectsCommentWithoutContent(t *testing.T) {
	_, err := ParseProps(map[string]any{"comment": map[string]any{"category": "General"}})
	require.Error(t, err)
	assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))
}

func TestPropsHelpers(t *testing.T) {
	p := Props{}
	p.Add("title", "a")
	p.Add("title", "b")
	assert.Equal(t, []string{"a", "b"}, p["title"].Values)
	assert.Equal(t, "a", p.First("title"))
	assert.Equal(t, "", p.First("missing"))
}

func TestLogicalName(t *testing.T) {
	name, isRef := LogicalName("ref_source")
	assert.Equal(t, "source", name)
	assert.True(t, isRef)

	name, isRef = LogicalName("master")
	assert.Equal(t, "master", name)
	assert.False(t, isRef)
}
