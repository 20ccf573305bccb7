package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamforms/submission-exporter/internal/model"
)

func TestSubmissionQuerySQL(t *testing.T) {
	from := time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC)
	criteria := model.FilterCriteria{
		DateFrom: &from,
		DateTo:   &to,
		Fields:   []model.FieldPredicate{{Name: "name", Value: "bob"}},
	}

	sqlStr, args, err := submissionQuery(7, criteria).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sqlStr, "FROM streamforms.submission")
	assert.Contains(t, sqlStr, "form_id = $1")
	assert.Contains(t, sqlStr, "submitted_at >= $2")
	assert.Contains(t, sqlStr, "submitted_at < $3")
	assert.Contains(t, sqlStr, "ILIKE")
	assert.Contains(t, sqlStr, "ORDER BY submitted_at DESC, id DESC")

	require.Len(t, args, 5)
	assert.Equal(t, int64(7), args[0])
	assert.Equal(t, from, args[1])
	// Upper bound is the day after date_to, exclusive.
	assert.Equal(t, to.AddDate(0, 0, 1), args[2])
	assert.Equal(t, "name", args[3])
	assert.Equal(t, "%bob%", args[4])
}

func TestSubmissionQueryUnfiltered(t *testing.T) {
	sqlStr, args, err := submissionQuery(1, model.FilterCriteria{}).ToSql()
	require.NoError(t, err)

	assert.NotContains(t, sqlStr, "submitted_at >=")
	assert.NotContains(t, sqlStr, "ILIKE")
	assert.Equal(t, []any{int64(1)}, args)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike(`100%`))
	assert.Equal(t, `a\_b`, escapeLike(`a_b`))
	assert.Equal(t, `c:\\temp`, escapeLike(`c:\temp`))
	assert.Equal(t, `plain`, escapeLike(`plain`))
}
