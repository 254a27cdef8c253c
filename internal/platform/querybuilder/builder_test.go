package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "round_number").
		From("event_rounds").
		Where(Eq("event_id", "e1"), IsNull("deleted_at")).
		OrderBy("round_number ASC").
		Limit(10).
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, round_number FROM event_rounds WHERE event_id = $1 AND deleted_at IS NULL ORDER BY round_number ASC LIMIT 10", query)
	assert.Equal(t, []any{"e1"}, args)
}

func TestInsertBuilder_MultiRowWithSuffix(t *testing.T) {
	query, args, err := InsertInto("event_rounds").
		Columns("id", "round_number").
		Values("r1", 1).
		Values("r2", 2).
		Suffix("ON CONFLICT (event_id, round_number) DO NOTHING").
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "INSERT INTO event_rounds (id, round_number) VALUES ($1, $2), ($3, $4) ON CONFLICT (event_id, round_number) DO NOTHING", query)
	assert.Equal(t, []any{"r1", 1, "r2", 2}, args)
}

func TestInsertBuilder_RejectsRaggedRows(t *testing.T) {
	_, _, err := InsertInto("t").Columns("a", "b").Values(1).ToSQL()
	assert.Error(t, err)
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("events").
		Set("status", "completed").
		SetExpr("completed_at", "COALESCE(completed_at, ?)", "now").
		Where(Eq("id", "e1"), NotEq("status", "completed")).
		ToSQL()
	require.NoError(t, err)

	assert.Equal(t, "UPDATE events SET status = $1, completed_at = COALESCE(completed_at, $2) WHERE id = $3 AND status <> $4", query)
	assert.Equal(t, []any{"completed", "now", "e1", "completed"}, args)
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("event_winners").Where(Eq("event_id", "e1")).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM event_winners WHERE event_id = $1", query)
	assert.Equal(t, []any{"e1"}, args)

	_, _, err = DeleteFrom("event_winners").ToSQL()
	assert.Error(t, err)
}

func TestInCondition_EmptyMatchesNothing(t *testing.T) {
	query, args, err := Select("*").From("t").Where(In("id", nil)).ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t WHERE 1=0", query)
	assert.Empty(t, args)
}

type pointsRow struct {
	ID      string `db:"id"`
	EventID string `db:"event_id"`
	Points  int    `db:"points"`
	skipped string
	Ignored string `db:"-"`
}

func TestInsertModels(t *testing.T) {
	rows := []pointsRow{
		{ID: "p1", EventID: "e1", Points: 100, skipped: "x"},
		{ID: "p2", EventID: "e1", Points: 75},
	}

	query, args, err := InsertModels("event_points", ModelSlice(rows), "ON CONFLICT DO NOTHING")
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO event_points (id, event_id, points) VALUES ($1, $2, $3), ($4, $5, $6) ON CONFLICT DO NOTHING", query)
	assert.Equal(t, []any{"p1", "e1", 100, "p2", "e1", 75}, args)

	_, _, err = InsertModels("event_points", nil, "")
	assert.Error(t, err)
}
