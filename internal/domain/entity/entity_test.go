package entity

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTable = NewTable("series", []string{"id"}, map[string]Kind{
	"id":                 KindInt,
	"team_one_id":        KindInt,
	"team_one_win_count": KindInt,
	"type":               KindInt,
	"is_over":            KindBool,
	"name":               KindString,
	"rating":             KindFloat,
	"win_rates":          KindJSON,
})

func TestKindConvert(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		kind Kind
		in   any
		want any
		ok   bool
	}{
		{name: "int from int64", kind: KindInt, in: int64(7), want: int64(7), ok: true},
		{name: "int from integral float", kind: KindInt, in: 42.0, want: int64(42), ok: true},
		{name: "int from fractional float", kind: KindInt, in: 4.5, ok: false},
		{name: "int from json number", kind: KindInt, in: json.Number("16935"), want: int64(16935), ok: true},
		{name: "int from string", kind: KindInt, in: "12", ok: false},
		{name: "float from int", kind: KindFloat, in: int64(3), want: 3.0, ok: true},
		{name: "bool", kind: KindBool, in: true, want: true, ok: true},
		{name: "bool from int", kind: KindBool, in: int64(1), ok: false},
		{name: "string from number", kind: KindString, in: int64(1700000000), want: "1700000000", ok: true},
		{name: "json passthrough", kind: KindJSON, in: []any{int64(1), int64(2)}, want: []any{int64(1), int64(2)}, ok: true},
		{name: "nil resets", kind: KindInt, in: nil, want: nil, ok: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := tc.kind.Convert(tc.in)
			require.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestMappingMap(t *testing.T) {
	t.Parallel()

	m := NewMapping(testTable,
		F("type", "type"),
		AbsF("teamOneId", "team_one_id"),
		F("teamOneWinCount", "team_one_win_count"),
		F("isOver", "is_over"),
		F("displayName", "name", "name"),
		F("winRates", "win_rates"),
	)

	values, dropped := m.Map(Payload{
		"teamOneId":       int64(-100),
		"teamOneWinCount": nil,
		"isOver":          "yes",
		"name":            "The International",
		"winRates":        []any{0.5, 0.6},
		"unmapped":        "ignored",
	})

	assert.Equal(t, Values{
		"team_one_id":        int64(100),
		"team_one_win_count": nil,
		"name":               "The International",
		"win_rates":          []any{0.5, 0.6},
	}, values)
	assert.Equal(t, []string{"isOver"}, dropped)
	_, hasType := values["type"]
	assert.False(t, hasType, "absent keys must stay unspecified")
}

func TestNewMappingRejectsUnknownColumn(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewMapping(testTable, F("foo", "foo")) })
}

func TestTablePrepare(t *testing.T) {
	t.Parallel()

	key, rest, err := testTable.Prepare(Values{"id": 10}, Values{"id": int64(10), "type": 1.0})
	require.NoError(t, err)
	assert.Equal(t, Values{"id": int64(10)}, key)
	assert.Equal(t, Values{"type": int64(1)}, rest)

	_, _, err = testTable.Prepare(Values{"id": nil}, nil)
	assert.ErrorIs(t, err, ErrMissingKey)

	_, _, err = testTable.Prepare(Values{}, nil)
	assert.ErrorIs(t, err, ErrMissingKey)

	_, _, err = testTable.Prepare(Values{"id": int64(1)}, Values{"bogus": 1})
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, _, err = testTable.Prepare(Values{"id": int64(1)}, Values{"is_over": "nope"})
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, _, err = testTable.Prepare(Values{"id": int64(1)}, Values{ColumnDeletedAt: nil})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestPayloadItems(t *testing.T) {
	t.Parallel()

	raw, err := DecodeJSON([]byte(`{"one":{"order":1},"many":[{"order":1},7,{"order":3}],"none":null}`))
	require.NoError(t, err)
	p, ok := AsPayload(raw)
	require.True(t, ok)

	assert.Len(t, p.Items("one"), 1)
	many := p.Items("many")
	require.Len(t, many, 3)
	assert.Nil(t, many[1], "non-object elements come back nil")
	order, ok := many[2].Int64("order")
	assert.True(t, ok)
	assert.Equal(t, int64(3), order)
	assert.Empty(t, p.Items("none"))
	assert.Empty(t, p.Items("missing"))
}

func TestPayloadAbsInt64(t *testing.T) {
	t.Parallel()

	p := Payload{"a": int64(-5), "b": "x", "c": 9.0}
	n, ok := p.AbsInt64("a")
	assert.True(t, ok)
	assert.Equal(t, int64(5), n)
	_, ok = p.AbsInt64("b")
	assert.False(t, ok)
	n, ok = p.AbsInt64("c")
	assert.True(t, ok)
	assert.Equal(t, int64(9), n)
}

func TestAbsRejectsMinInt64(t *testing.T) {
	t.Parallel()

	p := Payload{"teamOneId": int64(math.MinInt64)}
	_, ok := p.AbsInt64("teamOneId")
	assert.False(t, ok)

	values, dropped := NewMapping(testTable, AbsF("teamOneId", "team_one_id")).Map(p)
	assert.Empty(t, values)
	assert.Equal(t, []string{"teamOneId"}, dropped)
}

func TestRetryOnConflict(t *testing.T) {
	t.Parallel()

	t.Run("second pass wins", func(t *testing.T) {
		t.Parallel()
		calls := 0
		row, created, err := RetryOnConflict(context.Background(), func(context.Context) (*Row, bool, error) {
			calls++
			if calls == 1 {
				return nil, false, ErrUniqueViolation
			}
			return &Row{UUID: "u1"}, false, nil
		})
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "u1", row.UUID)
		assert.Equal(t, 2, calls)
	})

	t.Run("persistent conflict is fatal", func(t *testing.T) {
		t.Parallel()
		calls := 0
		_, _, err := RetryOnConflict(context.Background(), func(context.Context) (*Row, bool, error) {
			calls++
			return nil, false, ErrUniqueViolation
		})
		assert.ErrorIs(t, err, ErrUniqueViolation)
		assert.Equal(t, 2, calls)
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		calls := 0
		_, _, err := RetryOnConflict(context.Background(), func(context.Context) (*Row, bool, error) {
			calls++
			return nil, false, boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})
}
