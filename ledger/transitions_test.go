package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBalanceDeltaTable(t *testing.T) {
	const total = 100.0

	cases := []struct {
		prev, next Status
		want       float64
	}{
		{StatusPending, StatusPaid, -total},
		{StatusPending, StatusCancelled, -total},
		{StatusPaid, StatusPending, total},
		{StatusCancelled, StatusPending, total},
		{StatusPaid, StatusCancelled, 0},
		{StatusCancelled, StatusPaid, 0},
		{StatusPending, StatusPending, 0},
		{StatusPaid, StatusPaid, 0},
		{StatusCancelled, StatusCancelled, 0},
	}
	for _, tc := range cases {
		got := balanceDelta(tc.prev, tc.next, total)
		assert.Equalf(t, tc.want, got, "%s -> %s", tc.prev, tc.next)
	}
}

func TestBalanceDeltaForwardAndBackSumToZero(t *testing.T) {
	const total = 42.5
	for _, next := range []Status{StatusPaid, StatusCancelled} {
		sum := balanceDelta(StatusPending, next, total) + balanceDelta(next, StatusPending, total)
		assert.Zerof(t, sum, "pending <-> %s", next)
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pending", "paid", "cancelled"} {
		got, ok := ParseStatus(s)
		assert.True(t, ok)
		assert.Equal(t, Status(s), got)
	}
	for _, s := range []string{"", "draft", "PAID"} {
		_, ok := ParseStatus(s)
		assert.Falsef(t, ok, "%q", s)
	}
}

func TestParseOperation(t *testing.T) {
	op, ok := ParseOperation("")
	assert.True(t, ok)
	assert.Equal(t, OpSet, op)

	for _, s := range []string{"set", "add", "subtract"} {
		got, ok := ParseOperation(s)
		assert.True(t, ok)
		assert.Equal(t, Operation(s), got)
	}
	_, ok = ParseOperation("multiply")
	assert.False(t, ok)
}
