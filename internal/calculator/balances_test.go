package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanTransfers(t *testing.T) {
	tests := []struct {
		name string
		net  map[string]string
		want []Transfer
	}{
		{
			name: "one creditor",
			net:  map[string]string{"alice": "50", "bob": "-30", "carol": "-20"},
			want: []Transfer{
				{From: "bob", To: "alice", Amount: d("30")},
				{From: "carol", To: "alice", Amount: d("20")},
			},
		},
		{
			name: "chain collapses",
			net:  map[string]string{"alice": "10", "bob": "0", "carol": "-10"},
			want: []Transfer{{From: "carol", To: "alice", Amount: d("10")}},
		},
		{
			name: "dust is ignored",
			net:  map[string]string{"alice": "0.004", "bob": "-0.004"},
			want: nil,
		},
		{
			name: "ties by user id",
			net:  map[string]string{"b": "5", "a": "5", "c": "-10"},
			want: []Transfer{
				{From: "c", To: "a", Amount: d("5")},
				{From: "c", To: "b", Amount: d("5")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net := make(map[string]decimal.Decimal, len(tt.net))
			for id, v := range tt.net {
				net[id] = d(v)
			}
			got := PlanTransfers(net)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].From, got[i].From)
				assert.Equal(t, tt.want[i].To, got[i].To)
				assert.True(t, tt.want[i].Amount.Equal(got[i].Amount), "transfer %d amount %s", i, got[i].Amount)
			}
		})
	}
}

func TestPlanTransfersSettlesEveryone(t *testing.T) {
	net := map[string]decimal.Decimal{
		"a": d("42.10"), "b": d("-13.37"), "c": d("7.27"), "d": d("-36"), "e": d("0"),
	}
	after := make(map[string]decimal.Decimal, len(net))
	for id, v := range net {
		after[id] = v
	}
	for _, tr := range PlanTransfers(net) {
		after[tr.From] = after[tr.From].Add(tr.Amount)
		after[tr.To] = after[tr.To].Sub(tr.Amount)
	}
	for id, v := range after {
		assert.True(t, v.Abs().LessThan(SettleEpsilon), "%s left with %s", id, v)
	}
}
