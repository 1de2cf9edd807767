package metrics

import (
	"errors"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRPC("/groupledger.v1.GroupService/GetGroup", connect.CodeOf(nil), true, time.Millisecond)
	m.ObserveRPC("/groupledger.v1.GroupService/GetGroup", connect.CodeOf(connect.NewError(connect.CodeNotFound, errors.New("x"))), false, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rpcs.WithLabelValues("/groupledger.v1.GroupService/GetGroup", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rpcs.WithLabelValues("/groupledger.v1.GroupService/GetGroup", "not_found")))

	m.ObserveRecompute("item_delete", time.Microsecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recomputes.WithLabelValues("item_delete")))

	m.Payment(decimal.RequireFromString("12.50"))
	m.Payment(decimal.RequireFromString("7.50"))
	assert.Equal(t, 20.0, testutil.ToFloat64(m.paymentsTotal))

	m.SetOutstanding("g1", decimal.RequireFromString("125"))
	assert.Equal(t, 125.0, testutil.ToFloat64(m.outstanding.WithLabelValues("g1")))
	m.ForgetGroup("g1")
	assert.Equal(t, 0, testutil.CollectAndCount(m.outstanding))
}
