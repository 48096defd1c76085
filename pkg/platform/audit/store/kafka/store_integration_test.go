//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	audit "pharmaguard/pkg/platform/audit"
	"pharmaguard/pkg/testutil/containers"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

func TestStore_RoundTripThroughRedpanda(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := containers.NewRedpandaContainer(t)
	const topic = "pharmaguard.audit.it"

	admin, err := kgo.NewClient(kgo.SeedBrokers(broker.SeedBroker))
	require.NoError(t, err)
	defer admin.Close()
	_, err = kadm.NewClient(admin).CreateTopic(ctx, 1, 1, nil, topic)
	require.NoError(t, err)

	store, err := New([]string{broker.SeedBroker}, topic)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Ping(ctx))

	event := audit.NewEvent(audit.EventBatchRegistered)
	event.Timestamp = time.Now().UTC().Truncate(time.Millisecond)
	event.SubjectIDHash = audit.HashIdentifier("BATCH-IT-1")
	require.NoError(t, store.Append(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.SeedBroker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())
	records := fetches.Records()
	require.Len(t, records, 1)

	var got audit.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	require.Equal(t, event.SubjectIDHash, got.SubjectIDHash)
	require.Equal(t, string(audit.EventBatchRegistered), got.Action)
}
