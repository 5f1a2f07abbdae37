package push

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndiBellstedt/WinEventLogCustomization/welc"
)

type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
	messages [][]byte
	err      error
}

func (f *fakePublisher) Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.subjects = append(f.subjects, subj)
	f.messages = append(f.messages, data)
	return &nats.PubAck{Stream: "WELC", Sequence: uint64(len(f.messages))}, nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func snapshot(ctx context.Context) (welc.EventLogChannel, error) {
	ch := welc.NewEventLogChannel("wec01")
	ch.WinEventLog = append(ch.WinEventLog, welc.EventLogConfiguration{
		LogName:            "Security",
		LogFilePath:        `%SystemRoot%\System32\Winevt\Logs\Security.evtx`,
		LogMode:            welc.Circular,
		IsEnabled:          true,
		MaximumSizeInBytes: 20971520,
	})
	return ch, nil
}

func TestNewPusher(t *testing.T) {
	p, err := NewPusher(&fakePublisher{}, "", "wec01", time.Second, snapshot)
	require.NoError(t, err)
	assert.Equal(t, DefaultSubject, p.Subject())

	_, err = NewPusher(nil, "", "wec01", time.Second, snapshot)
	require.Error(t, err)
	_, err = NewPusher(&fakePublisher{}, "", "wec01", 0, snapshot)
	require.Error(t, err)
	_, err = NewPusher(&fakePublisher{}, "", "wec01", time.Second, nil)
	require.Error(t, err)
}

func TestPushOnce(t *testing.T) {
	pub := &fakePublisher{}
	p, err := NewPusher(pub, "corp.welc", "wec01", time.Second, snapshot)
	require.NoError(t, err)
	p.now = func() time.Time { return time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC) }

	require.NoError(t, p.PushOnce(context.Background()))
	require.Equal(t, []string{"corp.welc"}, pub.subjects)

	var got Payload
	require.NoError(t, json.Unmarshal(pub.messages[0], &got))
	assert.Equal(t, "wec01", got.SystemName)
	assert.True(t, got.Collected.Equal(p.now()))
	assert.Equal(t, []welc.ChannelConfig{{
		ChannelName:     "Security",
		LogFullName:     `%SystemRoot%\System32\Winevt\Logs\Security.evtx`,
		LogMode:         "Circular",
		Enabled:         true,
		MaxEventLogSize: 20971520,
	}}, got.Channels)
	assert.Equal(t, "wec01", got.Snapshot.PSComputerName)
	assert.NotNil(t, got.Snapshot.Provider)
}

func TestPushOnceErrors(t *testing.T) {
	pub := &fakePublisher{err: nats.ErrNoResponders}
	p, err := NewPusher(pub, "", "wec01", time.Second, snapshot)
	require.NoError(t, err)
	err = p.PushOnce(context.Background())
	require.ErrorIs(t, err, nats.ErrNoResponders)

	failing := func(context.Context) (welc.EventLogChannel, error) {
		return welc.EventLogChannel{}, errors.New("access denied")
	}
	p, err = NewPusher(&fakePublisher{}, "", "wec01", time.Second, failing)
	require.NoError(t, err)
	assert.ErrorContains(t, p.PushOnce(context.Background()), "failed to collect snapshot")
}

func TestRunUntilCancelled(t *testing.T) {
	pub := &fakePublisher{}
	p, err := NewPusher(pub, "", "wec01", 10*time.Millisecond, snapshot)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return pub.count() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
