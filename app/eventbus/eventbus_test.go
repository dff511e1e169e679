package eventbus

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Black-And-White-Club/race-tally/config"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/nats-io/nkeys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type FakeStreamManager struct {
	StreamFunc       func(ctx context.Context, name string) (jetstream.Stream, error)
	CreateStreamFunc func(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
	trace            []string
}

func (f *FakeStreamManager) Trace() []string { return f.trace }

func (f *FakeStreamManager) Stream(ctx context.Context, name string) (jetstream.Stream, error) {
	f.trace = append(f.trace, "Stream")
	if f.StreamFunc != nil {
		return f.StreamFunc(ctx, name)
	}
	return nil, nil
}

func (f *FakeStreamManager) CreateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error) {
	f.trace = append(f.trace, "CreateStream")
	if f.CreateStreamFunc != nil {
		return f.CreateStreamFunc(ctx, cfg)
	}
	return nil, nil
}

func TestEnsureStream(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	boom := errors.New("boom")

	tests := []struct {
		name      string
		streamErr error
		createErr error
		wantTrace []string
		wantErr   bool
	}{
		{
			name:      "existing stream is left alone",
			wantTrace: []string{"Stream"},
		},
		{
			name:      "missing stream is created",
			streamErr: jetstream.ErrStreamNotFound,
			wantTrace: []string{"Stream", "CreateStream"},
		},
		{
			name:      "lookup failure",
			streamErr: boom,
			wantTrace: []string{"Stream"},
			wantErr:   true,
		},
		{
			name:      "create failure",
			streamErr: jetstream.ErrStreamNotFound,
			createErr: boom,
			wantTrace: []string{"Stream", "CreateStream"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var created jetstream.StreamConfig
			fake := &FakeStreamManager{
				StreamFunc: func(context.Context, string) (jetstream.Stream, error) {
					return nil, tt.streamErr
				},
				CreateStreamFunc: func(_ context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error) {
					created = cfg
					return nil, tt.createErr
				},
			}

			err := EnsureStream(context.Background(), fake, logger)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantTrace, fake.Trace())
			if len(tt.wantTrace) == 2 {
				assert.Equal(t, []string{"race.>"}, created.Subjects)
			}
		})
	}
}

func TestNatsOptions(t *testing.T) {
	opts, err := natsOptions(config.NATSConfig{URL: "nats://localhost:4222"})
	require.NoError(t, err)
	assert.Len(t, opts, 2)

	kp, err := nkeys.CreateUser()
	require.NoError(t, err)
	seed, err := kp.Seed()
	require.NoError(t, err)

	opts, err = natsOptions(config.NATSConfig{NKeySeed: string(seed)})
	require.NoError(t, err)
	assert.Len(t, opts, 3)

	_, err = natsOptions(config.NATSConfig{NKeySeed: "not-a-seed"})
	require.Error(t, err)
}
