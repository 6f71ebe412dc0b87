//go:build linux
// +build linux

package hostprobe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// threadBackend records the OS thread of every call.
type threadBackend struct {
	*fakeBackend
	tids []int
}

func (b *threadBackend) record() { b.tids = append(b.tids, unix.Gettid()) }

func (b *threadBackend) BaseBoards() ([]BaseBoard, error) {
	b.record()
	return b.fakeBackend.BaseBoards()
}

func (b *threadBackend) VideoControllers() ([]VideoController, error) {
	b.record()
	return b.fakeBackend.VideoControllers()
}

func (b *threadBackend) Close() error {
	b.record()
	return b.fakeBackend.Close()
}

func TestBackendStaysOnWorkerThread(t *testing.T) {
	b := &threadBackend{fakeBackend: machine()}
	s := startSession(func() (Backend, error) {
		b.record()
		return b, nil
	})

	for i := 0; i < 5; i++ {
		_, err := s.do(queryRequest{kind: kindBoard})
		require.NoError(t, err)
		_, err = s.do(queryRequest{kind: kindVideoControllers})
		require.NoError(t, err)
	}
	require.NoError(t, s.close())

	require.Len(t, b.tids, 12)
	for i, tid := range b.tids {
		assert.Equal(t, b.tids[0], tid, "call %d ran on another thread", i)
	}
}
