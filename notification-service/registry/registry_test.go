package registry

import (
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	failWith error
	closed   bool
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return c.failWith
	}
	c.messages = append(c.messages, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func TestRegistry_Notify(t *testing.T) {
	reg := New(zap.NewNop())

	first := &fakeConn{}
	second := &fakeConn{}
	other := &fakeConn{}

	reg.Register("admins", first)
	reg.Register("admins", second)
	reg.Register("order:42", other)

	delivered := reg.Broadcast("admins", []byte("stock check failed"))

	assert.Equal(t, 2, delivered)
	assert.Len(t, first.messages, 1)
	assert.Len(t, second.messages, 1)
	assert.Empty(t, other.messages)
}

func TestRegistry_NotifyUnknownChannel(t *testing.T) {
	reg := New(zap.NewNop())
	assert.Equal(t, 0, reg.Notify("admins", []byte("nobody listening")))
}

func TestRegistry_NotifyDropsDeadConnections(t *testing.T) {
	reg := New(zap.NewNop())

	alive := &fakeConn{}
	dead := &fakeConn{failWith: errors.New("broken pipe")}

	reg.Register("admins", alive)
	reg.Register("admins", dead)
	assert.Equal(t, 2, reg.Size("admins"))

	delivered := reg.Notify("admins", []byte("order approved"))

	assert.Equal(t, 1, delivered)
	assert.Equal(t, 1, reg.Size("admins"))
	assert.True(t, dead.closed)
}

func TestRegistry_Unregister(t *testing.T) {
	reg := New(zap.NewNop())

	conn := &fakeConn{}
	reg.Register("order:42", conn)
	reg.Unregister("order:42", conn)

	assert.Equal(t, 0, reg.Size("order:42"))
	assert.Equal(t, 0, reg.Notify("order:42", []byte("gone")))
}

func TestRegistry_ConcurrentUse(t *testing.T) {
	reg := New(zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn := &fakeConn{}
			reg.Register("admins", conn)
			reg.Notify("admins", []byte("fan out"))
			reg.Unregister("admins", conn)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, reg.Size("admins"))
}
