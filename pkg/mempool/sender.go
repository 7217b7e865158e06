package mempool

import (
	"context"
	"sync"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/runtime/syncutils"
)

var ErrMempoolShutdown = ierrors.New("mempool is shut down")

// ClientSender is the sending half of the mempool request channel. It can be shared by any number of goroutines.
type ClientSender struct {
	requests chan ClientRequest
	shutdown chan struct{}

	// sendMutex is held for reading by every send in flight, Close waits for them by taking it for writing.
	sendMutex syncutils.RWMutex
	closeOnce sync.Once
}

// NewClientChannel creates the request channel of a mempool.
func NewClientChannel(bufferSize int) (*ClientSender, <-chan ClientRequest) {
	sender := &ClientSender{
		requests: make(chan ClientRequest, bufferSize),
		shutdown: make(chan struct{}),
	}

	return sender, sender.requests
}

// Send delivers the request to the mempool. Requests of one goroutine are delivered in send order.
func (s *ClientSender) Send(ctx context.Context, request ClientRequest) error {
	s.sendMutex.RLock()
	defer s.sendMutex.RUnlock()

	select {
	case <-s.shutdown:
		return ErrMempoolShutdown
	default:
	}

	select {
	case s.requests <- request:
		return nil
	case <-s.shutdown:
		return ErrMempoolShutdown
	case <-ctx.Done():
		return ierrors.Wrapf(ctx.Err(), "failed to send request %s", request.RequestID())
	}
}

// Close marks the channel as shut down. Pending and future sends fail with ErrMempoolShutdown.
// Once Close returns, no further request is enqueued, so draining the channel afterwards answers every request.
// The request channel itself stays open so that no send can panic.
func (s *ClientSender) Close() {
	s.closeOnce.Do(func() {
		// wakes up blocked sends before waiting for them
		close(s.shutdown)

		s.sendMutex.Lock()
		//nolint:staticcheck // empty critical section waits for the sends in flight
		s.sendMutex.Unlock()
	})
}

// Done is closed once the sender was closed.
func (s *ClientSender) Done() <-chan struct{} {
	return s.shutdown
}
