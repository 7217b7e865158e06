package mempool_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/iotaledger/ledgerapi/pkg/mempool"
	"github.com/iotaledger/ledgerapi/pkg/model"
)

func TestClientSender_CloseWaitsForSends(t *testing.T) {
	const (
		senders           = 16
		requestsPerSender = 64
	)

	sender, requests := mempool.NewClientChannel(senders * requestsPerSender)

	var (
		wg        sync.WaitGroup
		delivered atomic.Int64
		start     = make(chan struct{})
	)
	for i := range senders {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start

			for j := range requestsPerSender {
				request, _ := mempool.NewGetTransactionByHashRequest(model.HashData([]byte{byte(i), byte(j)}))
				if err := sender.Send(context.Background(), request); err != nil {
					assert.ErrorIs(t, err, mempool.ErrMempoolShutdown)

					return
				}
				delivered.Inc()
			}
		}(i)
	}

	close(start)
	sender.Close()
	bufferedAtClose := len(requests)

	wg.Wait()

	// every successful send was enqueued before Close returned
	require.EqualValues(t, bufferedAtClose, delivered.Load())
	require.Len(t, requests, bufferedAtClose)

	request, _ := mempool.NewGetTransactionByHashRequest(model.ZeroHash)
	require.ErrorIs(t, sender.Send(context.Background(), request), mempool.ErrMempoolShutdown)
}

func TestClientSender_CloseWakesBlockedSend(t *testing.T) {
	sender, _ := mempool.NewClientChannel(0)

	errCh := make(chan error, 1)
	go func() {
		request, _ := mempool.NewGetTransactionByHashRequest(model.ZeroHash)
		errCh <- sender.Send(context.Background(), request)
	}()

	sender.Close()
	require.ErrorIs(t, <-errCh, mempool.ErrMempoolShutdown)

	select {
	case <-sender.Done():
	default:
		t.Fatal("sender must be done after Close")
	}
}
