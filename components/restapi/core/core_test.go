package core

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/hive.go/ierrors"
	"github.com/iotaledger/hive.go/kvstore/mapdb"
	"github.com/iotaledger/hive.go/log"
	"github.com/iotaledger/hive.go/runtime/options"
	"github.com/iotaledger/inx-app/pkg/httpserver"
	"github.com/iotaledger/ledgerapi/components/restapi"
	"github.com/iotaledger/ledgerapi/pkg/blockfactory"
	"github.com/iotaledger/ledgerapi/pkg/mempool"
	"github.com/iotaledger/ledgerapi/pkg/mempool/mempoolv1"
	"github.com/iotaledger/ledgerapi/pkg/model"
	"github.com/iotaledger/ledgerapi/pkg/requesthandler"
	"github.com/iotaledger/ledgerapi/pkg/retainer/txretainer"
	"github.com/iotaledger/ledgerapi/pkg/storage"
	"github.com/iotaledger/ledgerapi/pkg/storage/memstore"
	"github.com/iotaledger/ledgerapi/pkg/storage/sqlite"
	"github.com/iotaledger/ledgerapi/pkg/vm"
)

const testChainID model.ChainID = 4

var testSender = model.AccountAddressFromUint64(10)

type testFramework struct {
	Testing   *testing.T
	Echo      *echo.Echo
	Committed *model.SignedTransaction
}

// newTestFramework serves the routes on top of a ledger holding genesis and one block [1, 2].
func newTestFramework(t *testing.T, opts ...options.Option[requesthandler.RequestHandler]) *testFramework {
	logger := log.NewLogger()
	registry := vm.NewLayoutRegistry()
	store := memstore.New(mapdb.NewMapDB())
	factory := blockfactory.New(testChainID, registry)
	sender, requests := mempool.NewClientChannel(16)
	memPool := mempoolv1.New(logger, requests, store, registry, testChainID)

	genesis, err := factory.Genesis()
	require.NoError(t, err)
	_, err = store.Commit([]*model.TransactionAndOutput{genesis})
	require.NoError(t, err)

	committed := newTransaction(0)
	block, err := factory.CreateBlock(
		blockfactory.WithTimestamp(time.Now()),
		blockfactory.WithTransactions(committed),
	)
	require.NoError(t, err)
	_, err = store.Commit(block)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		memPool.Run(ctx)
	}()
	t.Cleanup(func() {
		sender.Close()
		cancel()
		<-done
	})

	deps = dependencies{
		RequestHandler: requesthandler.New(logger, store, sender, append([]options.Option[requesthandler.RequestHandler]{
			requesthandler.WithChainID(testChainID),
			requesthandler.WithInterpreter(registry),
		}, opts...)...),
	}
	restapi.ParamsRestAPI.Limits.DefaultPageSize = 25
	restapi.ParamsRestAPI.Limits.MaxPageSize = 100

	e := echo.New()
	setupRoutes(e.Group("/v1"))

	return &testFramework{
		Testing:   t,
		Echo:      e,
		Committed: committed,
	}
}

func newTransaction(sequenceNumber uint64) *model.SignedTransaction {
	return &model.SignedTransaction{
		Sender:                  testSender,
		SequenceNumber:          sequenceNumber,
		MaxGasAmount:            1_000,
		GasUnitPrice:            10,
		ExpirationTimestampSecs: uint64(time.Now().Add(time.Hour).Unix()),
		ChainID:                 testChainID,
	}
}

func (t *testFramework) Request(method string, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		request.Header.Set(echo.HeaderContentType, contentType)
	}

	recorder := httptest.NewRecorder()
	t.Echo.ServeHTTP(recorder, request)

	return recorder
}

// Get requests path and decodes the JSON response if the expected status code was returned.
func (t *testFramework) Get(path string, expectedCode int, target any) *httptest.ResponseRecorder {
	recorder := t.Request(http.MethodGet, path, nil, "")
	require.Equal(t.Testing, expectedCode, recorder.Code, recorder.Body.String())

	if target != nil {
		require.NoError(t.Testing, json.Unmarshal(recorder.Body.Bytes(), target))
	}

	return recorder
}

func (t *testFramework) Submit(txn *model.SignedTransaction) (int, map[string]any) {
	body, err := json.Marshal(txn)
	require.NoError(t.Testing, err)

	recorder := t.Request(http.MethodPost, "/v1"+RouteTransactions, body, echo.MIMEApplicationJSON)

	var resp map[string]any
	require.NoError(t.Testing, json.Unmarshal(recorder.Body.Bytes(), &resp))

	return recorder.Code, resp
}

func TestIndex(t *testing.T) {
	tf := newTestFramework(t)

	var resp map[string]any
	recorder := tf.Get("/v1", http.StatusOK, &resp)
	require.Equal(t, "2", resp["ledger_version"])
	require.Equal(t, "0", resp["oldest_ledger_version"])
	require.Equal(t, "1", resp["block_height"])
	require.Equal(t, "0", resp["oldest_block_height"])
	require.Equal(t, "full_node", resp["node_role"])
	require.EqualValues(t, testChainID, resp["chain_id"])

	require.Equal(t, "4", recorder.Header().Get(HeaderChainID))
	require.Equal(t, "2", recorder.Header().Get(HeaderLedgerVersion))
}

func TestHealthy(t *testing.T) {
	tf := newTestFramework(t)

	tf.Get("/v1"+RouteHealthy, http.StatusOK, nil)
	tf.Get("/v1"+RouteHealthy+"?duration_secs=600", http.StatusOK, nil)
	tf.Get("/v1"+RouteHealthy+"?duration_secs=abc", http.StatusBadRequest, nil)
}

func TestBlockByVersion(t *testing.T) {
	tf := newTestFramework(t)

	var block map[string]any
	tf.Get("/v1/blocks/by_version/2", http.StatusOK, &block)
	require.Equal(t, "1", block["block_height"])
	require.Equal(t, "1", block["start_version"])
	require.Equal(t, "2", block["end_version"])
	require.EqualValues(t, 2, block["num_transactions"])

	tf.Get("/v1/blocks/by_version/0", http.StatusOK, &block)
	require.Equal(t, "0", block["block_height"])

	tf.Get("/v1/blocks/by_version/2?ledger_version=1", http.StatusNotFound, nil)
	tf.Get("/v1/blocks/by_version/3", http.StatusNotFound, nil)
	tf.Get("/v1/blocks/by_version/x", http.StatusBadRequest, nil)
}

func TestTransactions(t *testing.T) {
	tf := newTestFramework(t)

	var txns []map[string]any
	tf.Get("/v1/transactions?start=0&limit=10", http.StatusOK, &txns)
	require.Len(t, txns, 3)
	require.Equal(t, "genesis_transaction", txns[0]["type"])
	require.Equal(t, "block_metadata_transaction", txns[1]["type"])
	require.Equal(t, "user_transaction", txns[2]["type"])
	require.Equal(t, testSender.ToHex(), txns[2]["sender"])

	// the latest page is returned without a start
	tf.Get("/v1/transactions?limit=1", http.StatusOK, &txns)
	require.Len(t, txns, 1)
	require.Equal(t, "2", txns[0]["version"])

	tf.Get("/v1/transactions?start=1&ledger_version=1", http.StatusOK, &txns)
	require.Len(t, txns, 1)

	tf.Get("/v1/transactions?limit=0", http.StatusBadRequest, nil)
	tf.Get("/v1/transactions?ledger_version=3", http.StatusNotFound, nil)
}

func TestTransactionByVersion(t *testing.T) {
	tf := newTestFramework(t)

	var txn map[string]any
	tf.Get("/v1/transactions/by_version/2", http.StatusOK, &txn)
	require.Equal(t, "user_transaction", txn["type"])
	require.Equal(t, tf.Committed.Hash().ToHex(), txn["hash"])
	require.Equal(t, true, txn["success"])
	require.NotEmpty(t, txn["changes"])
	require.Len(t, txn["events"], 1)

	tf.Get("/v1/transactions/by_version/1", http.StatusOK, &txn)
	require.Equal(t, "block_metadata_transaction", txn["type"])
	require.Contains(t, txn, "proposer")
	require.NotContains(t, txn, "sender")

	tf.Get("/v1/transactions/by_version/3", http.StatusNotFound, nil)
}

func TestSubmitAndLookupTransaction(t *testing.T) {
	tf := newTestFramework(t)

	var txn map[string]any
	tf.Get("/v1/transactions/by_hash/"+tf.Committed.Hash().ToHex(), http.StatusOK, &txn)
	require.Equal(t, "2", txn["version"])

	pending := newTransaction(1)
	code, resp := tf.Submit(pending)
	require.Equal(t, http.StatusAccepted, code)
	require.Equal(t, pending.Hash().ToHex(), resp["hash"])
	require.Equal(t, mempool.Accepted.String(), resp["status"])

	tf.Get("/v1/transactions/by_hash/"+pending.Hash().ToHex(), http.StatusOK, &txn)
	require.Equal(t, "pending_transaction", txn["type"])
	require.Equal(t, "1", txn["sequence_number"])

	code, resp = tf.Submit(pending)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, mempool.InvalidUpdate.String(), resp["status"])

	code, resp = tf.Submit(newTransaction(0))
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, string(mempool.StatusSequenceNumberTooOld), resp["vm_status"])

	binaryTxn := newTransaction(2)
	binaryTxnBytes, err := binaryTxn.Bytes()
	require.NoError(t, err)
	recorder := tf.Request(http.MethodPost, "/v1"+RouteTransactions, binaryTxnBytes, MIMESignedTransactionBytes)
	require.Equal(t, http.StatusAccepted, recorder.Code, recorder.Body.String())

	recorder = tf.Request(http.MethodPost, "/v1"+RouteTransactions, append(binaryTxnBytes, 0), MIMESignedTransactionBytes)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = tf.Request(http.MethodPost, "/v1"+RouteTransactions, []byte("txn"), echo.MIMETextPlain)
	require.Equal(t, http.StatusUnsupportedMediaType, recorder.Code)

	tf.Get("/v1/transactions/by_hash/"+model.HashData([]byte("unknown")).ToHex(), http.StatusNotFound, nil)
	tf.Get("/v1/transactions/by_hash/0x12", http.StatusBadRequest, nil)
}

func TestTransactionSubmission(t *testing.T) {
	tf := newTestFramework(t)
	tf.Get("/v1/transactions/by_hash/"+tf.Committed.Hash().ToHex()+"/submission", http.StatusNotImplemented, nil)
	tf.Get("/v1/accounts/"+testSender.ToHex()+"/submissions", http.StatusNotImplemented, nil)

	database, err := sqlite.New(log.NewLogger(), t.TempDir(), "tx_retainer.db", func(err error) {
		require.NoError(t, err)
	})
	require.NoError(t, err)
	t.Cleanup(database.Shutdown)

	retainer, err := txretainer.New(log.NewLogger(), database.ExecDBFunc())
	require.NoError(t, err)

	tf = newTestFramework(t, requesthandler.WithSubmissionRetainer(retainer))

	rejected := newTransaction(0)
	code, _ := tf.Submit(rejected)
	require.Equal(t, http.StatusBadRequest, code)

	var outcome map[string]any
	tf.Get("/v1/transactions/by_hash/"+rejected.Hash().ToHex()+"/submission", http.StatusOK, &outcome)
	require.Equal(t, rejected.Hash().ToHex(), outcome["hash"])
	require.Equal(t, mempool.VMError.String(), outcome["status"])
	require.Equal(t, string(mempool.StatusSequenceNumberTooOld), outcome["vm_status"])
	require.Equal(t, testSender.ToHex(), outcome["sender"])
	require.Equal(t, "0", outcome["sequence_number"])

	tf.Get("/v1/transactions/by_hash/"+model.HashData([]byte("unknown")).ToHex()+"/submission", http.StatusNotFound, nil)

	var submissions []map[string]any
	tf.Get("/v1/accounts/"+testSender.ToHex()+"/submissions", http.StatusOK, &submissions)
	require.Len(t, submissions, 1)
	require.Equal(t, rejected.Hash().ToHex(), submissions[0]["hash"])
	require.Equal(t, string(mempool.StatusSequenceNumberTooOld), submissions[0]["vm_status"])

	tf.Get("/v1/accounts/"+model.AccountAddressFromUint64(99).ToHex()+"/submissions", http.StatusOK, &submissions)
	require.Empty(t, submissions)
	tf.Get("/v1/accounts/xyz/submissions", http.StatusBadRequest, nil)
}

func TestAccounts(t *testing.T) {
	tf := newTestFramework(t)
	address := testSender.ToHex()

	var txns []map[string]any
	tf.Get("/v1/accounts/"+address+"/transactions", http.StatusOK, &txns)
	require.Len(t, txns, 1)
	require.Equal(t, "0", txns[0]["sequence_number"])

	tf.Get("/v1/accounts/"+address+"/transactions?ledger_version=1", http.StatusOK, &txns)
	require.Empty(t, txns)

	var resources []map[string]any
	tf.Get("/v1/accounts/"+address+"/resources", http.StatusOK, &resources)
	require.Len(t, resources, 1)
	require.Equal(t, vm.AccountTag.String(), resources[0]["type"])

	var resource map[string]any
	tf.Get("/v1/accounts/"+address+"/resource/"+vm.AccountTag.String(), http.StatusOK, &resource)
	require.Equal(t, "1", resource["data"].(map[string]any)["sequence_number"])

	tf.Get("/v1/accounts/"+address+"/resource/"+vm.TimestampTag.String(), http.StatusNotFound, nil)
	tf.Get("/v1/accounts/"+address+"/resource/account", http.StatusBadRequest, nil)
	tf.Get("/v1/accounts/xyz/resources", http.StatusBadRequest, nil)

	var events []map[string]any
	eventsPath := "/v1/accounts/" + address + "/events/" + strconv.FormatUint(blockfactory.SequenceNumberEventCreationNumber, 10)
	tf.Get(eventsPath, http.StatusOK, &events)
	require.Len(t, events, 1)
	require.Equal(t, "2", events[0]["version"])
	require.Equal(t, "0", events[0]["sequence_number"])

	tf.Get(eventsPath+"?ledger_version=1", http.StatusOK, &events)
	require.Empty(t, events)
}

func TestHTTPStatusCode(t *testing.T) {
	for expectedCode, err := range map[int]error{
		http.StatusBadRequest:          ierrors.Wrap(httpserver.ErrInvalidParameter, "bad"),
		http.StatusNotFound:            ierrors.Join(requesthandler.ErrBlockNotFound, storage.ErrVersionAhead),
		http.StatusGone:                ierrors.Join(requesthandler.ErrStorageUnavailable, storage.ErrPruned),
		http.StatusServiceUnavailable:  ierrors.Wrap(requesthandler.ErrSubmissionChannel, "closed"),
		http.StatusInternalServerError: ierrors.Wrap(requesthandler.ErrDataIntegrity, "mismatch"),
	} {
		require.Equal(t, expectedCode, httpStatusCode(err), err.Error())
	}

	require.Equal(t, http.StatusServiceUnavailable, httpStatusCode(requesthandler.ErrLedgerBehind))
	require.Equal(t, http.StatusInternalServerError, httpStatusCode(requesthandler.ErrMalformedLedger))
	require.Equal(t, http.StatusNotImplemented, httpStatusCode(requesthandler.ErrSubmissionRetainerDisabled))
}
