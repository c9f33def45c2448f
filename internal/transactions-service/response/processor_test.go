package response

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crediflow/credit-transactions-platform-poc/pkg/contracts/messages"
)

type fakeStore struct {
	completed []string
	failed    map[string]string
	matched   bool
	err       error
}

func newFakeStore(matched bool) *fakeStore {
	return &fakeStore{failed: map[string]string{}, matched: matched}
}

func (f *fakeStore) MarkCompleted(_ context.Context, transactionID string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if !f.matched {
		return 0, nil
	}
	f.completed = append(f.completed, transactionID)
	return 1, nil
}

func (f *fakeStore) MarkFailed(_ context.Context, transactionID, message string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if !f.matched {
		return 0, nil
	}
	f.failed[transactionID] = message
	return 1, nil
}

func TestHandle_SuccessMarksCompleted(t *testing.T) {
	st := newFakeStore(true)
	p := &Processor{Log: zap.NewNop(), Store: st}

	err := p.Handle(context.Background(), &messages.DebitResponse{
		TransactionID: "tx-1", IsSuccess: true, NewLimit: 10000,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"tx-1"}, st.completed)
	assert.Empty(t, st.failed)
}

func TestHandle_FailureMarksFailedWithDetail(t *testing.T) {
	st := newFakeStore(true)
	p := &Processor{Log: zap.NewNop(), Store: st}

	err := p.Handle(context.Background(), &messages.DebitResponse{
		TransactionID: "tx-2", IsSuccess: false, NewLimit: 5000, Message: "Insufficient credit limit",
	})
	require.NoError(t, err)
	assert.Equal(t, "Insufficient credit limit", st.failed["tx-2"])
	assert.Empty(t, st.completed)
}

func TestHandle_UnmatchedTransactionIsNoop(t *testing.T) {
	st := newFakeStore(false)
	p := &Processor{Log: zap.NewNop(), Store: st}

	// transactionId sem linha correspondente: no-op, não erro
	err := p.Handle(context.Background(), &messages.DebitResponse{TransactionID: "ghost", IsSuccess: true})
	assert.NoError(t, err)

	err = p.Handle(context.Background(), &messages.DebitResponse{TransactionID: "ghost", IsSuccess: false, Message: "x"})
	assert.NoError(t, err)
}

func TestHandle_StoreErrorPropagates(t *testing.T) {
	st := newFakeStore(true)
	st.err = errors.New("db down")
	p := &Processor{Log: zap.NewNop(), Store: st}

	err := p.Handle(context.Background(), &messages.DebitResponse{TransactionID: "tx-3", IsSuccess: true})
	assert.Error(t, err)
}
