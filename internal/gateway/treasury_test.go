package gateway

import (
	"sync"
	"testing"

	"tengen/gateway/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceAccruesFromFees(t *testing.T) {
	g, _ := newTestGateway(t)

	balance, err := g.Balance()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balance)

	_, err = g.RequestCompute(testRequester, models.TaskTypePrimeFinder, nil, 100)
	require.NoError(t, err)
	_, err = g.RequestCompute("0xuser2", models.TaskTypeMonteCarlo, nil, 250)
	require.NoError(t, err)

	balance, err = g.Balance()
	require.NoError(t, err)
	assert.Equal(t, uint64(350), balance)
}

func TestWithdrawFeesSweepsEverything(t *testing.T) {
	g, emitter := newTestGateway(t)

	_, err := g.RequestCompute(testRequester, models.TaskTypePrimeFinder, nil, 100)
	require.NoError(t, err)
	_, err = g.RequestCompute("0xuser2", models.TaskTypeMonteCarlo, nil, 100)
	require.NoError(t, err)

	amount, err := g.WithdrawFees(testAdmin, "0xtreasury")
	require.NoError(t, err)
	assert.Equal(t, uint64(200), amount)

	balance, err := g.Balance()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balance)

	assert.Contains(t, emitter.types(), models.EventFeesWithdrawn)
}

func TestWithdrawFeesEmptyTreasury(t *testing.T) {
	g, _ := newTestGateway(t)

	_, err := g.WithdrawFees(testAdmin, "0xtreasury")
	assert.ErrorIs(t, err, ErrNoFeesToWithdraw)
}

func TestWithdrawFeesTwiceWithoutNewFees(t *testing.T) {
	g, _ := newTestGateway(t)

	_, err := g.RequestCompute(testRequester, models.TaskTypePrimeFinder, nil, 100)
	require.NoError(t, err)

	_, err = g.WithdrawFees(testAdmin, "0xtreasury")
	require.NoError(t, err)

	_, err = g.WithdrawFees(testAdmin, "0xtreasury")
	assert.ErrorIs(t, err, ErrNoFeesToWithdraw)
}

func TestWithdrawFeesAdminOnly(t *testing.T) {
	g, _ := newTestGateway(t)

	_, err := g.RequestCompute(testRequester, models.TaskTypePrimeFinder, nil, 100)
	require.NoError(t, err)

	_, err = g.WithdrawFees(testRequester, "0xtreasury")
	assert.ErrorIs(t, err, ErrNotAuthorizedAdmin)

	// The balance is untouched
	balance, err := g.Balance()
	require.NoError(t, err)
	assert.Equal(t, uint64(100), balance)
}

func TestBalanceAccruesAfterWithdrawal(t *testing.T) {
	g, _ := newTestGateway(t)

	_, err := g.RequestCompute(testRequester, models.TaskTypePrimeFinder, nil, 100)
	require.NoError(t, err)
	_, err = g.WithdrawFees(testAdmin, "0xtreasury")
	require.NoError(t, err)

	_, err = g.RequestCompute(testRequester, models.TaskTypePrimeFinder, nil, 300)
	require.NoError(t, err)

	amount, err := g.WithdrawFees(testAdmin, "0xtreasury")
	require.NoError(t, err)
	assert.Equal(t, uint64(300), amount)
}

func TestConcurrentSubmitAndWithdrawConserveFunds(t *testing.T) {
	g, _ := newTestGateway(t)

	const submissions = 10
	const feePerJob = 100

	var wg sync.WaitGroup
	var withdrawn uint64
	var withdrawMu sync.Mutex

	for i := 0; i < submissions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.RequestCompute(testRequester, models.TaskTypePrimeFinder, nil, feePerJob)
			assert.NoError(t, err)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		amount, err := g.WithdrawFees(testAdmin, "0xtreasury")
		if err == nil {
			withdrawMu.Lock()
			withdrawn += amount
			withdrawMu.Unlock()
		}
	}()
	wg.Wait()

	// Whatever the interleaving, no credit is lost:
	// withdrawn + remaining balance == total fees paid
	balance, err := g.Balance()
	require.NoError(t, err)
	assert.Equal(t, uint64(submissions*feePerJob), withdrawn+balance)
}
