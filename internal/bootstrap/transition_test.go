package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xKoRx/hftgate/sdk/domain"
	"github.com/xKoRx/hftgate/sdk/openapi"
)

func TestHappyPathReachesOperational(t *testing.T) {
	steps := []struct {
		event   Event
		state   State
		actions []Action
	}{
		{Event{Kind: Connected}, AppAuthorization, []Action{SendAppAuth, ArmStageTimer}},
		{DataEvent(&openapi.AppAuthRes{}), AccountAuthorization, []Action{SendAccountAuth, ArmStageTimer}},
		{DataEvent(&openapi.AccountAuthRes{CtidTraderAccountID: 1}), AccountInfo, []Action{RequestTrader, ArmStageTimer}},
		{DataEvent(openapi.NewTraderRes(1, openapi.Trader{})), InstrumentInfo, []Action{ApplyTrader, RequestSymbols, ArmStageTimer}},
		{DataEvent(&openapi.SymbolsListRes{}), PositionInfo, []Action{IndexSymbols, RequestSymbolSpecs, RequestPositions, ArmStageTimer}},
		{DataEvent(&openapi.SymbolByIDRes{}), PositionInfo, []Action{ApplySymbolSpecs}},
		{DataEvent(&openapi.ReconcileRes{}), Operational, []Action{SeedPositions, StopStageTimer, BootstrapComplete}},
		{DataEvent(&openapi.SpotEvent{}), Operational, []Action{Dispatch}},
		{DataEvent(&openapi.HeartbeatEvent{}), Operational, []Action{Dispatch}},
	}

	state := WaitForConnect
	for i, step := range steps {
		next, actions, err := Transition(state, step.event)
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, step.state, next, "step %d", i)
		assert.Equal(t, step.actions, actions, "step %d", i)
		state = next
	}
	assert.True(t, state.Ready())
}

func TestUnexpectedTagHoldsState(t *testing.T) {
	next, actions, err := Transition(AccountInfo, DataEvent(&openapi.SpotEvent{}))
	require.NoError(t, err)
	assert.Equal(t, AccountInfo, next)
	assert.Equal(t, []Action{LogUnexpected}, actions)

	next, actions, err = Transition(AppAuthorization, DataEvent(&openapi.Unknown{Type: 9999}))
	require.NoError(t, err)
	assert.Equal(t, AppAuthorization, next)
	assert.Equal(t, []Action{LogUnexpected}, actions)

	next, actions, err = Transition(InstrumentInfo, DataEvent(&openapi.HeartbeatEvent{}))
	require.NoError(t, err)
	assert.Equal(t, InstrumentInfo, next)
	assert.Empty(t, actions)
}

func TestErrorEnvelopeDuringHandshakeIsFatal(t *testing.T) {
	for _, state := range []State{AppAuthorization, AccountAuthorization, AccountInfo, InstrumentInfo, PositionInfo} {
		for _, msg := range []openapi.Message{
			&openapi.ErrorRes{ErrorCode: "CH_CLIENT_AUTH_FAILURE", Description: "bad secret"},
			&openapi.OAErrorRes{ErrorCode: "CH_ACCESS_TOKEN_INVALID"},
		} {
			next, actions, err := Transition(state, DataEvent(msg))
			require.Error(t, err, "%s", state)
			assert.True(t, domain.IsFatalError(err))
			assert.Equal(t, domain.ErrHandshakeRejected, domain.CodeOf(err))
			assert.Equal(t, state, next)
			assert.Empty(t, actions)
		}
	}
}

func TestErrorEnvelopeWhileOperationalIsDispatched(t *testing.T) {
	next, actions, err := Transition(Operational, DataEvent(&openapi.OAErrorRes{ErrorCode: "TRADING_BAD_VOLUME"}))
	require.NoError(t, err)
	assert.Equal(t, Operational, next)
	assert.Equal(t, []Action{Dispatch}, actions)
}

func TestServerDisconnectIsFatalInAnyState(t *testing.T) {
	events := []openapi.Message{
		&openapi.ClientDisconnectEvent{Reason: "maintenance"},
		openapi.NewAccountDisconnectEvent(1),
		&openapi.AccountsTokenInvalidatedEvent{Reason: "revoked"},
	}
	for _, state := range []State{AppAuthorization, PositionInfo, Operational} {
		for _, msg := range events {
			_, _, err := Transition(state, DataEvent(msg))
			require.Error(t, err)
			assert.True(t, domain.IsFatalError(err))
		}
	}

	_, _, err := Transition(Operational, DataEvent(&openapi.AccountsTokenInvalidatedEvent{}))
	assert.Equal(t, domain.ErrTokenInvalidated, domain.CodeOf(err))
}

func TestConnectionLostResetsEveryState(t *testing.T) {
	for s := WaitForConnect; s <= Operational; s++ {
		next, actions, err := Transition(s, Event{Kind: ConnectionLost})
		require.NoError(t, err)
		assert.Equal(t, WaitForConnect, next, "%s", s)
		assert.Equal(t, []Action{StopStageTimer, ResetSession}, actions)
	}
}

func TestStageTimeout(t *testing.T) {
	next, actions, err := Transition(AccountInfo, Event{Kind: StageTimeout})
	require.NoError(t, err)
	assert.Equal(t, WaitForConnect, next)
	assert.Equal(t, []Action{StopStageTimer, RecycleBroker}, actions)

	for _, s := range []State{WaitForConnect, Operational} {
		next, actions, err = Transition(s, Event{Kind: StageTimeout})
		require.NoError(t, err)
		assert.Equal(t, s, next)
		assert.Empty(t, actions)
	}
}

func TestTransitionReturnsIndependentActionSlices(t *testing.T) {
	_, first, _ := Transition(AppAuthorization, DataEvent(&openapi.AppAuthRes{}))
	first[0] = Dispatch
	_, second, _ := Transition(AppAuthorization, DataEvent(&openapi.AppAuthRes{}))
	assert.Equal(t, SendAccountAuth, second[0])
}

func TestStateNames(t *testing.T) {
	assert.Equal(t, "POSITION_INFO", PositionInfo.String())
	assert.Equal(t, "seed_positions", SeedPositions.String())
	assert.False(t, PositionInfo.Ready())
	assert.True(t, PositionInfo.Handshaking())
	assert.False(t, WaitForConnect.Handshaking())
}
