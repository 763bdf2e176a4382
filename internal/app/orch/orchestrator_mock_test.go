package orch

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/dkeye/WatchTogether/internal/core"
	"github.com/dkeye/WatchTogether/internal/core/mocks"
	"github.com/dkeye/WatchTogether/internal/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// eventIs matches a frame by its envelope type.
type eventIs string

func (e eventIs) Matches(x any) bool {
	f, ok := x.(core.Frame)
	if !ok {
		return false
	}
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(f, &env); err != nil {
		return false
	}
	return env.Type == string(e)
}

func (e eventIs) String() string { return fmt.Sprintf("frame of type %q", string(e)) }

func TestHostDisconnectDeliversExactlyOneHostLeftPerGuest(t *testing.T) {
	ctrl := gomock.NewController(t)
	o := newTestOrch(3)

	host := mocks.NewMockSignalConnection(ctrl)
	g1 := mocks.NewMockSignalConnection(ctrl)
	g2 := mocks.NewMockSignalConnection(ctrl)
	o.Connect("host", host, nil)
	o.Connect("g1", g1, nil)
	o.Connect("g2", g2, nil)

	host.EXPECT().TrySend(eventIs(core.EventGuestJoined)).Return(nil).Times(2)
	g1.EXPECT().TrySend(eventIs(core.EventGuestJoined)).Return(nil).Times(1)
	g1.EXPECT().TrySend(eventIs(core.EventHostLeft)).Return(nil).Times(1)
	g2.EXPECT().TrySend(eventIs(core.EventHostLeft)).Return(nil).Times(1)

	sess, err := o.CreateSession("host")
	require.NoError(t, err)
	_, err = o.JoinSession("g1", sess.ID)
	require.NoError(t, err)
	_, err = o.JoinSession("g2", sess.ID)
	require.NoError(t, err)

	o.OnDisconnect("host")

	_, err = o.JoinSession("g1", sess.ID)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSignalWithoutCounterpartIsNotSent(t *testing.T) {
	ctrl := gomock.NewController(t)
	o := newTestOrch(1)

	host := mocks.NewMockSignalConnection(ctrl)
	o.Connect("host", host, nil)
	// No TrySend expectation: any send fails the test.

	_, err := o.CreateSession("host")
	require.NoError(t, err)
	require.False(t, o.Relay("host", core.EventOffer, "", json.RawMessage(`{"sdp":"x"}`)))
	require.False(t, o.Relay("host", core.EventCandidate, "", json.RawMessage(`{"candidate":"x"}`)))
}

func TestClosedConnectionIsNotKicked(t *testing.T) {
	ctrl := gomock.NewController(t)
	o := newTestOrch(1)

	canceled := false
	host := mocks.NewMockSignalConnection(ctrl)
	guest := mocks.NewMockSignalConnection(ctrl)
	o.Connect("host", host, func() { canceled = true })
	o.Connect("g1", guest, nil)

	host.EXPECT().TrySend(eventIs(core.EventGuestJoined)).Return(core.ErrConnClosed)

	sess, err := o.CreateSession("host")
	require.NoError(t, err)
	_, err = o.JoinSession("g1", sess.ID)
	require.NoError(t, err)
	require.False(t, canceled, "only back-pressure goes through the kick policy")
}
