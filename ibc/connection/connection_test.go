package connection_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokenize-x/ibc-relayer/ibc/connection"
	"github.com/tokenize-x/ibc-relayer/ibc/ids"
)

func TestValidateOpenRequiresCounterpartyConnectionId(t *testing.T) {
	t.Parallel()

	end := connection.End{
		State:    connection.Open,
		ClientId: "07-tendermint-0",
		Counterparty: connection.Counterparty{
			ClientId: "07-tendermint-1",
		},
		Versions: []string{"1"},
	}
	require.Error(t, end.Validate())

	end.Counterparty.ConnectionId = ids.ConnectionId("connection-0")
	require.NoError(t, end.Validate())
}

func TestValidateRequiresVersions(t *testing.T) {
	t.Parallel()

	end := connection.End{
		State:    connection.Init,
		ClientId: "07-tendermint-0",
	}
	require.Error(t, end.Validate())
}
