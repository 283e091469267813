package solana

import (
	"context"
	"errors"
	"math/rand"

	"github.com/sisu-network/sentinel/types"
	"github.com/ybbus/jsonrpc/v3"
)

// shuffleClients returns a random permutation of a list of clients. The input is not modified.
func shuffleClients(c []jsonrpc.RPCClient) []jsonrpc.RPCClient {
	clients := make([]jsonrpc.RPCClient, len(c))
	copy(clients, c)
	rand.Shuffle(len(clients), func(x, y int) {
		clients[x], clients[y] = clients[y], clients[x]
	})

	return clients
}

// executeWithClients tries to execute a function with a list of RPC clients. If any of the execution
// finishes (either with success or failure), the loop through clients list will stop.
// The passed in params f will inform executeWithClients when to stop execution in its return value.
func executeWithClients[T any](originalClients []jsonrpc.RPCClient, f func(client jsonrpc.RPCClient) (T, bool, error)) (T, error) {
	var err error
	var stop bool
	var result T
	if len(originalClients) == 0 {
		return result, types.NewNoHealthyClientErr("solana")
	}

	clients := shuffleClients(originalClients)
	for _, client := range clients {
		if result, stop, err = f(client); err == nil || stop {
			return result, err
		}
	}

	return result, err
}

// call makes one json rpc call and decodes its result into out. A node that answers with an rpc
// error stops the iteration: another node would give the same answer.
func call(ctx context.Context, client jsonrpc.RPCClient, method string, out interface{}, params ...interface{}) (bool, error) {
	res, err := client.Call(ctx, method, params...)
	if err != nil {
		var httpErr *jsonrpc.HTTPError
		if errors.As(err, &httpErr) && httpErr.Code == 429 {
			return false, types.NewRateLimitErr("solana rpc", err.Error())
		}
		return false, err
	}

	if res.Error != nil {
		return true, res.Error
	}

	if err := res.GetObject(out); err != nil {
		return true, err
	}

	return false, nil
}
