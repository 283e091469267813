package eth

import (
	"context"
	"errors"
	"math/big"
	"math/rand"
	"sync"

	"github.com/ethereum/go-ethereum"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sisu-network/lib/log"
	"github.com/sisu-network/sentinel/types"
)

// EthClient A wrapper around eth.client so that we can mock in syncer tests.
type EthClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*ethtypes.Header, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error)
}

type dialFunc func(ctx context.Context, rpc string) (EthClient, error)

func dialEthclient(ctx context.Context, rpc string) (EthClient, error) {
	return ethclient.DialContext(ctx, rpc)
}

// defaultEthClient spreads calls over several rpcs of the same chain. An rpc that fails a call is
// marked unhealthy until the next refresh, which happens when no healthy rpc is left.
type defaultEthClient struct {
	chain       string
	initialRpcs []string
	dial        dialFunc

	clients   []EthClient
	healthies []bool
	rpcs      []string

	lock *sync.RWMutex
}

func NewEthClients(chain string, initialRpcs []string) EthClient {
	return newEthClients(chain, initialRpcs, dialEthclient)
}

func newEthClients(chain string, initialRpcs []string, dial dialFunc) *defaultEthClient {
	return &defaultEthClient{
		chain:       chain,
		initialRpcs: initialRpcs,
		dial:        dial,
		lock:        &sync.RWMutex{},
	}
}

func (c *defaultEthClient) updateRpcs(ctx context.Context) {
	c.lock.RLock()
	oldClients := c.clients
	c.lock.RUnlock()

	rpcs, clients, healthies := c.getRpcsHealthiness(ctx, c.initialRpcs)
	log.Verbosef("[%s] %d of %d rpcs are healthy", c.chain, len(rpcs), len(c.initialRpcs))

	c.lock.Lock()
	for _, client := range oldClients {
		if closer, ok := client.(interface{ Close() }); ok {
			closer.Close()
		}
	}
	c.rpcs, c.clients, c.healthies = rpcs, clients, healthies
	c.lock.Unlock()
}

func (c *defaultEthClient) getRpcsHealthiness(ctx context.Context, allRpcs []string) ([]string, []EthClient, []bool) {
	clients := make([]EthClient, 0)
	rpcs := make([]string, 0)
	healthies := make([]bool, 0)

	for _, rpc := range allRpcs {
		client, err := c.dial(ctx, rpc)
		if err != nil {
			log.Warnf("[%s] cannot dial rpc %s, err = %v", c.chain, rpc, err)
			continue
		}

		if _, err := client.BlockNumber(ctx); err != nil {
			log.Warnf("[%s] rpc %s is not healthy, err = %v", c.chain, rpc, err)
			if closer, ok := client.(interface{ Close() }); ok {
				closer.Close()
			}
			continue
		}

		clients = append(clients, client)
		rpcs = append(rpcs, rpc)
		healthies = append(healthies, true)
	}

	return rpcs, clients, healthies
}

// shuffle returns the healthy clients in random order so that load spreads over all rpcs.
func (c *defaultEthClient) shuffle() ([]EthClient, []string) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	clients := make([]EthClient, 0, len(c.clients))
	rpcs := make([]string, 0, len(c.clients))
	for _, i := range rand.Perm(len(c.clients)) {
		if c.healthies[i] {
			clients = append(clients, c.clients[i])
			rpcs = append(rpcs, c.rpcs[i])
		}
	}

	return clients, rpcs
}

func (c *defaultEthClient) markUnhealthy(rpc string) {
	c.lock.Lock()
	defer c.lock.Unlock()

	for i := range c.rpcs {
		if c.rpcs[i] == rpc {
			c.healthies[i] = false
		}
	}
}

func (c *defaultEthClient) getHealthyClients(ctx context.Context) ([]EthClient, []string) {
	clients, rpcs := c.shuffle()
	if len(clients) == 0 {
		c.updateRpcs(ctx)
		clients, rpcs = c.shuffle()
	}

	return clients, rpcs
}

// execute runs f on healthy clients until one of them succeeds.
func execute[T any](ctx context.Context, c *defaultEthClient, f func(client EthClient) (T, error)) (T, error) {
	var result T

	clients, rpcs := c.getHealthyClients(ctx)
	if len(clients) == 0 {
		return result, types.NewNoHealthyClientErr(c.chain)
	}

	var err error
	for i, client := range clients {
		result, err = f(client)
		if err == nil {
			return result, nil
		}

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			// The caller gave up, the rpc may be fine.
			return result, err
		}

		log.Warnf("[%s] rpc %s failed, err = %v", c.chain, rpcs[i], err)
		c.markUnhealthy(rpcs[i])
	}

	return result, err
}

func (c *defaultEthClient) BlockNumber(ctx context.Context) (uint64, error) {
	return execute(ctx, c, func(client EthClient) (uint64, error) {
		return client.BlockNumber(ctx)
	})
}

func (c *defaultEthClient) HeaderByNumber(ctx context.Context, number *big.Int) (*ethtypes.Header, error) {
	return execute(ctx, c, func(client EthClient) (*ethtypes.Header, error) {
		return client.HeaderByNumber(ctx, number)
	})
}

func (c *defaultEthClient) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error) {
	return execute(ctx, c, func(client EthClient) ([]ethtypes.Log, error) {
		return client.FilterLogs(ctx, q)
	})
}
