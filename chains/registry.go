package chains

import (
	"fmt"
	"sort"
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/sisu-network/sentinel/types"
)

// Registry holds every configured chain by name.
type Registry struct {
	chains map[string]*Chain

	// asset -> origin chain name
	origins *lru.Cache
	lock    *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		chains:  make(map[string]*Chain),
		origins: lru.New(256),
		lock:    &sync.Mutex{},
	}
}

func (r *Registry) Add(chain *Chain) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.chains[chain.Name()] = chain
	r.origins.Clear()
}

func (r *Registry) Get(name string) (*Chain, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	chain, ok := r.chains[name]
	if !ok {
		return nil, types.NewChainNotFoundErr(name)
	}

	return chain, nil
}

// Origin returns the chain on which asset is native.
func (r *Registry) Origin(asset string) (*Chain, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if name, ok := r.origins.Get(asset); ok {
		return r.chains[name.(string)], nil
	}

	for name, chain := range r.chains {
		for _, native := range chain.Client.NativeAssets() {
			if native == asset {
				r.origins.Add(asset, name)
				return chain, nil
			}
		}
	}

	return nil, types.NewChainNotFoundErr(fmt.Sprintf("origin of %s", asset))
}

// All returns the chains sorted by name.
func (r *Registry) All() []*Chain {
	r.lock.Lock()
	defer r.lock.Unlock()

	ret := make([]*Chain, 0, len(r.chains))
	for _, chain := range r.chains {
		ret = append(ret, chain)
	}
	sort.Slice(ret, func(i, j int) bool {
		return ret[i].Name() < ret[j].Name()
	})

	return ret
}

// Syncable returns the chains that emit burn or lock events.
func (r *Registry) Syncable() []*Chain {
	ret := make([]*Chain, 0)
	for _, chain := range r.All() {
		if chain.Syncer != nil {
			ret = append(ret, chain)
		}
	}

	return ret
}
