// client/types.go
package client

import (
	"sync"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// Endpoint — один RPC-узел пула со своим состоянием здоровья и метриками.
type Endpoint struct {
	Client *rpc.Client
	URL    string

	mutex   sync.RWMutex
	active  bool
	metrics *EndpointMetrics
}

// EndpointMetrics — накопленная статистика запросов к узлу.
type EndpointMetrics struct {
	mutex        sync.RWMutex
	successCount uint64
	errorCount   uint64
	latency      time.Duration
}

// Pool — отказоустойчивый пул RPC-узлов с round-robin выбором.
// Реализует sender.RPC.
type Pool struct {
	endpoints []*Endpoint
	currIndex int
	mutex     sync.Mutex
	logger    *zap.Logger
}
