// client/pool.go
package client

import (
	"sync/atomic"
	"time"
)

// Методы для Endpoint
func (e *Endpoint) setActive(state bool) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.active = state
}

func (e *Endpoint) isActive() bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	return e.active
}

func (e *Endpoint) updateMetrics(success bool, latency time.Duration) {
	e.metrics.mutex.Lock()
	defer e.metrics.mutex.Unlock()

	if success {
		atomic.AddUint64(&e.metrics.successCount, 1)
	} else {
		atomic.AddUint64(&e.metrics.errorCount, 1)
	}

	e.metrics.latency = (e.metrics.latency + latency) / 2 // Скользящее среднее
}

// Metrics возвращает счетчики успехов/ошибок и усредненную задержку узла.
func (e *Endpoint) Metrics() (uint64, uint64, time.Duration) {
	e.metrics.mutex.RLock()
	defer e.metrics.mutex.RUnlock()
	return e.metrics.successCount, e.metrics.errorCount, e.metrics.latency
}

// next выбирает следующий живой узел по кругу. Если живых не осталось,
// возвращает все узлы в строй: один транзиентный сбой не должен навсегда
// обесточить пул.
func (p *Pool) next() *Endpoint {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	initialIndex := p.currIndex
	for {
		p.currIndex = (p.currIndex + 1) % len(p.endpoints)
		if p.endpoints[p.currIndex].isActive() {
			return p.endpoints[p.currIndex]
		}
		if p.currIndex == initialIndex {
			for _, endpoint := range p.endpoints {
				endpoint.setActive(true)
			}
			return p.endpoints[p.currIndex]
		}
	}
}

func (p *Pool) hasActiveEndpoints() bool {
	for _, endpoint := range p.endpoints {
		if endpoint.isActive() {
			return true
		}
	}
	return false
}
