package browser

import (
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
)

// Proxy is one record from the configured proxy pool.
type Proxy struct {
	Server   string
	Username string
	Password string
}

// ProxyPool distributes requests across the configured proxies.
// An empty pool is valid and means "no proxy".
type ProxyPool struct {
	mu      sync.Mutex
	proxies []Proxy
	next    int
}

// NewProxyPool parses "server|username|password" entries (username and
// password optional). Malformed entries are skipped.
func NewProxyPool(entries []string) *ProxyPool {
	pool := &ProxyPool{}
	for _, e := range entries {
		parts := strings.Split(e, "|")
		server := strings.TrimSpace(parts[0])
		if server == "" {
			continue
		}
		p := Proxy{Server: server}
		if len(parts) > 1 {
			p.Username = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			p.Password = strings.TrimSpace(parts[2])
		}
		pool.proxies = append(pool.proxies, p)
	}
	if len(pool.proxies) > 0 {
		slog.Info("proxy pool configured", "proxies", len(pool.proxies))
	}
	return pool
}

// Size returns the number of configured proxies.
func (p *ProxyPool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.proxies)
}

// Next returns the next proxy in round-robin order, or nil when the pool
// is empty.
func (p *ProxyPool) Next() *Proxy {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.proxies) == 0 {
		return nil
	}
	proxy := p.proxies[p.next]
	p.next = (p.next + 1) % len(p.proxies)
	return &proxy
}

// Random returns a random proxy, or nil when the pool is empty.
func (p *ProxyPool) Random() *Proxy {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.proxies) == 0 {
		return nil
	}
	proxy := p.proxies[rand.IntN(len(p.proxies))]
	return &proxy
}
