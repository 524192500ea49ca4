// Package proxy loads the outbound proxy pool used for enrichment fetches.
package proxy

import (
	"bufio"
	"fmt"
	"math/rand"
	"net/url"
	"os"
	"strings"
)

// Pool is a fixed set of proxy endpoints loaded once at startup and read
// randomly per fetch. An empty pool means proxying is disabled.
type Pool struct {
	proxies []*url.URL
}

// Load reads proxies from a flat file, one `host:port:username:password`
// entry per line. A missing file is tolerated and yields an empty pool;
// proxying is simply disabled for the process lifetime.
func Load(path string) (*Pool, error) {
	if path == "" {
		return &Pool{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Pool{}, nil
		}
		return nil, fmt.Errorf("open proxy file: %w", err)
	}
	defer f.Close()

	var proxies []*url.URL
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		u, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("proxy file %s: %w", path, err)
		}
		proxies = append(proxies, u)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read proxy file: %w", err)
	}
	return &Pool{proxies: proxies}, nil
}

func parseLine(line string) (*url.URL, error) {
	parts := strings.Split(line, ":")
	if len(parts) != 4 {
		return nil, fmt.Errorf("malformed proxy entry %q: want host:port:username:password", line)
	}
	host, port, user, pass := parts[0], parts[1], parts[2], parts[3]
	raw := fmt.Sprintf("http://%s:%s@%s:%s", url.QueryEscape(user), url.QueryEscape(pass), host, port)
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse proxy entry %q: %w", line, err)
	}
	return u, nil
}

// Len reports the number of loaded proxies.
func (p *Pool) Len() int {
	return len(p.proxies)
}

// Pick returns a random proxy from the pool, or false when none are
// configured.
func (p *Pool) Pick() (*url.URL, bool) {
	if len(p.proxies) == 0 {
		return nil, false
	}
	return p.proxies[rand.Intn(len(p.proxies))], true
}
