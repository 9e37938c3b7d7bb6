package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Simple Prometheus-style metrics for HTTP requests, imports, and sync.
// This is intentionally minimal and in-memory only.

var (
	mu             sync.RWMutex
	requestsTotal  = make(map[reqKey]int64)
	latencyMsSum   = make(map[latKey]int64)
	latencyMsCount = make(map[latKey]int64)
	importsTotal   = make(map[importKey]int64)
	syncsTotal     = make(map[syncKey]int64)
)

type reqKey struct {
	Method string
	Path   string
	Status int
}

type latKey struct {
	Method string
	Path   string
}

type importKey struct {
	Tier    string
	Success string
}

type syncKey struct {
	Direction string
	Success   string
}

// RecordRequest increments request counter and records latency.
func RecordRequest(method, path string, status int, latencyMs int64) {
	mu.Lock()
	defer mu.Unlock()

	rk := reqKey{Method: method, Path: path, Status: status}
	requestsTotal[rk]++

	lk := latKey{Method: method, Path: path}
	latencyMsSum[lk] += latencyMs
	latencyMsCount[lk]++
}

// RecordImport counts an import attempt by fetch engine
// ("http" or "browser").
func RecordImport(tier string, success bool) {
	mu.Lock()
	defer mu.Unlock()
	importsTotal[importKey{Tier: tier, Success: boolLabel(success)}]++
}

// RecordSync counts a sync operation by direction ("push" or "pull").
func RecordSync(direction string, success bool) {
	mu.Lock()
	defer mu.Unlock()
	syncsTotal[syncKey{Direction: direction, Success: boolLabel(success)}]++
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// Render returns the metrics in Prometheus text exposition format.
func Render() string {
	mu.RLock()
	defer mu.RUnlock()

	var b strings.Builder

	b.WriteString("# TYPE ladle_http_requests_total counter\n")
	for _, k := range sortedReqKeys() {
		fmt.Fprintf(&b, "ladle_http_requests_total{method=%q,path=%q,status=\"%d\"} %d\n",
			k.Method, k.Path, k.Status, requestsTotal[k])
	}

	b.WriteString("# TYPE ladle_http_request_latency_ms summary\n")
	for _, k := range sortedLatKeys() {
		fmt.Fprintf(&b, "ladle_http_request_latency_ms_sum{method=%q,path=%q} %d\n",
			k.Method, k.Path, latencyMsSum[k])
		fmt.Fprintf(&b, "ladle_http_request_latency_ms_count{method=%q,path=%q} %d\n",
			k.Method, k.Path, latencyMsCount[k])
	}

	b.WriteString("# TYPE ladle_imports_total counter\n")
	for _, k := range sortedImportKeys() {
		fmt.Fprintf(&b, "ladle_imports_total{tier=%q,success=%q} %d\n",
			k.Tier, k.Success, importsTotal[k])
	}

	b.WriteString("# TYPE ladle_syncs_total counter\n")
	for _, k := range sortedSyncKeys() {
		fmt.Fprintf(&b, "ladle_syncs_total{direction=%q,success=%q} %d\n",
			k.Direction, k.Success, syncsTotal[k])
	}

	return b.String()
}

func sortedReqKeys() []reqKey {
	keys := make([]reqKey, 0, len(requestsTotal))
	for k := range requestsTotal {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Path != keys[j].Path {
			return keys[i].Path < keys[j].Path
		}
		if keys[i].Method != keys[j].Method {
			return keys[i].Method < keys[j].Method
		}
		return keys[i].Status < keys[j].Status
	})
	return keys
}

func sortedLatKeys() []latKey {
	keys := make([]latKey, 0, len(latencyMsSum))
	for k := range latencyMsSum {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Path != keys[j].Path {
			return keys[i].Path < keys[j].Path
		}
		return keys[i].Method < keys[j].Method
	})
	return keys
}

func sortedImportKeys() []importKey {
	keys := make([]importKey, 0, len(importsTotal))
	for k := range importsTotal {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Tier != keys[j].Tier {
			return keys[i].Tier < keys[j].Tier
		}
		return keys[i].Success < keys[j].Success
	})
	return keys
}

func sortedSyncKeys() []syncKey {
	keys := make([]syncKey, 0, len(syncsTotal))
	for k := range syncsTotal {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Direction != keys[j].Direction {
			return keys[i].Direction < keys[j].Direction
		}
		return keys[i].Success < keys[j].Success
	})
	return keys
}
