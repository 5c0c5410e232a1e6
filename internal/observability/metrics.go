package observability

type Metrics interface {
	ObserveAPI(method, path string, status int, durMs float64)
	ObserveFetch(bytes int, durMs float64)
	ObserveDeliver(strategy string, ok bool, durMs float64)
	IncCacheHit()
	IncCacheMiss()
}
