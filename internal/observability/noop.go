package observability

type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) ObserveAPI(string, string, int, float64) {}
func (Noop) ObserveFetch(int, float64)               {}
func (Noop) ObserveDeliver(string, bool, float64)    {}
func (Noop) IncCacheHit()                            {}
func (Noop) IncCacheMiss()                           {}
