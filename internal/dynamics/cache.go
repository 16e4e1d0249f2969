package dynamics

import "sync"

type cacheKey struct {
	links    int
	friction float64
}

var (
	cacheMu sync.Mutex
	cache   = make(map[cacheKey]*Model)
)

// Load returns the compiled model for (links, friction), deriving and
// compiling it on first use. Derivation is the expensive one-time phase;
// compiled models are immutable, so sharing the cached instance across
// environments is safe.
func Load(links int, friction float64) (*Model, error) {
	key := cacheKey{links: links, friction: friction}

	cacheMu.Lock()
	defer cacheMu.Unlock()
	if m, ok := cache[key]; ok {
		return m, nil
	}

	eq, err := Derive(links, friction)
	if err != nil {
		return nil, err
	}
	m, err := Compile(eq)
	if err != nil {
		return nil, err
	}
	cache[key] = m
	return m, nil
}
