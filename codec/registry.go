package codec

import (
	"sort"
	"strings"
	"sync"
)

// Registry maps codec names and identifiers to codecs
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec // lower-cased name or UID
}

var defaultRegistry = NewRegistry()

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Codec)}
}

// Register adds a codec to the default registry
func Register(codec Codec) {
	defaultRegistry.Register(codec)
}

// Get looks up a codec in the default registry by name or UID
func Get(nameOrUID string) (Codec, error) {
	return defaultRegistry.Get(nameOrUID)
}

// List returns the codecs of the default registry sorted by name
func List() []Codec {
	return defaultRegistry.List()
}

// Register registers a codec under both its name and UID, replacing any
// codec previously registered under either key
func (r *Registry) Register(codec Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codecs[strings.ToLower(codec.Name())] = codec
	r.codecs[strings.ToLower(codec.UID())] = codec
}

// Get retrieves a codec by name or UID, ignoring case
func (r *Registry) Get(nameOrUID string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codec, ok := r.codecs[strings.ToLower(nameOrUID)]
	if !ok {
		return nil, ErrCodecNotFound
	}
	return codec, nil
}

// List returns every registered codec once, sorted by name
func (r *Registry) List() []Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	codecs := make([]Codec, 0, len(r.codecs)/2)
	for _, codec := range r.codecs {
		key := codec.Name() + "\x00" + codec.UID()
		if !seen[key] {
			seen[key] = true
			codecs = append(codecs, codec)
		}
	}
	sort.Slice(codecs, func(i, j int) bool { return codecs[i].Name() < codecs[j].Name() })
	return codecs
}
