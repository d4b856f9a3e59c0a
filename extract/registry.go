package extract

import (
	"sort"
	"sync"

	"github.com/xniw/pricelist/format"
	"github.com/xniw/pricelist/htmldoc"
	"github.com/xniw/pricelist/model"
	"github.com/xniw/pricelist/xls"
	"github.com/xniw/pricelist/xlsx"
)

// Reader turns the bytes of one source format into a sheet of raw rows.
type Reader interface {
	// Format returns the format the reader handles
	Format() format.Format

	// Read extracts the first worksheet or table
	Read(data []byte) (*model.Sheet, error)
}

// ReadFunc adapts a plain function to the Reader interface.
type ReadFunc func(data []byte) (*model.Sheet, error)

type funcReader struct {
	format format.Format
	read   ReadFunc
}

func (r funcReader) Format() format.Format                   { return r.format }
func (r funcReader) Read(data []byte) (*model.Sheet, error) { return r.read(data) }

// NewReader returns a Reader for f backed by read.
func NewReader(f format.Format, read ReadFunc) Reader {
	return funcReader{format: f, read: read}
}

// Registry holds registered readers, at most one per format.
type Registry struct {
	mu      sync.RWMutex
	readers map[format.Format]Reader
}

// NewRegistry creates an empty reader registry.
func NewRegistry() *Registry {
	return &Registry{
		readers: make(map[format.Format]Reader),
	}
}

// Register registers a reader, replacing any reader for the same format.
func (r *Registry) Register(reader Reader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readers[reader.Format()] = reader
}

// Get retrieves the reader for a format.
func (r *Registry) Get(f format.Format) (Reader, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reader, ok := r.readers[f]
	return reader, ok
}

// List returns the registered formats in declaration order.
func (r *Registry) List() []format.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	formats := make([]format.Format, 0, len(r.readers))
	for f := range r.readers {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// Global registry
var globalRegistry = NewRegistry()

// Register registers a reader globally.
func Register(reader Reader) {
	globalRegistry.Register(reader)
}

// DefaultRegistry returns the global registry.
func DefaultRegistry() *Registry {
	return globalRegistry
}

func init() {
	Register(NewReader(format.XLSX, xlsx.Read))
	Register(NewReader(format.XLS, xls.Read))
	Register(NewReader(format.HTML, htmldoc.Read))
}
