package export

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/GerritSt/API-discovery-agent/pkg/discovery"
)

// JSONWriter writes discovery results as JSON documents, one per call.
type JSONWriter struct {
	mu     sync.Mutex
	writer io.Writer
	pretty bool
	closed bool
}

// NewJSONWriter creates a JSON writer over an io.Writer.
func NewJSONWriter(w io.Writer, pretty bool) *JSONWriter {
	return &JSONWriter{
		writer: w,
		pretty: pretty,
	}
}

// NewJSONFileWriter creates a JSON writer backed by a file. An empty path
// writes to stdout.
func NewJSONFileWriter(path string, pretty bool) (*JSONWriter, error) {
	if path == "" {
		return NewJSONWriter(os.Stdout, pretty), nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return NewJSONWriter(f, pretty), nil
}

// WriteResult writes one discovery result.
func (j *JSONWriter) WriteResult(result *discovery.Result) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}

	var data []byte
	var err error

	if j.pretty {
		data, err = json.MarshalIndent(result, "", "  ")
	} else {
		data, err = json.Marshal(result)
	}

	if err != nil {
		return err
	}

	_, err = j.writer.Write(data)
	if err != nil {
		return err
	}

	// Add newline
	_, err = j.writer.Write([]byte("\n"))
	return err
}

// Close closes the writer.
func (j *JSONWriter) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.closed = true

	if closer, ok := j.writer.(io.Closer); ok && j.writer != os.Stdout {
		return closer.Close()
	}
	return nil
}
