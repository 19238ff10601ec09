package export

import (
	"encoding/json"
	"io"

	"screendb/internal/screen"
)

// WriteJSON writes the full measurement slice as a JSON array.
func WriteJSON(w io.Writer, ms []screen.Measurement) error {
	if ms == nil {
		ms = []screen.Measurement{}
	}
	enc := json.NewEncoder(w)
	return enc.Encode(ms)
}
