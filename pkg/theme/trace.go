package theme

import "encoding/json"

// Layer names a provenance layer, highest priority first.
type Layer string

const (
	LayerExplicit Layer = "explicit"
	LayerOS       Layer = "os"
	LayerDefault  Layer = "default"
)

// Trace explains how the current theme was resolved.
type Trace struct {
	Value  Theme        `json:"value"`
	Winner Layer        `json:"winner"`
	Layers []Provenance `json:"layers"`
}

// Provenance records what one layer contributed.
type Provenance struct {
	Layer Layer `json:"layer"`
	Value Theme `json:"value,omitempty"`
	Found bool  `json:"found"`
}

// ToJSON serialises the trace.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON decodes a payload produced by ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

func resolve(pin Theme, pinned bool, osTheme Theme, osKnown bool) Trace {
	trace := Trace{
		Layers: []Provenance{
			{Layer: LayerExplicit, Found: pinned},
			{Layer: LayerOS, Found: osKnown},
			{Layer: LayerDefault, Value: Default, Found: true},
		},
	}
	if pinned {
		trace.Layers[0].Value = pin
	}
	if osKnown {
		trace.Layers[1].Value = osTheme
	}
	for _, layer := range trace.Layers {
		if layer.Found {
			trace.Value = layer.Value
			trace.Winner = layer.Layer
			break
		}
	}
	return trace
}
