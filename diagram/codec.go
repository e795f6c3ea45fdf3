package diagram

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EncodeCollection serializes a diagram collection as a JSON array.
func EncodeCollection(diagrams []Diagram) ([]byte, error) {
	if diagrams == nil {
		diagrams = []Diagram{}
	}
	data, err := json.Marshal(diagrams)
	if err != nil {
		return nil, fmt.Errorf("encode diagrams: %w", err)
	}
	return data, nil
}

// DecodeCollection parses a JSON array of diagrams. Nil node and connection
// lists are normalized to empty slices so decoded diagrams compare equal to
// the ones that were encoded.
func DecodeCollection(data []byte) ([]Diagram, error) {
	var diagrams []Diagram
	if err := json.Unmarshal(data, &diagrams); err != nil {
		return nil, fmt.Errorf("decode diagrams: %w", err)
	}
	if diagrams == nil {
		return nil, fmt.Errorf("decode diagrams: payload is null")
	}
	for i := range diagrams {
		if diagrams[i].Nodes == nil {
			diagrams[i].Nodes = []Node{}
		}
		if diagrams[i].Connections == nil {
			diagrams[i].Connections = []Connection{}
		}
	}
	return diagrams, nil
}

// DecodeDiagrams parses either a single diagram object (as the JSON
// exporter writes it) or a collection array.
func DecodeDiagrams(data []byte) ([]Diagram, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return DecodeCollection(trimmed)
	}
	var d Diagram
	if err := json.Unmarshal(trimmed, &d); err != nil {
		return nil, fmt.Errorf("decode diagram: %w", err)
	}
	if d.Nodes == nil {
		d.Nodes = []Node{}
	}
	if d.Connections == nil {
		d.Connections = []Connection{}
	}
	return []Diagram{d}, nil
}
