package memgraph

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/memlayout/pkg/cache"
)

// Marshal encodes g as indented JSON. Nil node and edge lists are written
// as [] so consumers never see null.
func Marshal(g Graph) ([]byte, error) {
	if g.Nodes == nil {
		g.Nodes = []Node{}
	}
	if g.Edges == nil {
		g.Edges = []Edge{}
	}
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode graph: %w", err)
	}
	return append(data, '\n'), nil
}

// Unmarshal decodes a graph written by Marshal.
func Unmarshal(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, fmt.Errorf("decode graph: %w", err)
	}
	return g, nil
}

// Hash returns the content hash of the graph's JSON form. Graphs with equal
// hashes render to identical exports.
func Hash(g Graph) (string, error) {
	data, err := Marshal(g)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}
