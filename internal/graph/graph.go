// Package graph provides the CSR adjacency representation and DIMACS
// shortest-path file parsing used by the SSSP driver.
package graph

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Edge is one CSR adjacency entry: the 0-indexed target node and the
// non-negative edge weight.
type Edge struct {
	Target uint32
	Weight uint32
}

// Graph is a 0-indexed compressed-sparse-row directed graph. Nodes[i] is
// the offset of node i's first outgoing edge in Edges; Nodes has
// NumNodes()+1 entries so every node's edge slice is Edges[Nodes[i]:Nodes[i+1]].
type Graph struct {
	Nodes []uint32
	Edges []Edge
}

// NumNodes returns the number of nodes in the graph.
func (g *Graph) NumNodes() int {
	if len(g.Nodes) == 0 {
		return 0
	}
	return len(g.Nodes) - 1
}

// Neighbors returns node v's outgoing edges.
func (g *Graph) Neighbors(v uint32) []Edge {
	return g.Edges[g.Nodes[v]:g.Nodes[v+1]]
}

// UnreachableDistance is the sentinel distance assigned to a node before
// it is ever relaxed, matching the original's choice of
// numeric_limits<uint32_t>::max() - 1 so that the max() value itself stays
// free for genuinely "not representable" results.
const UnreachableDistance uint32 = math.MaxUint32 - 1

// ReadDIMACS parses a graph in the DIMACS shortest-path format: comment
// lines start with "c", a single problem line "p sp <nodes> <edges>"
// declares the node and edge counts, and each arc line "a <src> <dst>
// <weight>" is 1-indexed and is converted to 0-indexed on the way in.
// Arcs need not arrive sorted by source; ReadDIMACS buckets them before
// building the CSR offsets.
func ReadDIMACS(r io.Reader) (*Graph, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<24)

	var numNodes, numEdges uint64
	var havePLine bool
	var buckets [][]Edge
	lineNo := 0

	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "c":
			continue
		case "p":
			if len(fields) != 4 {
				return nil, fmt.Errorf("graph: line %d: malformed problem line", lineNo)
			}
			n, err1 := strconv.ParseUint(fields[2], 10, 64)
			e, err2 := strconv.ParseUint(fields[3], 10, 64)
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("graph: line %d: malformed problem line", lineNo)
			}
			numNodes, numEdges = n, e
			havePLine = true
			buckets = make([][]Edge, numNodes)
		case "a":
			if !havePLine {
				return nil, fmt.Errorf("graph: line %d: arc line before problem line", lineNo)
			}
			if len(fields) != 4 {
				return nil, fmt.Errorf("graph: line %d: malformed arc line", lineNo)
			}
			src, err1 := strconv.ParseUint(fields[1], 10, 64)
			dst, err2 := strconv.ParseUint(fields[2], 10, 64)
			w, err3 := strconv.ParseUint(fields[3], 10, 64)
			if err1 != nil || err2 != nil || err3 != nil {
				return nil, fmt.Errorf("graph: line %d: malformed arc line", lineNo)
			}
			if src == 0 || src > numNodes {
				return nil, fmt.Errorf("graph: line %d: arc source %d out of range [1,%d]", lineNo, src, numNodes)
			}
			if dst == 0 || dst > numNodes {
				return nil, fmt.Errorf("graph: line %d: arc target %d out of range [1,%d]", lineNo, dst, numNodes)
			}
			buckets[src-1] = append(buckets[src-1], Edge{Target: uint32(dst - 1), Weight: uint32(w)})
		default:
			return nil, fmt.Errorf("graph: line %d: unexpected token %q", lineNo, fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}
	if !havePLine {
		return nil, fmt.Errorf("graph: missing problem line")
	}

	g := &Graph{
		Nodes: make([]uint32, numNodes+1),
		Edges: make([]Edge, 0, numEdges),
	}
	for i, es := range buckets {
		g.Nodes[i+1] = g.Nodes[i] + uint32(len(es))
		g.Edges = append(g.Edges, es...)
	}
	return g, nil
}

// ReadSolution parses a solution file of whitespace-separated "<node>
// <distance>" pairs, one per line, returning the distances indexed by
// their order of appearance.
func ReadSolution(r io.Reader) ([]uint32, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<24)

	var solution []uint32
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("graph: solution line %d: expected \"<node> <distance>\"", lineNo)
		}
		dist, err := strconv.ParseUint(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("graph: solution line %d: %w", lineNo, err)
		}
		solution = append(solution, uint32(dist))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}
	return solution, nil
}
