package graph

import (
	"fmt"

	"github.com/khabargraph/backend/pkg/common"
)

// Node roles in the export graph.
const (
	RoleActor  = "actor"
	RoleEvent  = "event"
	RoleSource = "source"
)

// Node is one vertex of the export graph. Key is the composite identity
// "{role}_{id}", which keeps actors, events, and sources from colliding even
// when their numeric ids overlap.
type Node struct {
	Key           string
	Label         string
	Role          string
	Details       string
	URL           string
	PublishedDate string
}

// Edge is a directed connection between two node keys. Edges are not
// deduplicated; the export format tolerates multiplicity.
type Edge struct {
	Source string
	Target string
}

// DirectedGraph is the in-memory reconstruction of the persisted
// actor-event-source relationships. It is derived, never persisted itself.
type DirectedGraph struct {
	nodes []Node
	byKey map[string]struct{}
	edges []Edge
}

// NewDirectedGraph returns an empty directed graph.
func NewDirectedGraph() *DirectedGraph {
	return &DirectedGraph{
		byKey: make(map[string]struct{}),
	}
}

// AddNode inserts a node once; repeated keys are ignored, so node creation
// is idempotent across join rows.
func (g *DirectedGraph) AddNode(node Node) {
	if _, ok := g.byKey[node.Key]; ok {
		return
	}
	g.byKey[node.Key] = struct{}{}
	g.nodes = append(g.nodes, node)
}

// AddEdge appends a directed edge between two node keys.
func (g *DirectedGraph) AddEdge(source, target string) {
	g.edges = append(g.edges, Edge{Source: source, Target: target})
}

// Nodes returns the nodes in insertion order.
func (g *DirectedGraph) Nodes() []Node {
	return g.nodes
}

// Edges returns the edges in insertion order.
func (g *DirectedGraph) Edges() []Edge {
	return g.edges
}

// NodeCount returns the number of distinct nodes.
func (g *DirectedGraph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges, duplicates included.
func (g *DirectedGraph) EdgeCount() int {
	return len(g.edges)
}

// BuildGraph reconstructs the directed graph from the persisted join rows.
// Each row contributes an actor->event edge and an event->source edge; nodes
// are created on first sight only.
func BuildGraph(rows []common.JoinedRow) *DirectedGraph {
	g := NewDirectedGraph()

	for _, row := range rows {
		actorKey := fmt.Sprintf("%s_%d", RoleActor, row.ActorID)
		eventKey := fmt.Sprintf("%s_%d", RoleEvent, row.EventID)
		sourceKey := fmt.Sprintf("%s_%d", RoleSource, row.SourceID)

		g.AddNode(Node{
			Key:   actorKey,
			Label: row.ActorLabel,
			Role:  RoleActor,
		})
		g.AddNode(Node{
			Key:     eventKey,
			Label:   row.EventLabel,
			Role:    RoleEvent,
			Details: row.EventDetails,
		})
		g.AddNode(Node{
			Key:           sourceKey,
			Label:         row.SourceTitle,
			Role:          RoleSource,
			URL:           row.SourceURL,
			PublishedDate: row.PublishedDate,
		})

		g.AddEdge(actorKey, eventKey)
		g.AddEdge(eventKey, sourceKey)
	}

	return g
}
