package graph

import (
	"encoding/xml"
	"strings"
	"testing"
)

func TestExportGraph(t *testing.T) {
	g := BuildGraph(joinedRowsFixture())

	var buf strings.Builder
	if err := ExportGraph(g, &buf); err != nil {
		t.Fatalf("ExportGraph: %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, xml.Header) {
		t.Error("output missing xml header")
	}

	var doc gexfDoc
	if err := xml.Unmarshal([]byte(strings.TrimPrefix(out, xml.Header)), &doc); err != nil {
		t.Fatalf("output is not well-formed xml: %v", err)
	}

	if doc.Graph.DefaultEdgeType != "directed" {
		t.Errorf("defaultedgetype = %q, want directed", doc.Graph.DefaultEdgeType)
	}
	if len(doc.Graph.Nodes.Nodes) != g.NodeCount() {
		t.Errorf("exported %d nodes, want %d", len(doc.Graph.Nodes.Nodes), g.NodeCount())
	}
	if len(doc.Graph.Edges.Edges) != g.EdgeCount() {
		t.Errorf("exported %d edges, want %d", len(doc.Graph.Edges.Edges), g.EdgeCount())
	}
}

func TestExportGraphNodeAttributes(t *testing.T) {
	g := BuildGraph(joinedRowsFixture())

	var buf strings.Builder
	if err := ExportGraph(g, &buf); err != nil {
		t.Fatalf("ExportGraph: %v", err)
	}

	var doc gexfDoc
	if err := xml.Unmarshal([]byte(strings.TrimPrefix(buf.String(), xml.Header)), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	attvalues := func(id string) map[string]string {
		for _, node := range doc.Graph.Nodes.Nodes {
			if node.ID != id {
				continue
			}
			values := make(map[string]string, len(node.AttValues))
			for _, v := range node.AttValues {
				values[v.For] = v.Value
			}
			return values
		}
		t.Fatalf("node %s not exported", id)
		return nil
	}

	actor := attvalues("actor_1")
	if actor[attrRole] != RoleActor {
		t.Errorf("actor role attvalue = %q", actor[attrRole])
	}

	event := attvalues("event_10")
	if event[attrRole] != RoleEvent || event[attrDetails] != "D1" {
		t.Errorf("event attvalues = %v, want role and details", event)
	}

	source := attvalues("source_100")
	if source[attrURL] != "http://x" || source[attrPublishedDate] != "2025-01-02" {
		t.Errorf("source attvalues = %v, want url and published_date", source)
	}
}
