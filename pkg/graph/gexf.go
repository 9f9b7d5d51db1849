package graph

import (
	"encoding/xml"
	"fmt"
	"io"
)

// GEXF 1.2draft document layout. Node attributes carry the role and the
// role-specific fields: details for events, url and published date for
// sources.

type gexfDoc struct {
	XMLName xml.Name  `xml:"gexf"`
	XMLNS   string    `xml:"xmlns,attr"`
	Version string    `xml:"version,attr"`
	Graph   gexfGraph `xml:"graph"`
}

type gexfGraph struct {
	DefaultEdgeType string         `xml:"defaultedgetype,attr"`
	Attributes      gexfAttributes `xml:"attributes"`
	Nodes           gexfNodes      `xml:"nodes"`
	Edges           gexfEdges      `xml:"edges"`
}

type gexfAttributes struct {
	Class      string          `xml:"class,attr"`
	Attributes []gexfAttribute `xml:"attribute"`
}

type gexfAttribute struct {
	ID    string `xml:"id,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

type gexfNodes struct {
	Nodes []gexfNode `xml:"node"`
}

type gexfNode struct {
	ID        string          `xml:"id,attr"`
	Label     string          `xml:"label,attr"`
	AttValues []gexfAttValue  `xml:"attvalues>attvalue"`
}

type gexfAttValue struct {
	For   string `xml:"for,attr"`
	Value string `xml:"value,attr"`
}

type gexfEdges struct {
	Edges []gexfEdge `xml:"edge"`
}

type gexfEdge struct {
	ID     string `xml:"id,attr"`
	Source string `xml:"source,attr"`
	Target string `xml:"target,attr"`
}

const (
	attrRole          = "0"
	attrDetails       = "1"
	attrURL           = "2"
	attrPublishedDate = "3"
)

// ExportGraph serializes the directed graph as GEXF, preserving every node's
// label, role, and role-specific attributes.
func ExportGraph(g *DirectedGraph, w io.Writer) error {
	doc := gexfDoc{
		XMLNS:   "http://www.gexf.net/1.2draft",
		Version: "1.2",
		Graph: gexfGraph{
			DefaultEdgeType: "directed",
			Attributes: gexfAttributes{
				Class: "node",
				Attributes: []gexfAttribute{
					{ID: attrRole, Title: "role", Type: "string"},
					{ID: attrDetails, Title: "details", Type: "string"},
					{ID: attrURL, Title: "url", Type: "string"},
					{ID: attrPublishedDate, Title: "published_date", Type: "string"},
				},
			},
		},
	}

	for _, node := range g.Nodes() {
		values := []gexfAttValue{
			{For: attrRole, Value: node.Role},
		}
		if node.Details != "" {
			values = append(values, gexfAttValue{For: attrDetails, Value: node.Details})
		}
		if node.URL != "" {
			values = append(values, gexfAttValue{For: attrURL, Value: node.URL})
		}
		if node.PublishedDate != "" {
			values = append(values, gexfAttValue{For: attrPublishedDate, Value: node.PublishedDate})
		}
		doc.Graph.Nodes.Nodes = append(doc.Graph.Nodes.Nodes, gexfNode{
			ID:        node.Key,
			Label:     node.Label,
			AttValues: values,
		})
	}

	for i, edge := range g.Edges() {
		doc.Graph.Edges.Edges = append(doc.Graph.Edges.Edges, gexfEdge{
			ID:     fmt.Sprintf("%d", i),
			Source: edge.Source,
			Target: edge.Target,
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode gexf: %w", err)
	}
	return encoder.Close()
}
