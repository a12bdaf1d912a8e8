// Package zbkg turns zbMATH bibliographic records into an RDF knowledge graph.
package zbkg

const (
	Version = "0.1.3"
	AppName = "zbkg"
)
