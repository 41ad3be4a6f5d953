// Package loader parses a workflow document (spec.md §6.1) into a
// runnable internal/dag.DAG: yaml.v3 decoding, gojsonschema structural
// validation, go-playground/validator struct-tag validation, then
// registry-backed resolution of every named library/symbol. Grounded
// on the teacher's internal/config parser+validator pair and
// original_source/lib/DagSerialization.cxx's sample-embedding error
// style.
package loader

// rawDocument is the top-level shape of a workflow document.
type rawDocument struct {
	DAG rawDAG `yaml:"DAG" validate:"required"`
}

type rawDAG struct {
	Title         string            `yaml:"Title,omitempty"`
	Configuration map[string]any    `yaml:"Configuration,omitempty"`
	Vertices      []rawVertexHolder `yaml:"Vertices,omitempty" validate:"omitempty,dive"`
	Connections   []rawConnHolder   `yaml:"Connections,omitempty" validate:"omitempty,dive"`
}

// rawVertexHolder matches the document's `- Vertex:` list-of-singleton-map
// shape (spec.md §6.1).
type rawVertexHolder struct {
	Vertex rawVertex `yaml:"Vertex" validate:"required"`
}

type rawVertex struct {
	Name string   `yaml:"Name,omitempty"`
	UUID string   `yaml:"UUID" validate:"required"`
	Task *rawTask `yaml:"Task,omitempty"`
}

type rawTask struct {
	Name          string         `yaml:"Name,omitempty"`
	InitialInputs map[string]any `yaml:"InitialInputs,omitempty"`
	Configuration map[string]any `yaml:"Configuration,omitempty"`
	Callback      *rawCallback   `yaml:"Callback,omitempty"`
	Stages        []rawStage     `yaml:"Stages,omitempty" validate:"omitempty,dive"`
}

type rawCallback struct {
	LibraryName string `yaml:"LibraryName" validate:"required"`
	SymbolName  string `yaml:"SymbolName" validate:"required"`
	Type        string `yaml:"Type" validate:"required,oneof=Function Plugin function plugin"`
}

type rawStage struct {
	Name        string `yaml:"Name,omitempty"`
	LibraryName string `yaml:"LibraryName" validate:"required"`
	SymbolName  string `yaml:"SymbolName" validate:"required"`
}

// rawConnHolder matches the document's `- Connection:` shape.
type rawConnHolder struct {
	Connection rawConnection `yaml:"Connection" validate:"required"`
}

type rawConnection struct {
	From string `yaml:"From" validate:"required"`
	To   string `yaml:"To" validate:"required"`
}
