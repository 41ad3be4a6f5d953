package loader

// Level names every parsing error's sample is scoped to, per spec.md
// §6.1: "the error message embeds the portion of the schema at which
// parsing failed." Ported from original_source/lib/DagSerialization.cxx's
// sample_dag_output/*_str helpers.
type Level string

const (
	LevelEmpty       Level = "EMPTY"
	LevelDAG         Level = "DAG"
	LevelVertices    Level = "VERTICES"
	LevelVertex      Level = "VERTEX"
	LevelTask        Level = "TASK"
	LevelStages      Level = "STAGES"
	LevelStage       Level = "STAGE"
	LevelConnections Level = "CONNECTIONS"
)

var samples = map[Level]string{
	LevelEmpty: `DAG:
  Title: <optional string>
  Configuration: <optional nested document>
  Vertices: []
  Connections: []`,

	LevelDAG: `DAG:
  Title: <optional string>
  Configuration: <optional nested document>
  Vertices:
    - Vertex: { ... }
  Connections:
    - Connection: { ... }`,

	LevelVertices: `Vertices:
  - Vertex:
      Name: <optional string>
      UUID: <required canonical identifier string>
      Task: { ... }`,

	LevelVertex: `Vertex:
  Name: <optional string>
  UUID: <required canonical identifier string>
  Task:
    Name: <optional string>
    InitialInputs: <optional nested document>
    Configuration: <optional nested document>
    Callback: { ... }
    Stages: [ ... ]`,

	LevelTask: `Task:
  Name: <optional string>
  InitialInputs: <optional nested document>
  Configuration: <optional nested document>
  Callback:
    LibraryName: <required string>
    SymbolName: <required string>
    Type: <Function | Plugin>
  Stages:
    - Name: <optional string>
      LibraryName: <required string>
      SymbolName: <required string>`,

	LevelStages: `Stages:
  - Name: <optional string>
    LibraryName: <required string>
    SymbolName: <required string>`,

	LevelStage: `Stage:
  Name: <optional string>
  LibraryName: <required string>
  SymbolName: <required string>`,

	LevelConnections: `Connections:
  - Connection:
      From: <identifier string of an existing vertex>
      To:   <identifier string of an existing vertex>`,
}

// Sample returns the expected-schema sample text for level.
func Sample(level Level) string {
	return samples[level]
}
