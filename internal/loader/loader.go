package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/dagscheduler/dagscheduler/internal/dag"
	"github.com/dagscheduler/dagscheduler/internal/document"
	"github.com/dagscheduler/dagscheduler/internal/identifier"
	"github.com/dagscheduler/dagscheduler/internal/registry"
	"github.com/dagscheduler/dagscheduler/internal/stage"
	"github.com/dagscheduler/dagscheduler/internal/task"
	schedulererrors "github.com/dagscheduler/dagscheduler/pkg/errors"
)

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
	yamlLineRegex = regexp.MustCompile(`line (\d+)`)
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInst = validator.New()
	})
	return validatorInst
}

// Loader resolves libraries and symbols through a registry to
// materialize a dag.DAG from a workflow document (spec.md §4.11,
// §6.1). Grounded on the teacher's ParseConfig+ValidateConfig pair
// (internal/config/parser.go, internal/config/validator.go).
type Loader struct {
	registry *registry.Registry
}

// New constructs a Loader backed by the given registry. A nil registry
// uses the process-wide default.
func New(reg *registry.Registry) *Loader {
	if reg == nil {
		reg = registry.Default()
	}
	return &Loader{registry: reg}
}

// LoadFile reads path, decodes it as YAML, and constructs a DAG.
func (l *Loader) LoadFile(path string) (*dag.DAG, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, schedulererrors.NewParseError(path, 0, err)
	}
	return l.Load(path, data)
}

// Load decodes data as a workflow document and constructs a DAG.
// sourceName is used only for error messages (typically a file path).
func (l *Loader) Load(sourceName string, data []byte) (*dag.DAG, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, schedulererrors.NewSchemaError(sourceName, "workflow document is empty", Sample(LevelEmpty))
	}

	var tree any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, schedulererrors.NewParseError(sourceName, extractLine(err), err)
	}

	if err := validateAgainstSchema(tree); err != nil {
		return nil, schedulererrors.NewSchemaError(sourceName, err.Error(), Sample(LevelDAG))
	}

	var raw rawDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, schedulererrors.NewParseError(sourceName, extractLine(err), err)
	}

	if err := validatorInstance().Struct(&raw); err != nil {
		return nil, schedulererrors.NewSchemaError(sourceName, err.Error(), Sample(LevelDAG))
	}

	return l.buildDAG(&raw)
}

func validateAgainstSchema(tree any) error {
	normalized := normalizeForJSON(tree)
	docBytes, err := json.Marshal(normalized)
	if err != nil {
		return fmt.Errorf("workflow document is not JSON-representable: %w", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(workflowJSONSchema)
	docLoader := gojsonschema.NewBytesLoader(docBytes)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("workflow document failed schema validation: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// normalizeForJSON converts yaml.v3's map[string]interface{}-keyed
// decode tree (which may contain map[interface{}]interface{} on older
// decode paths) into a plain JSON-marshalable tree.
func normalizeForJSON(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeForJSON(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprintf("%v", k)] = normalizeForJSON(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeForJSON(val)
		}
		return out
	default:
		return v
	}
}

func (l *Loader) buildDAG(raw *rawDocument) (*dag.DAG, error) {
	config := document.FromValue(raw.DAG.Configuration)
	d := dag.NewWithTitle(raw.DAG.Title, config)

	for _, holder := range raw.DAG.Vertices {
		v, err := l.buildVertex(&holder.Vertex)
		if err != nil {
			return nil, err
		}
		if !d.AddVertex(v) {
			return nil, schedulererrors.NewSchemaError("Vertices", fmt.Sprintf("duplicate vertex UUID %s", v.ID()), Sample(LevelVertices))
		}
	}

	// Connections are processed last, per spec.md §4.11 step 8.
	for _, holder := range raw.DAG.Connections {
		conn := holder.Connection
		fromID, err := identifier.Parse(conn.From)
		if err != nil {
			return nil, schedulererrors.NewSchemaError("Connections.From", err.Error(), Sample(LevelConnections))
		}
		toID, err := identifier.Parse(conn.To)
		if err != nil {
			return nil, schedulererrors.NewSchemaError("Connections.To", err.Error(), Sample(LevelConnections))
		}
		if _, err := d.ConnectByID(fromID, toID); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func (l *Loader) buildVertex(rv *rawVertex) (*dag.Vertex, error) {
	id, err := identifier.Parse(rv.UUID)
	if err != nil {
		return nil, schedulererrors.NewSchemaError("Vertex.UUID", err.Error(), Sample(LevelVertex))
	}

	var t *task.Task
	if rv.Task != nil {
		t, err = l.buildTask(rv.Task)
		if err != nil {
			return nil, err
		}
	}

	return dag.NewVertexWithID(id, rv.Name, t), nil
}

func (l *Loader) buildTask(rt *rawTask) (*task.Task, error) {
	stages, err := l.buildStages(rt.Stages)
	if err != nil {
		return nil, err
	}

	opts := []task.Option{
		task.WithConfig(document.FromValue(rt.Configuration)),
		task.WithInitialInputs(document.FromValue(rt.InitialInputs)),
	}
	if rt.Name != "" {
		opts = append(opts, task.WithLabel(rt.Name))
	}

	if rt.Callback != nil {
		callbackOpt, err := l.buildCallback(rt.Callback)
		if err != nil {
			return nil, err
		}
		opts = append(opts, callbackOpt)
	}

	return task.New(stages, opts...), nil
}

func (l *Loader) buildStages(raw []rawStage) ([]stage.Stage, error) {
	stages := make([]stage.Stage, 0, len(raw))
	for _, rs := range raw {
		h, err := l.registry.Register(rs.LibraryName)
		if err != nil {
			return nil, err
		}
		if !l.registry.Resolve(h, registry.SectionStages, rs.SymbolName) {
			return nil, schedulererrors.NewSchemaError("Stage.SymbolName",
				fmt.Sprintf("symbol %q not found in stages section of library %q", rs.SymbolName, rs.LibraryName),
				Sample(LevelStage))
		}
		factory, err := l.registry.ImportStageFactory(h, rs.SymbolName)
		if err != nil {
			return nil, err
		}
		stages = append(stages, factory(rs.Name))
	}
	return stages, nil
}

func (l *Loader) buildCallback(rc *rawCallback) (task.Option, error) {
	h, err := l.registry.Register(rc.LibraryName)
	if err != nil {
		return nil, err
	}
	if !l.registry.Resolve(h, registry.SectionTaskCallback, rc.SymbolName) {
		return nil, schedulererrors.NewSchemaError("Callback.SymbolName",
			fmt.Sprintf("symbol %q not found in task-callback section of library %q", rc.SymbolName, rc.LibraryName),
			Sample(LevelTask))
	}

	switch strings.ToLower(rc.Type) {
	case "function":
		fn, err := l.registry.ImportCallbackFunc(h, rc.SymbolName)
		if err != nil {
			return nil, err
		}
		return task.WithCallbackFunc(fn), nil
	case "plugin":
		plugin, err := l.registry.ImportCallbackPlugin(h, rc.SymbolName)
		if err != nil {
			return nil, err
		}
		return task.WithCallbackPlugin(plugin), nil
	default:
		return nil, schedulererrors.NewSchemaError("Callback.Type",
			fmt.Sprintf("unsupported callback type %q: must be Function or Plugin", rc.Type),
			Sample(LevelTask))
	}
}

func extractLine(err error) int {
	if err == nil {
		return 0
	}
	matches := yamlLineRegex.FindStringSubmatch(err.Error())
	if len(matches) != 2 {
		return 0
	}
	var line int
	if _, scanErr := fmt.Sscanf(matches[1], "%d", &line); scanErr != nil {
		return 0
	}
	return line
}
