package loader

// workflowJSONSchema is validated against the raw decoded document tree
// before any typed construction is attempted, using
// github.com/xeipuuv/gojsonschema — the same library
// yesoreyeram-thaiyyal's executor package uses to validate its own
// workflow graph documents (backend/pkg/executor/schema_validator.go).
// This is a coarse structural pre-check; the authoritative field-level
// rules live in the go-playground/validator struct tags on the raw*
// types, since gojsonschema alone cannot express "Type must resolve to
// an available registry symbol."
const workflowJSONSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["DAG"],
  "properties": {
    "DAG": {
      "type": "object",
      "properties": {
        "Title": {"type": "string"},
        "Configuration": {"type": "object"},
        "Vertices": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["Vertex"],
            "properties": {
              "Vertex": {
                "type": "object",
                "required": ["UUID"],
                "properties": {
                  "Name": {"type": "string"},
                  "UUID": {"type": "string"},
                  "Task": {
                    "type": "object",
                    "properties": {
                      "Name": {"type": "string"},
                      "InitialInputs": {"type": "object"},
                      "Configuration": {"type": "object"},
                      "Callback": {
                        "type": "object",
                        "required": ["LibraryName", "SymbolName", "Type"],
                        "properties": {
                          "LibraryName": {"type": "string"},
                          "SymbolName": {"type": "string"},
                          "Type": {"type": "string", "enum": ["Function", "Plugin", "function", "plugin"]}
                        }
                      },
                      "Stages": {
                        "type": "array",
                        "items": {
                          "type": "object",
                          "required": ["LibraryName", "SymbolName"],
                          "properties": {
                            "Name": {"type": "string"},
                            "LibraryName": {"type": "string"},
                            "SymbolName": {"type": "string"}
                          }
                        }
                      }
                    }
                  }
                }
              }
            }
          }
        },
        "Connections": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["Connection"],
            "properties": {
              "Connection": {
                "type": "object",
                "required": ["From", "To"],
                "properties": {
                  "From": {"type": "string"},
                  "To": {"type": "string"}
                }
              }
            }
          }
        }
      }
    }
  }
}`
