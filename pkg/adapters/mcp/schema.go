package mcp

import "encoding/json"

// nodeDef describes domain.NodeSpec. Children point back at the definition, so
// the schemas are written by hand: reflecting the recursive type inline never ends.
const nodeDef = `{
  "type": "object",
  "properties": {
    "id": {"type": "string", "description": "Node id, unique among its siblings"},
    "kind": {"type": "string", "description": "Node kind"},
    "tag": {"type": "string", "description": "Element tag"},
    "namespace": {"type": "string", "description": "Element namespace"},
    "classes": {"type": "array", "items": {"type": "string"}},
    "attributes": {"type": "object", "additionalProperties": {"type": "string"}},
    "children": {"type": "array", "items": {"$ref": "#/$defs/node"}}
  }
}`

var (
	nodeSchema = json.RawMessage(`{
  "type": "object",
  "$ref": "#/$defs/node",
  "$defs": {"node": ` + nodeDef + `}
}`)

	querySchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "matches": {
      "type": "array",
      "description": "Matches in document order",
      "items": {
        "type": "object",
        "properties": {
          "path": {"type": "array", "items": {"type": "string"}, "description": "Ids from the root down to the node"},
          "node": {"$ref": "#/$defs/node"}
        },
        "required": ["path", "node"]
      }
    }
  },
  "required": ["matches"],
  "$defs": {"node": ` + nodeDef + `}
}`)
)
