package ingest

import "github.com/santhosh-tekuri/jsonschema/v5"

// analysisSchema is the contract with the upstream PDF analyzer. It
// pins the fields the pipeline actually dereferences; anything else in
// the payload passes through untouched.
const analysisSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["pages"],
  "properties": {
    "source": {"type": "string"},
    "processNumber": {"type": "string"},
    "pages": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["pageNumber", "width", "height"],
        "properties": {
          "pageNumber": {"type": "integer", "minimum": 1},
          "width": {"type": "number", "exclusiveMinimum": 0},
          "height": {"type": "number", "exclusiveMinimum": 0},
          "text": {"type": "string"},
          "words": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["text", "bboxN"],
              "properties": {
                "text": {"type": "string"},
                "page1": {"type": "integer", "minimum": 1},
                "bboxN": {
                  "type": "object",
                  "required": ["x0", "y0", "x1", "y1"],
                  "properties": {
                    "x0": {"type": "number"},
                    "y0": {"type": "number"},
                    "x1": {"type": "number"},
                    "y1": {"type": "number"}
                  }
                }
              }
            }
          }
        }
      }
    },
    "bookmarks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title", "page1"],
        "properties": {
          "title": {"type": "string"},
          "level": {"type": "integer", "minimum": 0},
          "page1": {"type": "integer", "minimum": 1}
        }
      }
    }
  }
}`

var compiledSchema = jsonschema.MustCompileString("analysis.schema.json", analysisSchema)
