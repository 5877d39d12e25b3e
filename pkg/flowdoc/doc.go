// Package flowdoc reads and writes flow documents.
//
// # Overview
//
// A flow document is the serialized form of an editor session: the placed
// blocks with their positions and data, and the connections between them.
// It is the format handed to the flow executor, written by "export" and
// read back by "import". The format must round-trip exactly: exporting,
// importing and exporting again yields the same document.
//
// # JSON Format
//
//	{
//	  "blocks": [
//	    {"id": "b1", "type": "calculator", "position": {"x": 100, "y": 100}, "data": {}},
//	    {"id": "b2", "type": "chat-output", "position": {"x": 300, "y": 100}, "data": {}}
//	  ],
//	  "connections": [
//	    {"from": {"blockId": "b1", "port": "out"}, "to": {"blockId": "b2", "port": "in"}}
//	  ]
//	}
//
// Block fields:
//   - id: unique, non-empty string
//   - type: block type key; selects the template and data adapter
//   - position: top-left corner in surface-local units
//   - data: type-specific object, never interpreted here
//
// Connection endpoints name a block and a port ("out" or "in"). A
// connection may reference a block that is not in the document; such
// references are reported by [Document.Dangling] and skipped on import,
// they are not a parse error.
//
// # Reading and Writing
//
// Use [ReadFile] / [WriteFile] for files, [Read] / [Write] for streams and
// [Unmarshal] / [Marshal] for byte slices. Read functions validate the
// document with [Document.Validate]; every failure carries the
// IMPORT_PARSE_FAILED error code.
//
// Output is indented with two spaces. Object keys inside data are sorted,
// so writing the same document twice produces identical bytes.
package flowdoc
