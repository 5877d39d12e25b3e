package flowdoc

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/anchit2000/flowcanvas/pkg/errors"
)

// Read decodes a flow document from r and validates it.
//
// Read returns an IMPORT_PARSE_FAILED error if the JSON is malformed, if
// either top-level array is missing its expected shape, or if
// [Document.Validate] fails. Unknown fields are ignored. Read does not
// close r.
func Read(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeImportParse, err, "decode flow document")
	}
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	doc.normalize()
	return doc, nil
}

// Unmarshal is [Read] over a byte slice.
func Unmarshal(data []byte) (Document, error) {
	return Read(bytes.NewReader(data))
}

// ReadFile reads the flow document at path.
func ReadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeImportParse, err, "open %s", path)
	}
	defer f.Close()
	return Read(f)
}
