package flowdoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Write encodes doc as indented JSON and writes it to w.
// The output can be read back with [Read].
func Write(doc Document, w io.Writer) error {
	doc.Blocks = append([]Block(nil), doc.Blocks...)
	doc.normalize()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Marshal returns the encoding written by [Write].
func Marshal(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(doc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes doc to a JSON file at path.
func WriteFile(doc Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(doc, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
