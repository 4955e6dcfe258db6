package report

import "encoding/json"

type jsonRenderer struct{}

func (jsonRenderer) Format() Format      { return FormatJSON }
func (jsonRenderer) ContentType() string { return "application/json" }

func (jsonRenderer) Render(doc Document) ([]byte, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// Decode parses a JSON document written by the JSON renderer.
func Decode(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, err
	}
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}
