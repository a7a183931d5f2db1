package entities

// SpanView is the wire form of an emphasis span.
type SpanView struct {
	Kind string `json:"kind" yaml:"kind"`
	Text string `json:"text" yaml:"text"`
}

// BlockView is the wire form of a display block. Only the fields relevant
// to Type are populated.
type BlockView struct {
	Type   string     `json:"type" yaml:"type"`
	Text   string     `json:"text,omitempty" yaml:"text,omitempty"`
	Chunks []string   `json:"chunks,omitempty" yaml:"chunks,omitempty"`
	Spans  []SpanView `json:"spans,omitempty" yaml:"spans,omitempty"`
}

// FormattedDocument is a fully formatted backend result as served to clients.
type FormattedDocument struct {
	DrugName string      `json:"drug_name" yaml:"drug_name"`
	Title    string      `json:"title" yaml:"title"`
	Blocks   []BlockView `json:"blocks" yaml:"blocks"`
	Cached   bool        `json:"cached" yaml:"cached"`
}
