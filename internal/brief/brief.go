// Package brief defines the structured research brief: the schema all
// formatting-stage LLM output must conform to, validation, source extraction
// and the standard failure brief.
package brief

// SchemaVersion is stamped on every brief this package produces.
const SchemaVersion = "1.0.0"

// Section kinds. ErrorSectionID is reserved for the genuine zero-content case.
const (
	KindWhyItMatters     = "why_it_matters"
	KindWhatItIs         = "what_it_is"
	KindKeyPoints        = "key_points"
	KindWhatsNew         = "whats_new"
	KindNumbers          = "numbers"
	KindProsCons         = "pros_cons"
	KindRisksMitigations = "risks_mitigations"
	KindRecommendations  = "recommendations"
	KindFAQ              = "faq"
	KindCustom           = "custom"

	ErrorSectionID = "error"
)

// Block types.
const (
	BlockHeading        = "heading"
	BlockParagraph      = "paragraph"
	BlockBullets        = "bullets"
	BlockTable          = "table"
	BlockCallout        = "callout"
	BlockDefinitionList = "definition_list"
	BlockQAList         = "qa_list"
	BlockDivider        = "divider"
)

// Callout kinds.
const (
	CalloutInfo    = "info"
	CalloutWarning = "warning"
	CalloutRisk    = "risk"
	CalloutTip     = "tip"
	CalloutNote    = "note"
)

// MaxTLDR is the maximum number of tldr entries.
const MaxTLDR = 5

// Citation references an entry in the brief's source list by id.
type Citation struct {
	SourceID string  `json:"source_id"`
	Note     *string `json:"note,omitempty"`
}

// Source is one entry in the brief's source list.
type Source struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Publisher     *string `json:"publisher,omitempty"`
	PublishedDate *string `json:"published_date,omitempty"`
	AccessedDate  *string `json:"accessed_date,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// BulletItem is one bullet in a bullets block.
type BulletItem struct {
	Text      string     `json:"text"`
	Citations []Citation `json:"citations,omitempty"`
}

// DefinitionItem is one term/definition pair in a definition_list block.
type DefinitionItem struct {
	Term       string     `json:"term"`
	Definition string     `json:"definition"`
	Citations  []Citation `json:"citations,omitempty"`
}

// QAItem is one question/answer pair in a qa_list block.
type QAItem struct {
	Question  string     `json:"q"`
	Answer    string     `json:"a"`
	Citations []Citation `json:"citations,omitempty"`
}

// TableColumn describes one table column.
type TableColumn struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// TableCell holds a scalar value: string, number, bool or null.
type TableCell struct {
	Value     any        `json:"value"`
	Citations []Citation `json:"citations,omitempty"`
}

// Table is the payload of a table block.
type Table struct {
	Caption *string       `json:"caption,omitempty"`
	Columns []TableColumn `json:"columns"`
	Rows    [][]TableCell `json:"rows"`
}

// Block is one typed content unit inside a section. Type selects which of the
// optional payload fields is meaningful.
type Block struct {
	Type        string           `json:"type"`
	Text        *string          `json:"text,omitempty"`
	Level       *int             `json:"level,omitempty"`
	Items       []BulletItem     `json:"items,omitempty"`
	Definitions []DefinitionItem `json:"definitions,omitempty"`
	Questions   []QAItem         `json:"questions,omitempty"`
	Table       *Table           `json:"table,omitempty"`
	CalloutKind *string          `json:"callout_kind,omitempty"`
	Citations   []Citation       `json:"citations,omitempty"`
}

// Section is an ordered group of blocks with a kind tag.
type Section struct {
	ID      string  `json:"id"`
	Kind    string  `json:"kind"`
	Title   string  `json:"title"`
	Summary *string `json:"summary,omitempty"`
	Blocks  []Block `json:"blocks"`
}

// Brief is the structured, citation-bearing research output for one topic.
type Brief struct {
	SchemaVersion string    `json:"schema_version"`
	Title         string    `json:"title"`
	Subtitle      *string   `json:"subtitle,omitempty"`
	Topic         *string   `json:"topic,omitempty"`
	Audience      *string   `json:"audience,omitempty"`
	Tone          *string   `json:"tone,omitempty"`
	TLDR          []string  `json:"tldr"`
	Sections      []Section `json:"sections"`
	Sources       []Source  `json:"sources"`
}

func strptr(s string) *string { return &s }
