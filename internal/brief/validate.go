package brief

import (
	"encoding/json"
	"fmt"
)

// SchemaViolation is returned when a candidate structured object does not
// conform to the brief schema. Field names the offending field.
type SchemaViolation struct {
	Field  string
	Reason string
}

func (e *SchemaViolation) Error() string {
	return fmt.Sprintf("schema violation at %s: %s", e.Field, e.Reason)
}

func violation(field, format string, args ...any) *SchemaViolation {
	return &SchemaViolation{Field: field, Reason: fmt.Sprintf(format, args...)}
}

var sectionKinds = map[string]bool{
	KindWhyItMatters:     true,
	KindWhatItIs:         true,
	KindKeyPoints:        true,
	KindWhatsNew:         true,
	KindNumbers:          true,
	KindProsCons:         true,
	KindRisksMitigations: true,
	KindRecommendations:  true,
	KindFAQ:              true,
	KindCustom:           true,
}

var blockTypes = map[string]bool{
	BlockHeading:        true,
	BlockParagraph:      true,
	BlockBullets:        true,
	BlockTable:          true,
	BlockCallout:        true,
	BlockDefinitionList: true,
	BlockQAList:         true,
	BlockDivider:        true,
}

var calloutKinds = map[string]bool{
	CalloutInfo:    true,
	CalloutWarning: true,
	CalloutRisk:    true,
	CalloutTip:     true,
	CalloutNote:    true,
}

// Decode parses raw JSON into a Brief and validates it. All LLM-call sites
// must route structured output through here before it is persisted or served.
func Decode(data []byte) (*Brief, error) {
	var b Brief
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, violation("$", "invalid JSON: %v", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate checks the brief against the schema. The first violation found is
// returned with the offending field named.
func (b *Brief) Validate() error {
	if b.SchemaVersion == "" {
		return violation("schema_version", "must not be empty")
	}
	if b.Title == "" {
		return violation("title", "must not be empty")
	}
	if len(b.TLDR) > MaxTLDR {
		return violation("tldr", "at most %d entries allowed, got %d", MaxTLDR, len(b.TLDR))
	}
	for i, s := range b.Sections {
		field := fmt.Sprintf("sections[%d]", i)
		if s.ID == "" {
			return violation(field+".id", "must not be empty")
		}
		if !sectionKinds[s.Kind] {
			return violation(field+".kind", "unknown kind %q", s.Kind)
		}
		for j, blk := range s.Blocks {
			if err := validateBlock(blk, fmt.Sprintf("%s.blocks[%d]", field, j)); err != nil {
				return err
			}
		}
	}
	seen := make(map[string]bool, len(b.Sources))
	for i, src := range b.Sources {
		field := fmt.Sprintf("sources[%d]", i)
		if src.ID == "" {
			return violation(field+".id", "must not be empty")
		}
		if seen[src.ID] {
			return violation(field+".id", "duplicate source id %q", src.ID)
		}
		seen[src.ID] = true
		if src.URL == "" {
			return violation(field+".url", "must not be empty")
		}
	}
	return nil
}

func validateBlock(blk Block, field string) error {
	if !blockTypes[blk.Type] {
		return violation(field+".type", "unknown block type %q", blk.Type)
	}
	switch blk.Type {
	case BlockCallout:
		if blk.CalloutKind == nil || !calloutKinds[*blk.CalloutKind] {
			kind := "<nil>"
			if blk.CalloutKind != nil {
				kind = *blk.CalloutKind
			}
			return violation(field+".callout_kind", "unknown callout kind %q", kind)
		}
	case BlockQAList:
		for i, qa := range blk.Questions {
			if qa.Answer == "" {
				return violation(fmt.Sprintf("%s.questions[%d].a", field, i), "answer must not be empty")
			}
		}
	case BlockTable:
		if blk.Table == nil {
			return violation(field+".table", "table block requires a table payload")
		}
		for r, row := range blk.Table.Rows {
			for c, cell := range row {
				if err := validateCell(cell, fmt.Sprintf("%s.table.rows[%d][%d]", field, r, c)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func validateCell(cell TableCell, field string) error {
	switch cell.Value.(type) {
	case nil, string, bool, float64, int, int64:
		return nil
	case json.Number:
		return nil
	default:
		return violation(field+".value", "cell must be string, number, boolean or null, got %T", cell.Value)
	}
}

// SourceIDs returns the set of source ids declared by the brief.
func (b *Brief) SourceIDs() map[string]bool {
	ids := make(map[string]bool, len(b.Sources))
	for _, s := range b.Sources {
		ids[s.ID] = true
	}
	return ids
}

// DropUnresolvedCitations removes every citation whose source_id does not
// resolve to an entry in the brief's source list. Rendering treats such
// citations as absent, so they are never served.
func (b *Brief) DropUnresolvedCitations() {
	ids := b.SourceIDs()
	filter := func(cs []Citation) []Citation {
		if len(cs) == 0 {
			return cs
		}
		kept := cs[:0]
		for _, c := range cs {
			if ids[c.SourceID] {
				kept = append(kept, c)
			}
		}
		if len(kept) == 0 {
			return nil
		}
		return kept
	}

	for si := range b.Sections {
		for bi := range b.Sections[si].Blocks {
			blk := &b.Sections[si].Blocks[bi]
			blk.Citations = filter(blk.Citations)
			for i := range blk.Items {
				blk.Items[i].Citations = filter(blk.Items[i].Citations)
			}
			for i := range blk.Definitions {
				blk.Definitions[i].Citations = filter(blk.Definitions[i].Citations)
			}
			for i := range blk.Questions {
				blk.Questions[i].Citations = filter(blk.Questions[i].Citations)
			}
			if blk.Table != nil {
				for r := range blk.Table.Rows {
					for c := range blk.Table.Rows[r] {
						blk.Table.Rows[r][c].Citations = filter(blk.Table.Rows[r][c].Citations)
					}
				}
			}
		}
	}
}
