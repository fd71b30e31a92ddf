package brief

// Failure builds the standard failure brief returned when the research
// workflow could not produce a real result: a single custom section with a
// risk callout, empty sources and one explanatory tldr line. It is always
// schema-valid, so callers can persist it without a separate error branch.
func Failure(topic, reason string) *Brief {
	if reason == "" {
		reason = "An error occurred while running the research workflow. Please try again later."
	}
	title := "Research: " + topic
	if topic == "" {
		title = "Research"
	}
	b := &Brief{
		SchemaVersion: SchemaVersion,
		Title:         title,
		Topic:         strptr(topic),
		TLDR:          []string{"Research could not be completed at this time due to an error."},
		Sections: []Section{
			{
				ID:    ErrorSectionID,
				Kind:  KindCustom,
				Title: "Status",
				Blocks: []Block{
					{
						Type:        BlockCallout,
						CalloutKind: strptr(CalloutRisk),
						Text:        strptr(reason),
					},
				},
			},
		},
		Sources: []Source{},
	}
	return b
}

// IsFailure reports whether the brief is (or looks like) the standard failure
// brief. Failure and degraded success share one representation, so this is a
// heuristic: the reserved error section id marks the genuine failure case.
func (b *Brief) IsFailure() bool {
	for _, s := range b.Sections {
		if s.ID == ErrorSectionID {
			return true
		}
	}
	return false
}
