package models

// UsefulInformation is the structured data pulled out of a contract by the
// information-extraction stage. It is consumed immediately by the pipeline
// and never persisted on its own.
type UsefulInformation struct {
	// PartiesInvolved lists only the names of the contract parties.
	PartiesInvolved []string `json:"parties_involved"`

	// EffectiveDates lists the effective start and end dates.
	EffectiveDates []string `json:"effective_dates"`

	// RenewalTerms lists all renewal terms mentioned in the contract.
	RenewalTerms []string `json:"renewal_terms"`

	// ComplianceRequirements lists all compliance requirements mentioned.
	ComplianceRequirements []string `json:"compliance_requirements"`
}

// EmptyUsefulInformation returns the degraded value substituted when
// extraction fails, with all four lists present but empty.
func EmptyUsefulInformation() UsefulInformation {
	return UsefulInformation{
		PartiesInvolved:        []string{},
		EffectiveDates:         []string{},
		RenewalTerms:           []string{},
		ComplianceRequirements: []string{},
	}
}
