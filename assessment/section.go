package assessment

// Section identifies the staff section that owns a provider or a finding.
type Section string

const (
	SectionPersonnel    Section = "S-1"
	SectionIntelligence Section = "S-2"
	SectionOperations   Section = "S-3"
	SectionLogistics    Section = "S-4"
	SectionCommand      Section = "CMD"
)

func (s Section) String() string {
	return string(s)
}
