package domain

// Gene is one class assignment: who teaches what, to which section, when and
// where. Chromosomes are bags of genes with no positional meaning.
type Gene struct {
	CourseCode       string      `json:"courseCode"`
	SectionName      string      `json:"sectionName"`
	SessionType      SessionType `json:"sessionType"`
	SessionIndex     int         `json:"sessionIndex"`
	TimeSlotID       string      `json:"timeSlotId"`
	FacultyID        string      `json:"facultyId"`
	RoomID           string      `json:"roomId"`
	DurationHours    int         `json:"durationHours"`
	ConsecutiveSlots int         `json:"consecutiveSlots"`
}

// GeneKey uniquely identifies the session requirement a gene fulfils,
// independent of its assignment — used for identity-keyed crossover
// so crossover can key on gene identity rather than slice position.
type GeneKey struct {
	CourseCode   string
	SectionName  string
	SessionType  SessionType
	SessionIndex int
}

// Key returns the gene's requirement identity.
func (g Gene) Key() GeneKey {
	return GeneKey{
		CourseCode:   g.CourseCode,
		SectionName:  g.SectionName,
		SessionType:  g.SessionType,
		SessionIndex: g.SessionIndex,
	}
}

// EvaluationResult is the cached scoring outcome of a Chromosome.
type EvaluationResult struct {
	Fitness         float64            `json:"fitness"`
	HardViolations  int                `json:"hardViolations"`
	SoftViolations  int                `json:"softViolations"`
	CategoryCounts  map[string]int     `json:"categoryCounts"`
	CategoryPenalty map[string]float64 `json:"categoryPenalty"`
}

// Chromosome is a bag of genes plus its cached evaluation.
type Chromosome struct {
	Genes []Gene `json:"genes"`
	Eval  EvaluationResult `json:"eval"`
}

// Clone deep-copies the chromosome so mutation/crossover never aliases a
// parent's gene slice; shared substructure is never mutated in place.
func (c Chromosome) Clone() Chromosome {
	genes := make([]Gene, len(c.Genes))
	copy(genes, c.Genes)
	counts := make(map[string]int, len(c.Eval.CategoryCounts))
	for k, v := range c.Eval.CategoryCounts {
		counts[k] = v
	}
	penalty := make(map[string]float64, len(c.Eval.CategoryPenalty))
	for k, v := range c.Eval.CategoryPenalty {
		penalty[k] = v
	}
	return Chromosome{
		Genes: genes,
		Eval: EvaluationResult{
			Fitness:         c.Eval.Fitness,
			HardViolations:  c.Eval.HardViolations,
			SoftViolations:  c.Eval.SoftViolations,
			CategoryCounts:  counts,
			CategoryPenalty: penalty,
		},
	}
}

// ByKey indexes a chromosome's genes by their requirement identity.
func (c Chromosome) ByKey() map[GeneKey]Gene {
	out := make(map[GeneKey]Gene, len(c.Genes))
	for _, g := range c.Genes {
		out[g.Key()] = g
	}
	return out
}
