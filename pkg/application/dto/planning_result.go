package dto

import (
	"time"

	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

// PlanningResult contains the complete output of a planning run
type PlanningResult struct {
	RunID        string                                            `json:"run_id"`
	GeneratedAt  time.Time                                         `json:"generated_at"`
	Today        time.Time                                         `json:"today"`
	Demand       []entities.DemandLine                             `json:"demand"`
	Requirements map[entities.ItemCode][]entities.RequirementEntry `json:"requirements"`
	Plan         []entities.PlanLine                               `json:"exploded_requirements"`
	BOMMap       entities.BOMMap                                   `json:"bom_map"`
	DilutionMap  entities.DilutionMap                              `json:"dilution_map"`
}

// UrgentLines returns the plan lines whose suggested order date has arrived
func (r *PlanningResult) UrgentLines() []entities.PlanLine {
	var urgent []entities.PlanLine
	for _, line := range r.Plan {
		if line.Urgent {
			urgent = append(urgent, line)
		}
	}
	return urgent
}

// ShortageLines returns the plan lines with a positive net requirement
func (r *PlanningResult) ShortageLines() []entities.PlanLine {
	var short []entities.PlanLine
	for _, line := range r.Plan {
		if line.Net.IsPositive() {
			short = append(short, line)
		}
	}
	return short
}
