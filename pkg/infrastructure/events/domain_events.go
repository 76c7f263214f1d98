package events

import (
	"time"

	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

const (
	PlanningCompletedEvent   = "planning.completed"
	ItemReplacedEvent        = "item.replaced"
	ReplacementUndoneEvent   = "replacement.undone"
	BulkReplaceFinishedEvent = "replacement.bulk.finished"
)

// Stream identifiers
const (
	PlanningStream     = "planning"
	SubstitutionStream = "substitution"
)

type PlanningCompleted struct {
	RunID         string        `json:"run_id"`
	DemandLines   int           `json:"demand_lines"`
	PlanLines     int           `json:"plan_lines"`
	UrgentLines   int           `json:"urgent_lines"`
	ShortageLines int           `json:"shortage_lines"`
	Duration      time.Duration `json:"duration"`
}

type ItemReplaced struct {
	HistoryID  int64             `json:"history_id"`
	OldCode    entities.ItemCode `json:"old_code"`
	NewCode    entities.ItemCode `json:"new_code"`
	CreatedNew bool              `json:"created_new"`
	Rows       int64             `json:"rows"`
}

type ReplacementUndone struct {
	HistoryID     int64             `json:"history_id"`
	OldCode       entities.ItemCode `json:"old_code"`
	RecreatedItem bool              `json:"recreated_item"`
	Rows          int               `json:"rows"`
}

type BulkReplaceFinished struct {
	OldPattern string `json:"old_pattern"`
	NewPattern string `json:"new_pattern"`
	Matched    int    `json:"matched"`
	Failed     int    `json:"failed"`
}
