package domain

import "time"

// Pipeline stages, in funnel order.
const (
	StageLead          = "lead"
	StageContactMade   = "contact_made"
	StageNeedsAnalysis = "needs_analysis"
	StageProposal      = "proposal"
	StageNegotiation   = "negotiation"
	StageClosedWon     = "closed_won"
	StageClosedLost    = "closed_lost"
)

// PipelineStages lists the stages in display order.
var PipelineStages = []string{
	StageLead,
	StageContactMade,
	StageNeedsAnalysis,
	StageProposal,
	StageNegotiation,
	StageClosedWon,
	StageClosedLost,
}

// StageProbabilities weight deal values for forecasting.
var StageProbabilities = map[string]float64{
	StageLead:          0.1,
	StageContactMade:   0.2,
	StageNeedsAnalysis: 0.3,
	StageProposal:      0.5,
	StageNegotiation:   0.7,
	StageClosedWon:     1.0,
	StageClosedLost:    0,
}

// ValidStage reports whether stage is a known pipeline stage.
func ValidStage(stage string) bool {
	_, ok := StageProbabilities[stage]
	return ok
}

// Deal is the GORM model for the deals table.
type Deal struct {
	ID                string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	Title             string     `json:"title" gorm:"type:varchar(200);not null"`
	CustomerID        string     `json:"customer_id" gorm:"type:varchar(36);index;not null"`
	CampaignID        string     `json:"campaign_id" gorm:"type:varchar(36);index"`
	Value             float64    `json:"value"`
	Stage             string     `json:"stage" gorm:"type:varchar(30);index;default:'lead'"`
	ExpectedCloseDate *time.Time `json:"expected_close_date"`
	Notes             string     `json:"notes" gorm:"type:text"`
	AssignedTo        string     `json:"assigned_to" gorm:"type:varchar(36);index"`
	CreatedBy         string     `json:"created_by" gorm:"type:varchar(36)"`
	CreatedAt         time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for Deal.
func (Deal) TableName() string {
	return "deals"
}

// StageBucket aggregates deals in one stage.
type StageBucket struct {
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

// PipelineStatistics summarises the deal book.
type PipelineStatistics struct {
	TotalDeals int                    `json:"total_deals"`
	TotalValue float64                `json:"total_value"`
	ByStage    map[string]StageBucket `json:"by_stage"`
	WinRate    float64                `json:"win_rate"`
}

// ForecastBucket aggregates weighted deal value for one group.
type ForecastBucket struct {
	Count         int     `json:"count"`
	WeightedValue float64 `json:"weighted_value"`
}

// Forecast is the stage-probability weighted pipeline projection.
type Forecast struct {
	TotalWeightedValue float64                   `json:"total_weighted_value"`
	ByMonth            map[string]ForecastBucket `json:"by_month"`
	ByStage            map[string]ForecastBucket `json:"by_stage"`
}
