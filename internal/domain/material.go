package domain

// Material is one tracked usage record of an eco-friendly construction material.
// DateAdded is kept as text in YYYY-MM-DD form so column order is chronological.
type Material struct {
	ID              int64   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Material        string  `gorm:"column:material;not null" json:"material"`
	Quantity        int     `gorm:"column:quantity;not null" json:"quantity"`
	Source          string  `gorm:"column:source;not null" json:"source"`
	CarbonSavings   float64 `gorm:"column:carbon_savings;not null" json:"carbon_savings"`
	ProjectLocation string  `gorm:"column:project_location;not null" json:"project_location"`
	UsedInProject   string  `gorm:"column:used_in_project;not null" json:"used_in_project"`
	DateAdded       string  `gorm:"column:date_added;not null" json:"date_added"`
	ActualUsage     *int    `gorm:"column:actual_usage" json:"actual_usage"`
}

func (Material) TableName() string {
	return "materials"
}

// MaterialAlternative is the projection returned by the suggestions endpoint.
type MaterialAlternative struct {
	ID            int64   `json:"id"`
	Material      string  `json:"material"`
	CarbonSavings float64 `json:"carbon_savings"`
}

// UsagePair is one (carbon_savings, actual_usage) training sample.
type UsagePair struct {
	CarbonSavings float64 `gorm:"column:carbon_savings"`
	ActualUsage   int     `gorm:"column:actual_usage"`
}
