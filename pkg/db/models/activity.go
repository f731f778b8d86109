package models

// Activity is the parent row of an activity concept aggregate.
type Activity struct {
	VersionedItem
	Name string `gorm:"column:name;not null;index"`
}

// TableName returns the GORM table name.
func (Activity) TableName() string { return "activities" }

// ActivityVersion is one immutable version snapshot of an activity.
type ActivityVersion struct {
	VersionRecord
	ActivityUID     string  `gorm:"column:activity_uid;not null;index"`
	Name            string  `gorm:"column:name;not null"`
	Definition      string  `gorm:"column:definition"`
	Abbreviation    string  `gorm:"column:abbreviation"`
	GroupingTermUID *string `gorm:"column:grouping_term_uid"`
}

// TableName returns the GORM table name.
func (ActivityVersion) TableName() string { return "activity_versions" }
