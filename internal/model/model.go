package model

import "time"

// Combiner represents one string combiner box registered at the site.
type Combiner struct {
	CombinerID   string `gorm:"column:combiner_id;primaryKey"`
	Name         string `gorm:"column:name"`
	Protocol     string `gorm:"column:protocol"`
	Host         string `gorm:"column:host"`
	Port         int    `gorm:"column:port"`
	SlaveID      int    `gorm:"column:slave_id"`
	NumStrings   int    `gorm:"column:num_strings"`
	PollInterval string `gorm:"column:poll_interval"`

	StringCurrents []StringCurrent     `gorm:"foreignKey:CombinerID;references:CombinerID"`
	Irradiance     []IrradianceReading `gorm:"foreignKey:CombinerID;references:CombinerID"`
}

func (Combiner) TableName() string { return "combiners" }

// StringCurrent captures one measured string current. A nil Value records
// that the sample was taken but the reading was unavailable.
type StringCurrent struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement"`
	CombinerID string    `gorm:"column:combiner_id;index"`
	StringID   int       `gorm:"column:string_id"`
	Value      *float64  `gorm:"column:value"`
	Timestamp  time.Time `gorm:"column:timestamp;index"`

	Combiner Combiner `gorm:"foreignKey:CombinerID;references:CombinerID"`
}

func (StringCurrent) TableName() string { return "string_currents" }

// IrradianceReading captures one plane-of-array irradiance sample for a
// combiner. A nil Value means the pyranometer reading was unavailable, which
// is distinct from a measured zero at night.
type IrradianceReading struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement"`
	CombinerID string    `gorm:"column:combiner_id;index"`
	Value      *float64  `gorm:"column:value"`
	Timestamp  time.Time `gorm:"column:timestamp;index"`

	Combiner Combiner `gorm:"foreignKey:CombinerID;references:CombinerID"`
}

func (IrradianceReading) TableName() string { return "irradiance_readings" }

// WeakStringFlag persists one weak-string diagnosis for a calendar date.
type WeakStringFlag struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement"`
	CombinerID string    `gorm:"column:combiner_id;index"`
	Date       time.Time `gorm:"column:date;index"`
	StringID   int       `gorm:"column:string_id"`
}

func (WeakStringFlag) TableName() string { return "weak_string_flags" }
