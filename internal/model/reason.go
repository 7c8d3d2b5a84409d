package model

// reasons — shared reference lookup for signalments.
type Reason struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Text string `gorm:"column:reason;type:varchar(255);not null;uniqueIndex"`
}
