// internal/domain/entity/ticket.go
package entity

import (
	"time"
)

// Sentinel values used by the source exports and the report filters
const (
	RegionUnspecified = "Не указано"

	AllRegions  = "РФ"
	AllSystems  = "Все системы"
	AllTypes    = "Все заявки"
	AllStatuses = "Все статусы"
)

// TicketRecord is one support ticket as stored in the records collection.
// ID is the upsert key; the Mongo generated _id is never used by the service.
type TicketRecord struct {
	ID                 int64     `bson:"id" json:"id"`
	CreationDate       time.Time `bson:"creation_date" json:"creation_date"`
	SystemID           string    `bson:"system_id" json:"system_id"`
	Type               string    `bson:"type" json:"type"`
	Status             string    `bson:"status" json:"status"`
	FirstAnswerSeconds int       `bson:"first_answer_seconds" json:"first_answer_seconds"`
	LastAnswerDate     time.Time `bson:"last_answer_date" json:"last_answer_date"`
	Region             string    `bson:"region" json:"region"`
}

// ResolutionDays returns the whole days between creation and the last answer.
// Negative spans floor toward minus infinity.
func (t *TicketRecord) ResolutionDays() int {
	d := t.LastAnswerDate.Sub(t.CreationDate)
	days := int(d / (24 * time.Hour))
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}
	return days
}
