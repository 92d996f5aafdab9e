package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SalesInstanceStatus is the lifecycle state of a table/tab.
type SalesInstanceStatus string

const (
	// SalesInstanceOccupied — the instance is open and taking orders.
	SalesInstanceOccupied SalesInstanceStatus = "occupied"
	// SalesInstanceClosed — the instance is settled; terminal.
	SalesInstanceClosed SalesInstanceStatus = "closed"
)

// SalesInstance is a table, tab or delivery slot that groups orders.
type SalesInstance struct {
	ID                uuid.UUID
	BusinessID        uuid.UUID
	Reference         string // e.g. "Table 5"
	Status            SalesInstanceStatus
	ResponsibleUserID uuid.UUID
	OpenedAt          time.Time
	ClosedAt          *time.Time
}

// NewSalesInstance opens a sales instance.
func NewSalesInstance(businessID uuid.UUID, reference string, responsibleUserID uuid.UUID) (*SalesInstance, error) {
	if businessID == uuid.Nil {
		return nil, fmt.Errorf("business id must be set")
	}
	if reference == "" {
		return nil, fmt.Errorf("reference must not be empty")
	}
	if responsibleUserID == uuid.Nil {
		return nil, fmt.Errorf("responsible user id must be set")
	}
	return &SalesInstance{
		ID:                uuid.New(),
		BusinessID:        businessID,
		Reference:         reference,
		Status:            SalesInstanceOccupied,
		ResponsibleUserID: responsibleUserID,
		OpenedAt:          time.Now().UTC(),
	}, nil
}

// IsOpen reports whether the instance still takes orders.
func (s *SalesInstance) IsOpen() bool {
	return s.Status == SalesInstanceOccupied
}
