package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RiderPending  = "pending"
	RiderApproved = "approved"
	RiderRejected = "rejected"

	WorkAssignPickup = "assign-pickup"
	WorkAvailable    = "available"
)

type Rider struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Email      string             `bson:"email" json:"email"`
	Name       string             `bson:"name" json:"name"`
	District   string             `bson:"district" json:"district"`
	Status     string             `bson:"status" json:"status"`
	WorkStatus string             `bson:"workStatus,omitempty" json:"workStatus,omitempty"` // empty until approved
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// ValidRiderStatus reports whether status is a status an admin may set.
func ValidRiderStatus(status string) bool {
	switch status {
	case RiderPending, RiderApproved, RiderRejected:
		return true
	}
	return false
}
