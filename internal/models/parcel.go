package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DeliveryPendingPickup = "pending-pickup"
	DeliveryRiderAssign   = "rider-assign"

	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
)

type Parcel struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	SenderEmail    string             `bson:"senderEmail" json:"senderEmail"`
	ParcelName     string             `bson:"parcelName" json:"parcelName"`
	Cost           float64            `bson:"cost" json:"cost"`
	DeliveryStatus string             `bson:"deliveryStatus,omitempty" json:"deliveryStatus,omitempty"`
	PaymentStatus  string             `bson:"paymentStatus" json:"paymentStatus"`
	RiderID        string             `bson:"riderId,omitempty" json:"riderId,omitempty"`
	RiderName      string             `bson:"riderName,omitempty" json:"riderName,omitempty"`
	RiderEmail     string             `bson:"riderEmail,omitempty" json:"riderEmail,omitempty"`
	TrackingID     string             `bson:"trackingId,omitempty" json:"trackingId,omitempty"` // set once, on payment
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}
