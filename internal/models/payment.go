package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	TransactionID string             `bson:"transactionId" json:"transactionId"`
	Amount        float64            `bson:"amount" json:"amount"`
	Currency      string             `bson:"currency" json:"currency"`
	SenderEmail   string             `bson:"senderEmail" json:"senderEmail"`
	ParcelID      string             `bson:"parcelId" json:"parcelId"`
	ParcelName    string             `bson:"parcelName" json:"parcelName"`
	PaymentStatus string             `bson:"paymentStatus" json:"paymentStatus"`
	TrackingID    string             `bson:"trackingId" json:"trackingId"`
	PaidAt        time.Time          `bson:"paidAt" json:"paidAt"`
}
