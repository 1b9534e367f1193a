package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Upload holds metadata for a session video stored in object storage and
// linked to a workout log. The binary itself lives in S3 under ObjectKey.
type Upload struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	LogID       primitive.ObjectID `bson:"logId" json:"logId"`
	ObjectKey   string             `bson:"objectKey" json:"objectKey"`
	FileName    string             `bson:"fileName,omitempty" json:"fileName,omitempty"`
	FileSize    int64              `bson:"fileSize,omitempty" json:"fileSize,omitempty"`
	ContentType string             `bson:"contentType,omitempty" json:"contentType,omitempty"`
	UploadedAt  time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}
