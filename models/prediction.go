package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Prediction is a single vote-transfer submission together with the derived
// seat-share snapshot computed at creation time. The submitter's IP is kept
// for quota and ownership checks only and is never serialized.
type Prediction struct {
	bun.BaseModel `bun:"table:predictions,alias:p"`

	ID             int64   `bun:"id,pk,autoincrement" json:"id"`
	Name           string  `bun:"name,notnull" json:"name"`
	NDATransfer    float64 `bun:"nda_transfer,notnull" json:"ndaTransfer"`
	MGBTransfer    float64 `bun:"mgb_transfer,notnull" json:"mgbTransfer"`
	OthersTransfer float64 `bun:"others_transfer,notnull" json:"othersTransfer"`
	NDAResult      float64 `bun:"nda_result,notnull" json:"ndaResult"`
	MGBResult      float64 `bun:"mgb_result,notnull" json:"mgbResult"`
	OthersResult   float64 `bun:"others_result,notnull" json:"othersResult"`
	JSPResult      float64 `bun:"jsp_result,notnull" json:"jspResult"`

	IP        string    `bun:"ip,notnull" json:"-"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}
