// File: models/tree.go
package models

// Tree is an individually tracked plant inside a lot; the unit of harvest
// attribution. Health-state edits happen elsewhere, the pipeline only reads.
type Tree struct {
	ID          string `bson:"id" json:"id"`
	LotID       string `bson:"lotId" json:"lotId"`
	Code        string `bson:"code" json:"code"`
	Species     string `bson:"species" json:"species"`
	HealthState string `bson:"healthState" json:"healthState"`
}
