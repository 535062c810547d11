// File: models/lot.go
package models

// Lot is a bounded production area containing multiple trees.
type Lot struct {
	ID                      string   `bson:"id" json:"id"`
	Code                    string   `bson:"code" json:"code"`
	Name                    string   `bson:"name" json:"name"`
	Status                  string   `bson:"status" json:"status"`
	AssignedCollaboratorIDs []string `bson:"assignedCollaboratorIds" json:"assignedCollaboratorIds"`
}
