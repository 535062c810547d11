package models

// PendingCollectionNotice is the payload carried by the push sent to every
// admin when a non-admin submits a collection.
type PendingCollectionNotice struct {
	RecordID             string  `json:"recordId"`
	LotName              string  `json:"lotName"`
	TreeCode             string  `json:"treeCode"`
	QuantityKg           float64 `json:"quantityKg"`
	CollectorDisplayName string  `json:"collectorDisplayName"`
}
