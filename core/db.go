package core

// UpdateResult summarizes a multi-document update.
type UpdateResult struct {
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
	UpsertedCount int64 `json:"upsertedCount"`
}

// DeleteResult summarizes a multi-document delete.
type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
}
