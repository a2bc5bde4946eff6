package domain

import (
	"context"

	"millerp/internal/core/apperror"
	"millerp/internal/core/entity"
	"millerp/internal/core/id"
)

// Lookup fetches a referenced document. A nil id, a missing document and a
// soft-deleted document all report found == false; only store failures are errors.
func Lookup[T entity.Document](ctx context.Context, c Collection[T], docID id.ID) (doc T, found bool, err error) {
	var zero T
	if id.IsNil(docID) {
		return zero, false, nil
	}
	doc, err = c.GetByID(ctx, docID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return zero, false, nil
		}
		return zero, false, err
	}
	if doc.Base().DeletionMark {
		return zero, false, nil
	}
	return doc, true, nil
}
