package harvest

import (
	"context"
	"errors"
	"fmt"
	"time"

	collectionRepo "cosecha/database/repository/collection"
	lotRepo "cosecha/database/repository/lot"
	treeRepo "cosecha/database/repository/tree"
	"cosecha/models"
	"cosecha/services/capability"
	"cosecha/services/identity"
	"cosecha/services/notification"
)

// DefaultHarvestService is the production implementation.
type DefaultHarvestService struct {
	Records    collectionRepo.CollectionRepository
	Trees      treeRepo.TreeRepository
	Lots       lotRepo.LotRepository
	Capability capability.Resolver
	Identity   identity.Resolver
	Notifier   notification.Service

	// Now is the clock; overridable in tests.
	Now func() time.Time
}

func (s *DefaultHarvestService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SubmitCollection validates and persists a new collection record. An
// admin-capable submitter starts the record approved; anyone else starts it
// pending, which triggers the supervisor fan-out.
func (s *DefaultHarvestService) SubmitCollection(ctx context.Context, input SubmitCollectionInput) (*models.CollectionRecord, error) {
	if input.QuantityKg < 0 {
		return nil, &ValidationError{Message: "quantityKg must be non-negative"}
	}
	if input.LotID == "" || input.TreeID == "" || input.CollectorID == "" {
		return nil, &ValidationError{Message: "lotId, treeId and collectorId are required"}
	}

	tree, err := s.Trees.GetByID(ctx, input.TreeID)
	if err != nil {
		if errors.Is(err, treeRepo.ErrNotFound) {
			return nil, &ValidationError{Message: fmt.Sprintf("tree %s does not exist", input.TreeID)}
		}
		return nil, fmt.Errorf("SubmitCollection: tree lookup: %w", err)
	}
	if tree.LotID != input.LotID {
		return nil, &ValidationError{Message: fmt.Sprintf("tree %s does not belong to lot %s", input.TreeID, input.LotID)}
	}

	lot, err := s.Lots.GetByID(ctx, input.LotID)
	if err != nil {
		if errors.Is(err, lotRepo.ErrNotFound) {
			return nil, &ValidationError{Message: fmt.Sprintf("lot %s does not exist", input.LotID)}
		}
		return nil, fmt.Errorf("SubmitCollection: lot lookup: %w", err)
	}

	isAdmin, err := s.Capability.HasAdminCapability(ctx, input.CollectorID)
	if err != nil {
		return nil, fmt.Errorf("SubmitCollection: capability check: %w", err)
	}

	now := s.now()
	collectedAt := input.CollectedAt
	if collectedAt.IsZero() {
		collectedAt = now
	}

	record := models.CollectionRecord{
		LotID:                input.LotID,
		TreeID:               input.TreeID,
		CollectorID:          input.CollectorID,
		CollectorDisplayName: s.Identity.Resolve(ctx, input.CollectorID, ""),
		QuantityKg:           input.QuantityKg,
		CollectedAt:          collectedAt,
		Notes:                input.Notes,
		Status:               models.StatusPending,
	}
	if isAdmin {
		record.Status = models.StatusApproved
		record.ApprovedBy = input.CollectorID
		record.ApprovedAt = &now
	}

	id, err := s.Records.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("SubmitCollection: persist: %w", err)
	}
	record.ID = id
	record.CreatedAt = now
	record.UpdatedAt = now

	if record.Status == models.StatusPending {
		s.Notifier.NotifyPendingCollection(models.PendingCollectionNotice{
			RecordID:             record.ID,
			LotName:              lot.Name,
			TreeCode:             tree.Code,
			QuantityKg:           record.QuantityKg,
			CollectorDisplayName: record.CollectorDisplayName,
		})
	}

	return &record, nil
}

// Approve moves a pending record to approved and stamps the approver.
// Approved and rejected are terminal; anything not pending is refused before
// a write is attempted.
func (s *DefaultHarvestService) Approve(ctx context.Context, recordID, approverID string) (*models.CollectionRecord, error) {
	record, err := s.Records.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, collectionRepo.ErrNotFound) {
			return nil, &ValidationError{Message: fmt.Sprintf("collection record %s does not exist", recordID)}
		}
		return nil, fmt.Errorf("Approve: lookup: %w", err)
	}
	if record.Status != models.StatusPending {
		return nil, &ValidationError{Message: fmt.Sprintf("cannot approve a %s record", record.Status)}
	}

	now := s.now()
	if err := s.Records.MarkApproved(ctx, recordID, approverID, now); err != nil {
		if errors.Is(err, collectionRepo.ErrNotFound) {
			return nil, &ValidationError{Message: "record is no longer pending"}
		}
		return nil, fmt.Errorf("Approve: persist: %w", err)
	}

	record.Status = models.StatusApproved
	record.ApprovedBy = approverID
	record.ApprovedAt = &now
	record.UpdatedAt = now
	return record, nil
}

// Reject moves a pending record to rejected and stamps the rejecter and the
// optional reason.
func (s *DefaultHarvestService) Reject(ctx context.Context, recordID, rejecterID, reason string) (*models.CollectionRecord, error) {
	record, err := s.Records.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, collectionRepo.ErrNotFound) {
			return nil, &ValidationError{Message: fmt.Sprintf("collection record %s does not exist", recordID)}
		}
		return nil, fmt.Errorf("Reject: lookup: %w", err)
	}
	if record.Status != models.StatusPending {
		return nil, &ValidationError{Message: fmt.Sprintf("cannot reject a %s record", record.Status)}
	}

	now := s.now()
	if err := s.Records.MarkRejected(ctx, recordID, rejecterID, reason, now); err != nil {
		if errors.Is(err, collectionRepo.ErrNotFound) {
			return nil, &ValidationError{Message: "record is no longer pending"}
		}
		return nil, fmt.Errorf("Reject: persist: %w", err)
	}

	record.Status = models.StatusRejected
	record.RejectedBy = rejecterID
	record.RejectedAt = &now
	record.Reason = reason
	record.UpdatedAt = now
	return record, nil
}

// LotSummary reads the current tree and record sets and reduces them once.
func (s *DefaultHarvestService) LotSummary(ctx context.Context, lotID string, include StatusSet) (*models.Aggregate, error) {
	if _, err := s.Lots.GetByID(ctx, lotID); err != nil {
		if errors.Is(err, lotRepo.ErrNotFound) {
			return nil, &ValidationError{Message: fmt.Sprintf("lot %s does not exist", lotID)}
		}
		return nil, fmt.Errorf("LotSummary: lot lookup: %w", err)
	}

	trees, err := s.Trees.GetByLotID(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("LotSummary: trees: %w", err)
	}
	records, err := s.Records.GetByLotID(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("LotSummary: records: %w", err)
	}

	agg := Reduce(s.now(), lotID, trees, records, include)
	return &agg, nil
}
