package notification

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	userRepo "cosecha/database/repository/user"
	"cosecha/models"
	"cosecha/services/capability"
	"cosecha/utils"

	"go.uber.org/zap"
)

const dispatchTimeout = 30 * time.Second

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Capability capability.Resolver
	Users      userRepo.UserRepository
	Pusher     Pusher

	// wg tracks in-flight dispatch batches so tests and shutdown can drain.
	wg sync.WaitGroup
}

func NewDefaultNotificationService(
	capResolver capability.Resolver,
	users userRepo.UserRepository,
	pusher Pusher,
) (*DefaultNotificationService, error) {
	if capResolver == nil || users == nil || pusher == nil {
		return nil, fmt.Errorf("notification service initialization error: missing dependency")
	}
	return &DefaultNotificationService{
		Capability: capResolver,
		Users:      users,
		Pusher:     pusher,
	}, nil
}

// NotifyPendingCollection resolves the current admin set and sends one push
// per admin, concurrently. It returns immediately; recipient resolution and
// delivery run detached from the submitting request. Per-recipient failures
// are logged and never retried. Zero admins means zero dispatches.
func (s *DefaultNotificationService) NotifyPendingCollection(notice models.PendingCollectionNotice) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		s.fanOut(ctx, notice)
	}()
}

// Wait blocks until all in-flight dispatch batches have finished.
func (s *DefaultNotificationService) Wait() {
	s.wg.Wait()
}

func (s *DefaultNotificationService) fanOut(ctx context.Context, notice models.PendingCollectionNotice) {
	logger := utils.GetLogger()

	adminIDs, err := s.Capability.ListAdminIDs(ctx)
	if err != nil {
		logger.Warn("notification: could not resolve admin recipients",
			zap.String("recordId", notice.RecordID), zap.Error(err))
		return
	}
	if len(adminIDs) == 0 {
		return
	}

	title := "New collection pending approval"
	body := fmt.Sprintf("%s submitted %.1f kg from tree %s in %s",
		notice.CollectorDisplayName, notice.QuantityKg, notice.TreeCode, notice.LotName)
	data := map[string]string{
		"type":       "pending_collection",
		"recordId":   notice.RecordID,
		"lotName":    notice.LotName,
		"treeCode":   notice.TreeCode,
		"quantityKg": strconv.FormatFloat(notice.QuantityKg, 'f', -1, 64),
		"collector":  notice.CollectorDisplayName,
	}

	var wg sync.WaitGroup
	for _, adminID := range adminIDs {
		wg.Add(1)
		go func(adminID string) {
			defer wg.Done()
			if err := s.sendToAdmin(ctx, adminID, title, body, data); err != nil {
				logger.Warn("notification: dispatch failed",
					zap.String("adminId", adminID),
					zap.String("recordId", notice.RecordID),
					zap.Error(err))
			}
		}(adminID)
	}
	wg.Wait()
}

func (s *DefaultNotificationService) sendToAdmin(ctx context.Context, adminID, title, body string, data map[string]string) error {
	admin, err := s.Users.GetByID(ctx, adminID)
	if err != nil {
		return fmt.Errorf("could not find admin %s: %w", adminID, err)
	}
	if admin.FCMToken == "" {
		return fmt.Errorf("admin %s has no FCM token", adminID)
	}
	return s.Pusher.Send(ctx, admin.FCMToken, title, body, data)
}
