package services

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/Pedroffda/alinhavo-api/apperrors"
	"github.com/Pedroffda/alinhavo-api/logger"
	"github.com/Pedroffda/alinhavo-api/models"
	"github.com/Pedroffda/alinhavo-api/repository"
	"github.com/Pedroffda/alinhavo-api/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InspirationRef points at an image already placed in blob storage
type InspirationRef struct {
	Path      string `json:"path"`
	FileName  string `json:"file_name"`
	SizeBytes int64  `json:"size_bytes"`
	MimeType  string `json:"mime_type"`
}

// OrderAttributes describes a new order. Exactly one of DeliveryDate and
// DeliveryDays must be set; days are counted from the creation time.
type OrderAttributes struct {
	GarmentType  string
	Size         string
	Color        string
	Material     string
	Style        string
	Details      string
	DeliveryDate *time.Time
	DeliveryDays *int
	MaxBudget    *decimal.Decimal
	Inspirations []InspirationRef
}

// SortKey selects the ordering of open-order listings
type SortKey string

const (
	SortByCreated  SortKey = "created"
	SortByDeadline SortKey = "deadline"
	SortByBudget   SortKey = "budget"
)

// OpenOrderFilter narrows and orders ListOpenOrders. Recency and budget sort
// descending by default, deadline ascending; Ascending overrides that.
type OpenOrderFilter struct {
	GarmentType string
	Sort        SortKey
	Ascending   *bool
	Limit       int
	Offset      int
}

// OrderLedger owns orders and their status transitions
type OrderLedger struct {
	store *repository.Store
	now   func() time.Time
}

// CreateOrder records a new open order for clientID
func (l *OrderLedger) CreateOrder(ctx context.Context, clientID string, attrs OrderAttributes) (*models.Order, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, apperrors.NewNotAuthorized("UNAUTHORIZED", "A client id is required to create an order")
	}

	now := l.now().UTC()
	deliveryDate, problems := validateOrderAttributes(attrs, now)
	if len(problems) > 0 {
		return nil, apperrors.NewValidation("VALIDATION_ERROR", strings.Join(problems, "; "))
	}

	order := &models.Order{
		ClientID:     clientID,
		GarmentType:  strings.TrimSpace(attrs.GarmentType),
		Size:         strings.TrimSpace(attrs.Size),
		Color:        strings.TrimSpace(attrs.Color),
		Material:     strings.TrimSpace(attrs.Material),
		Style:        strings.TrimSpace(attrs.Style),
		Details:      strings.TrimSpace(attrs.Details),
		DeliveryDate: deliveryDate,
		MaxBudget:    *attrs.MaxBudget,
		Status:       models.OrderOpen,
		Progress:     0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, ref := range attrs.Inspirations {
		order.Inspirations = append(order.Inspirations, models.Inspiration{
			StoragePath: ref.Path,
			FileName:    ref.FileName,
			SizeBytes:   ref.SizeBytes,
			MimeType:    ref.MimeType,
			CreatedAt:   now,
		})
	}

	if err := l.store.Orders().Create(ctx, order); err != nil {
		logger.Log.Error("failed to create order", zap.String("client_id", clientID), zap.Error(err))
		return nil, apperrors.NewPersistence("Failed to create order", err)
	}

	logger.Log.Info("order created",
		zap.Uint("order_id", order.ID),
		zap.String("client_id", clientID),
		zap.String("garment_type", order.GarmentType),
	)
	return order, nil
}

// CancelOrder moves an open or in-progress order to cancelled. Pending
// proposals on the order are rejected in the same transaction.
func (l *OrderLedger) CancelOrder(ctx context.Context, orderID uint, requesterID string) (*models.Order, error) {
	var cancelled *models.Order

	err := l.store.WithTx(ctx, func(tx *repository.Store) error {
		order, err := tx.Orders().Get(ctx, orderID)
		if err != nil {
			return lookupErr(err, "ORDER_NOT_FOUND", "Order not found")
		}

		if !order.IsParty(requesterID) {
			return apperrors.NewNotAuthorized("FORBIDDEN", "Only the order's client or assigned tailor can cancel it")
		}
		if order.Status.IsTerminal() {
			return apperrors.NewInvalidState("ORDER_CLOSED", fmt.Sprintf("Order is already %s", order.Status))
		}

		fields, err := models.StatusFields(models.OrderCancelled, "")
		if err != nil {
			return err
		}
		updated, err := tx.Orders().UpdateIfStatus(ctx, orderID,
			[]models.OrderStatus{models.OrderOpen, models.OrderInProgress}, fields)
		if err != nil {
			return err
		}
		if !updated {
			return apperrors.NewInvalidState("ORDER_CLOSED", "Order changed state while being cancelled")
		}

		if _, err := tx.Proposals().RejectPending(ctx, orderID, 0); err != nil {
			return err
		}

		cancelled, err = tx.Orders().Get(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, txErr(err, "Failed to cancel order")
	}

	logger.Log.Info("order cancelled", zap.Uint("order_id", orderID), zap.String("caller_id", requesterID))
	return cancelled, nil
}

// GetOrder returns an order with its inspiration images
func (l *OrderLedger) GetOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := l.store.Orders().Get(ctx, orderID)
	if err != nil {
		return nil, lookupErr(err, "ORDER_NOT_FOUND", "Order not found")
	}
	if order.Inspirations, err = l.store.Inspirations().ListByOrder(ctx, orderID); err != nil {
		return nil, apperrors.NewPersistence("Failed to load order inspirations", err)
	}
	return order, nil
}

// InspirationInUse reports whether any order has the image key attached
func (l *OrderLedger) InspirationInUse(ctx context.Context, key string) (bool, error) {
	count, err := l.store.Inspirations().CountByPath(ctx, key)
	if err != nil {
		return false, apperrors.NewPersistence("Failed to look up inspiration", err)
	}
	return count > 0, nil
}

// ListOpenOrders streams orders still accepting proposals. Each range over
// the result re-runs the query.
func (l *OrderLedger) ListOpenOrders(ctx context.Context, filter OpenOrderFilter) iter.Seq2[models.Order, error] {
	query := repository.OpenOrdersQuery{
		GarmentType: strings.TrimSpace(filter.GarmentType),
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}

	switch filter.Sort {
	case SortByDeadline:
		query.SortColumn = repository.ColumnDeliveryDate
		query.Descending = false
	case SortByBudget:
		query.SortColumn = repository.ColumnMaxBudget
		query.Descending = true
	default:
		query.SortColumn = repository.ColumnCreatedAt
		query.Descending = true
	}
	if filter.Ascending != nil {
		query.Descending = !*filter.Ascending
	}

	return wrapSeq(l.store.Orders().ListOpen(ctx, query))
}

// ListOrdersForClient streams a client's own orders, most recent first
func (l *OrderLedger) ListOrdersForClient(ctx context.Context, clientID string) iter.Seq2[models.Order, error] {
	return wrapSeq(l.store.Orders().ListByClient(ctx, clientID))
}

// ValidSortKey reports whether key names a supported ordering
func ValidSortKey(key SortKey) bool {
	switch key {
	case "", SortByCreated, SortByDeadline, SortByBudget:
		return true
	default:
		return false
	}
}

func validateOrderAttributes(attrs OrderAttributes, now time.Time) (time.Time, []string) {
	var problems []string

	required := []struct {
		field string
		value string
	}{
		{"garment_type", attrs.GarmentType},
		{"size", attrs.Size},
		{"color", attrs.Color},
		{"material", attrs.Material},
		{"style", attrs.Style},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			problems = append(problems, r.field+" is required")
		}
	}

	if attrs.MaxBudget == nil {
		problems = append(problems, "max_budget is required")
	} else if problem := models.AmountProblem("max_budget", *attrs.MaxBudget); problem != "" {
		problems = append(problems, problem)
	}

	today := truncateToDay(now)
	var deliveryDate time.Time
	switch {
	case attrs.DeliveryDate == nil && attrs.DeliveryDays == nil:
		problems = append(problems, "delivery_date or delivery_days is required")
	case attrs.DeliveryDate != nil && attrs.DeliveryDays != nil:
		problems = append(problems, "only one of delivery_date and delivery_days may be given")
	case attrs.DeliveryDays != nil:
		if *attrs.DeliveryDays <= 0 {
			problems = append(problems, "delivery_days must be positive")
		} else {
			deliveryDate = today.AddDate(0, 0, *attrs.DeliveryDays)
		}
	default:
		deliveryDate = truncateToDay(attrs.DeliveryDate.UTC())
		if deliveryDate.Before(today) {
			problems = append(problems, "delivery_date must not be in the past")
		}
	}

	for i, ref := range attrs.Inspirations {
		switch {
		case strings.TrimSpace(ref.Path) == "" || strings.TrimSpace(ref.FileName) == "":
			problems = append(problems, fmt.Sprintf("inspirations[%d] needs a path and file name", i))
		case ref.SizeBytes <= 0 || ref.SizeBytes > utils.MaxFileSize:
			problems = append(problems, fmt.Sprintf("inspirations[%d] has an invalid size", i))
		case !utils.IsAllowedImageType(ref.MimeType):
			problems = append(problems, fmt.Sprintf("inspirations[%d] is not a supported image type", i))
		}
	}

	return deliveryDate, problems
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
