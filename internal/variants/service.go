package variants

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/packfinderz-offers/pkg/db/models"
	pkgerrors "github.com/angelmondragon/packfinderz-offers/pkg/errors"
	"github.com/angelmondragon/packfinderz-offers/pkg/logger"
	"github.com/angelmondragon/packfinderz-offers/pkg/types"
)

// MaxVariantsPerProduct bounds one edit.
const MaxVariantsPerProduct = 500

// EditInput is the full proposed variant set of a product. Stored variants
// missing from Variants are deleted, as are DeleteVariantIDs.
type EditInput struct {
	Variants         []Row    `json:"variants"`
	DeleteVariantIDs []string `json:"deleteVariantIds"`
}

// LockSource reports which variants active supplier offers reference.
type LockSource interface {
	LockedVariantIDs(ctx context.Context, productID string) ([]string, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service validates and stores variant edits.
type Service interface {
	ValidateEdit(ctx context.Context, productID string, input EditInput) error
	ApplyEdit(ctx context.Context, productID string, input EditInput) ([]Row, error)
}

type service struct {
	repo  *Repository
	locks LockSource
	db    txRunner
	logg  *logger.Logger
}

// NewService constructs the variant edit service.
func NewService(repo *Repository, locks LockSource, db txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("variant repository required")
	}
	if locks == nil {
		return nil, fmt.Errorf("lock source required")
	}
	if db == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, locks: locks, db: db, logg: logg}, nil
}

func (s *service) ValidateEdit(ctx context.Context, productID string, input EditInput) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "productId is required")
	}
	if len(input.Variants) > MaxVariantsPerProduct {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d variants per product", MaxVariantsPerProduct))
	}

	stored, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list product variants")
	}
	locked, err := s.locks.LockedVariantIDs(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list locked variants")
	}
	return editError(
		ValidateCombos(keptRows(input.Variants, input.DeleteVariantIDs)),
		CheckLocks(locked, fromModels(stored), input.Variants, input.DeleteVariantIDs),
	)
}

func (s *service) ApplyEdit(ctx context.Context, productID string, input EditInput) ([]Row, error) {
	productID = strings.TrimSpace(productID)
	input.Variants = normalizeRows(input.Variants)
	if err := s.ValidateEdit(ctx, productID, input); err != nil {
		return nil, err
	}

	kept := keptRows(input.Variants, input.DeleteVariantIDs)
	ids := make([]string, 0, len(kept))
	for _, row := range kept {
		ids = append(ids, row.ID)
	}
	rows := toModels(productID, kept)

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		foreign, err := txRepo.IDsOwnedElsewhere(ctx, productID, ids)
		if err != nil {
			return err
		}
		if len(foreign) > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "variant ids belong to another product").
				WithDetails(map[string]any{"variantIds": foreign})
		}
		return txRepo.Replace(ctx, productID, rows)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store product variants")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"product_id": productID,
		"variants":   len(rows),
	})
	s.logg.Info(logCtx, "variants.edit.applied")
	return fromModels(rows), nil
}

// editError folds combo and lock problems into one typed error. Combo
// problems take the code; locked ids ride along in the details.
func editError(report ComboReport, lockErr error) error {
	var inUse *VariantInUseError
	errors.As(lockErr, &inUse)

	if comboErr := report.Err(); comboErr != nil {
		details := map[string]any{
			"duplicates": report.Duplicates,
			"incomplete": report.Incomplete,
		}
		if inUse != nil {
			details["variantIds"] = inUse.VariantIDs
		}
		return pkgerrors.Wrap(pkgerrors.CodeDuplicateVariantCombo, comboErr, comboErr.Error()).WithDetails(details)
	}
	if inUse != nil {
		return pkgerrors.Wrap(pkgerrors.CodeVariantInUse, inUse, inUse.Error()).
			WithDetails(map[string]any{"variantIds": inUse.VariantIDs})
	}
	return nil
}

// normalizeRows trims ids and gives new rows an id.
func normalizeRows(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		row.ID = strings.TrimSpace(row.ID)
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		out = append(out, row)
	}
	return out
}

// keptRows drops the rows listed in deletes. Only kept rows are checked for
// combo problems and stored.
func keptRows(rows []Row, deletes []string) []Row {
	if len(deletes) == 0 {
		return rows
	}
	drop := make(map[string]struct{}, len(deletes))
	for _, id := range deletes {
		if id = strings.TrimSpace(id); id != "" {
			drop[id] = struct{}{}
		}
	}
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if _, ok := drop[strings.TrimSpace(row.ID)]; ok {
			continue
		}
		out = append(out, row)
	}
	return out
}

func toModels(productID string, rows []Row) []models.ProductVariant {
	out := make([]models.ProductVariant, 0, len(rows))
	for _, row := range rows {
		selections := row.Selections
		if selections == nil {
			selections = types.VariantSelections{}
		}
		out = append(out, models.ProductVariant{
			ID:         row.ID,
			ProductID:  productID,
			SKU:        row.SKU,
			Selections: selections,
		})
	}
	return out
}

func fromModels(rows []models.ProductVariant) []Row {
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, Row{ID: row.ID, SKU: row.SKU, Selections: row.Selections})
	}
	return out
}
