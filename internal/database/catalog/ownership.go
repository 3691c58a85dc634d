package catalog

import (
	"errors"
	"math"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookdb/internal/entities"
	apperrors "github.com/mrlokans/bookdb/internal/errors"
)

// GetOwnership retrieves the ownership record for a printing and owner.
func (r *Repository) GetOwnership(printingID, ownerID uint) (*entities.Ownership, error) {
	var ownership entities.Ownership
	err := r.db.Where("printing_id = ? AND owner_id = ?", printingID, ownerID).First(&ownership).Error
	if err != nil {
		return nil, notFound(err, "ownership of printing %d by owner %d", printingID, ownerID)
	}
	return &ownership, nil
}

// AdjustQuantity changes the number of copies of a printing an owner holds
// and returns the new quantity.
//
// An increment creates the ownership record when missing. A decrement needs an
// existing record (NotFound otherwise) and fails with ConstraintViolation if it
// would drop below zero. A record that reaches zero is deleted.
func (r *Repository) AdjustQuantity(printingID, ownerID uint, delta int) (int, error) {
	if delta == 0 {
		return 0, apperrors.ConstraintViolation("quantity change must not be zero")
	}

	var quantity int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := requireExists(tx, &entities.Printing{}, printingID, "printing"); err != nil {
			return err
		}
		if err := requireExists(tx, &entities.Owner{}, ownerID, "owner"); err != nil {
			return err
		}

		var ownership entities.Ownership
		err := tx.Where("printing_id = ? AND owner_id = ?", printingID, ownerID).First(&ownership).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if delta < 0 {
				return apperrors.NotFoundf("owner %d holds no copies of printing %d", ownerID, printingID)
			}
			ownership = entities.Ownership{PrintingID: printingID, OwnerID: ownerID, Quantity: delta}
			quantity = delta
			return translate(tx.Omit(clause.Associations).Create(&ownership).Error, "create ownership")
		case err != nil:
			return err
		}

		if delta > 0 && ownership.Quantity > math.MaxInt-delta {
			return apperrors.ConstraintViolationf(
				"owner %d holds %d copies of printing %d, cannot add %d more",
				ownerID, ownership.Quantity, printingID, delta)
		}
		quantity = ownership.Quantity + delta
		switch {
		case quantity < 0:
			return apperrors.ConstraintViolationf(
				"owner %d holds %d copies of printing %d, cannot remove %d",
				ownerID, ownership.Quantity, printingID, -delta)
		case quantity == 0:
			return tx.Where("printing_id = ? AND owner_id = ?", printingID, ownerID).
				Delete(&entities.Ownership{}).Error
		default:
			return tx.Model(&entities.Ownership{}).
				Where("printing_id = ? AND owner_id = ?", printingID, ownerID).
				Update("quantity", quantity).Error
		}
	})
	if err != nil {
		return 0, err
	}
	return quantity, nil
}

// DeleteOwnership removes an ownership record regardless of its quantity.
func (r *Repository) DeleteOwnership(printingID, ownerID uint) error {
	result := r.db.Where("printing_id = ? AND owner_id = ?", printingID, ownerID).Delete(&entities.Ownership{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFoundf("ownership of printing %d by owner %d not found", printingID, ownerID)
	}
	return nil
}

func requireExists(tx *gorm.DB, model any, id uint, kind string) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperrors.NotFoundf("%s %d not found", kind, id)
	}
	return nil
}
