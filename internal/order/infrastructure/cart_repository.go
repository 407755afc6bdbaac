// internal/order/infrastructure/cart_repository.go
package infrastructure

import (
	"context"

	"mall/internal/order/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// MysqlCartRepository 是 domain.CartRepository 的 GORM 实现。
type MysqlCartRepository struct {
	db *gorm.DB
}

func NewMysqlCartRepository(db *gorm.DB) *MysqlCartRepository {
	return &MysqlCartRepository{db: db}
}

func (r *MysqlCartRepository) ListByUser(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	var models []ShoppingCartModel
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "list cart items")
	}
	return toDomainCartItems(models), nil
}

func (r *MysqlCartRepository) ListChecked(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	var models []ShoppingCartModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND checked = ?", userID, true).
		Find(&models).Error
	if err != nil {
		return nil, errors.Wrap(err, "list checked cart items")
	}
	return toDomainCartItems(models), nil
}

// Upsert 新增条目；同一 (user, goods) 已存在时叠加数量。
func (r *MysqlCartRepository) Upsert(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error) {
	var model ShoppingCartModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND goods_id = ?", item.UserID, item.GoodsID).
		First(&model).Error
	switch {
	case err == nil:
		model.Nums += item.Nums
	case errors.Is(err, gorm.ErrRecordNotFound):
		model = ShoppingCartModel{
			UserID:  item.UserID,
			GoodsID: item.GoodsID,
			Nums:    item.Nums,
			Checked: item.Checked,
		}
	default:
		return nil, errors.Wrap(err, "find cart item")
	}

	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		return nil, errors.Wrap(err, "save cart item")
	}
	result := toDomainCartItem(&model)
	return &result, nil
}

func (r *MysqlCartRepository) Update(ctx context.Context, userID, goodsID int64, nums int32, checked bool) error {
	var model ShoppingCartModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND goods_id = ?", userID, goodsID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return errors.Wrap(err, "find cart item for update")
	}

	model.Checked = checked
	if nums > 0 {
		model.Nums = nums
	}
	return errors.Wrap(r.db.WithContext(ctx).Save(&model).Error, "update cart item")
}

func (r *MysqlCartRepository) Delete(ctx context.Context, userID, goodsID int64) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND goods_id = ?", userID, goodsID).
		Delete(&ShoppingCartModel{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete cart item")
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func toDomainCartItems(models []ShoppingCartModel) []domain.CartItem {
	items := make([]domain.CartItem, 0, len(models))
	for i := range models {
		items = append(items, toDomainCartItem(&models[i]))
	}
	return items
}
