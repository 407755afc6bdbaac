// internal/order/infrastructure/order_repository.go
package infrastructure

import (
	"context"

	"mall/internal/order/domain"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// MysqlOrderRepository 是 domain.OrderRepository 的 GORM 实现。
type MysqlOrderRepository struct {
	db *gorm.DB
}

func NewMysqlOrderRepository(db *gorm.DB) *MysqlOrderRepository {
	return &MysqlOrderRepository{db: db}
}

// Create 在一个事务里落库订单头、订单行，并把该用户勾选中的
// 购物车条目置回未勾选。任何一步失败整体回滚。
func (r *MysqlOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := toOrderModel(order)
		if err := tx.Create(model).Error; err != nil {
			return errors.Wrap(err, "insert order")
		}

		lines := make([]OrderGoodsModel, 0, len(order.Lines))
		for _, line := range order.Lines {
			lines = append(lines, OrderGoodsModel{
				OrderID:    model.ID,
				GoodsID:    line.GoodsID,
				GoodsName:  line.GoodsName,
				GoodsImage: line.GoodsImage,
				GoodsPrice: line.UnitPrice,
				Nums:       line.Nums,
			})
		}
		if err := tx.Create(&lines).Error; err != nil {
			return errors.Wrap(err, "insert order lines")
		}

		// 勾选过的条目不能被再次下单，直到用户重新勾选
		if err := tx.Model(&ShoppingCartModel{}).
			Where("user_id = ? AND checked = ?", order.UserID, true).
			Update("checked", false).Error; err != nil {
			return errors.Wrap(err, "uncheck cart items")
		}

		order.ID = model.ID
		for i := range lines {
			order.Lines[i].ID = lines[i].ID
			order.Lines[i].OrderID = model.ID
		}
		return nil
	})
	if err != nil {
		return errors.WithMessagef(domain.ErrInternal, "create order %s: %v", order.OrderSn, err)
	}
	return nil
}

func (r *MysqlOrderRepository) FindByID(ctx context.Context, id int64, userID int64) (*domain.Order, error) {
	query := r.db.WithContext(ctx).Where("id = ?", id)
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}

	var model OrderModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "find order by id")
	}
	return r.withLines(ctx, &model)
}

func (r *MysqlOrderRepository) FindBySn(ctx context.Context, orderSn string) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Where("order_sn = ?", orderSn).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, errors.Wrap(err, "find order by sn")
	}
	return r.withLines(ctx, &model)
}

func (r *MysqlOrderRepository) withLines(ctx context.Context, model *OrderModel) (*domain.Order, error) {
	var lines []OrderGoodsModel
	if err := r.db.WithContext(ctx).Where("order_id = ?", model.ID).Find(&lines).Error; err != nil {
		return nil, errors.Wrap(err, "load order lines")
	}
	return toDomainOrder(model, lines), nil
}

func (r *MysqlOrderRepository) List(ctx context.Context, userID int64, page, pageSize int32) ([]domain.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&OrderModel{})
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count orders")
	}

	offset := pageSize * (page - 1)
	var models []OrderModel
	err := query.Order("created_at DESC").
		Limit(int(pageSize)).Offset(int(offset)).
		Find(&models).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list orders")
	}

	orders := make([]domain.Order, 0, len(models))
	for i := range models {
		orders = append(orders, *toDomainOrder(&models[i], nil))
	}
	return orders, total, nil
}

// UpdateStatusBySn 是管理通道，只校验存在性，不做状态机检查。
func (r *MysqlOrderRepository) UpdateStatusBySn(ctx context.Context, orderSn string, status domain.Status) error {
	var model OrderModel
	err := r.db.WithContext(ctx).Select("id").Where("order_sn = ?", orderSn).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return errors.Wrap(err, "find order for status update")
	}

	err = r.db.WithContext(ctx).Model(&OrderModel{}).
		Where("id = ?", model.ID).
		Update("status", string(status)).Error
	return errors.Wrap(err, "update order status")
}

// CancelIfUnpaid 用一条受条件保护的 UPDATE 完成"检查再流转"，
// 消息层不保证顺序，并发的支付确认靠这条语句与补偿互斥。
func (r *MysqlOrderRepository) CancelIfUnpaid(ctx context.Context, orderSn string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&OrderModel{}).
		Where("order_sn = ? AND status = ?", orderSn, string(domain.StatusUnpaid)).
		Update("status", string(domain.StatusCancelled))
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "cancel order")
	}
	return res.RowsAffected > 0, nil
}
