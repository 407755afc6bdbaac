// internal/order/infrastructure/mysql.go
package infrastructure

import (
	"fmt"

	"mall/internal/pkg/config"

	sqldriver "github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenMysql 打开数据库连接并迁移表结构。
func OpenMysql(cfg config.MysqlConfig) (*gorm.DB, error) {
	dsnCfg := sqldriver.NewConfig()
	dsnCfg.User = cfg.User
	dsnCfg.Passwd = cfg.Password
	dsnCfg.Net = "tcp"
	dsnCfg.Addr = cfg.Addr()
	dsnCfg.DBName = cfg.DBName
	dsnCfg.ParseTime = true
	dsnCfg.Params = map[string]string{"charset": "utf8mb4"}

	db, err := gorm.Open(gormmysql.Open(dsnCfg.FormatDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql at %s: %w", cfg.Addr(), err)
	}

	if err := db.AutoMigrate(&OrderModel{}, &OrderGoodsModel{}, &ShoppingCartModel{}); err != nil {
		return nil, fmt.Errorf("failed to migrate order tables: %w", err)
	}
	return db, nil
}
