package db

import (
	"gorm.io/gorm"

	"github.com/greenbasket/engine/services/lifecycle/db/model"
)

type Database struct {
	ORM *gorm.DB
}

func (db Database) Initialize() error {
	return db.ORM.AutoMigrate(
		&model.Order{},
		&model.OrderItem{},
		&model.Subscription{},
		&model.SubscriptionItem{},
		&model.Address{},
		&model.Product{},
	)
}
