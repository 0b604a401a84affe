package models

// All 需要自动迁移的模型
func All() []interface{} {
	return []interface{}{
		&AdminUser{},
		&Challenge{},
		&BrokerAccount{},
		&Evaluation{},
		&Purchase{},
	}
}
