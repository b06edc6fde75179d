package repository

import "gorm.io/gorm"

// Repositories bundles all repository implementations
type Repositories struct {
	Plot         PlotRepository
	Receipt      ReceiptRepository
	User         UserRepository
	Notification NotificationRepository
}

// NewRepositories creates all repositories backed by the given database handle
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Plot:         NewPlotRepository(db),
		Receipt:      NewReceiptRepository(db),
		User:         NewUserRepository(db),
		Notification: NewNotificationRepository(db),
	}
}
