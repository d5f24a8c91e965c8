package repository

type Repositories struct {
	Entity       EntityRepository
	Notification NotificationRepository
}

// NewRepositories builds the stores once per process; services share them by
// reference.
func NewRepositories() *Repositories {
	return &Repositories{
		Entity:       NewEntityRepository(),
		Notification: NewNotificationRepository(),
	}
}
