package database

// Storage is the interface the router and handlers depend on
type Storage interface {
	Init() error
	Close() error
	GetDB() interface{}
	HealthCheck() error
}
