package domain

import "time"

type Address struct {
	ID          int64
	UserID      int64
	Phone       string
	AddressType string
	Street      string
	City        string
	State       string
	ZipCode     string
	IsDefault   bool
	CreatedAt   time.Time
}
