package core

import (
	"time"
)

type Product struct {
	Id    int `db:",key,identity"`
	Name  string
	Price float64
}

func (Product) TableName() string { return "Products" }

type Owner struct {
	Id   int `db:",key"`
	Name string
}

func (Owner) TableName() string { return "Users" }

type Phone struct {
	Id     int `db:",key"`
	CarId  int
	Number string
}

type Garage struct {
	Id   int
	Name string
}

type Extra struct {
	Code string
}

type Status int

const (
	StatusActive  Status = 1
	StatusDeleted Status = 3
)

type Car struct {
	Id       int       `db:",key,identity"`
	Name     string    `db:"CarName"`
	OwnerId  int
	Secret   string    `db:",noselect"`
	Modified time.Time `db:",updatedat,utc,offset=2"`
	State    Status    `db:",status,deleted=3"`
	Owner    *Owner    `join:"left,key=OwnerId,ref=Id,alias=o"`
	Phones   []Phone   `join:"inner,key=Id,ref=CarId,table=Phones"`
	Garage   *Garage   `join:"right,key=OwnerId,ref=Id,alias=g"`
	Extras   []Extra   `join:"cross"`
	Computed *Owner
}

func (Car) TableName() string { return "Cars" }

type CompositeKey struct {
	TenantID int    `db:"tenant_id,key"`
	Code     string `db:"code,key"`
	Revision int    `db:"revision,key,noupdate"`
	Label    string `db:"label"`
}

type Invoice struct {
	ID     int64 `db:",identity"`
	Number string
	Total  float64 `db:",noupdate"`
}

func (Invoice) TableName() string   { return "Invoices" }
func (Invoice) TableSchema() string { return "dbo" }

type Account struct {
	Id       int `db:",key,identity"`
	Login    string
	Password string
}

type KeyOnly struct {
	ID int
}

// fixedClock returns 2024-03-01T10:00:00Z.
func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
}

// Lot has fields whose bulk parameter names overlap: Code + "10" and
// Code1 + "0" are both Code10.
type Lot struct {
	Id    int `db:",key"`
	Code  string
	Code1 string
}

func (Lot) TableName() string { return "Lots" }
