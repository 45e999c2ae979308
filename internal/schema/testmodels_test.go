package schema

import (
	"database/sql"
	"time"
)

type Product struct {
	Id    int `db:",key,identity"`
	Name  string
	Price float64
}

func (Product) TableName() string { return "Products" }

type Address struct {
	Street string
	City   string `db:"CityName"`
}

type Owner struct {
	Id       int `db:",key"`
	Name     string
	Address  Address  // nested struct, not flattened into joins
	Pets     []string // collection, not a scalar
	Internal string   `db:"-"`
}

func (Owner) TableName() string { return "Users" }

type Phone struct {
	Id     int `db:",key"`
	CarId  int
	Number string
}

type Status int

type Car struct {
	Id        int            `db:",key,identity"`
	Name      string         `db:"CarName,order=1"`
	OwnerId   int            `db:",order=2"`
	Note      sql.NullString `db:",noupdate"`
	Secret    string         `db:",noselect"`
	Modified  time.Time      `db:",updatedat,utc,offset=2"`
	State     Status         `db:",status,deleted=3"`
	Owner     *Owner         `join:"left,key=OwnerId,ref=Id,alias=o"`
	Phones    []Phone        `join:"inner,key=Id,ref=CarId,table=Phones"`
	Computed  *Owner         // navigation without join metadata
	Unmapped  int            `db:"-"`
	internal  int
}

func (Car) TableName() string   { return "Cars" }
func (Car) TableSchema() string { return "dbo" }

type Timestamps struct {
	Created time.Time
}

type Article struct {
	Timestamps
	ID    int64
	Title string
}

type Audit struct {
	ID        int64
	CreatedBy string
}

type Revision struct {
	ID int64
}

// Document's own ID shadows the promoted Audit.ID.
type Document struct {
	Audit
	ID    int64 `db:",key,identity"`
	Title string
}

// Ambiguous promotes neither ID: Audit.ID and Revision.ID share a depth.
type Ambiguous struct {
	Audit
	Revision
	Title string
}

type CompositeKey struct {
	TenantID int    `db:"tenant_id,key"`
	Code     string `db:"code,key"`
	Revision int    `db:"revision,key,noupdate"`
	Label    string `db:"label"`
}
