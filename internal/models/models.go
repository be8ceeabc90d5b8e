package models

import (
	"time"
)

type UserRole string

const (
	RolePILabManager  UserRole = "PI_LAB_MANAGER"
	RolePostdocStaff  UserRole = "POSTDOC_STAFF"
	RoleGradStudent   UserRole = "GRAD_STUDENT"
	RoleUndergradTech UserRole = "UNDERGRAD_TECH"
)

type User struct {
	ID             string     `gorm:"primaryKey"       json:"id"`
	Email          string     `gorm:"unique;not null"  json:"email"`
	PasswordHash   string     `gorm:"not null"         json:"-"`
	FirstName      string     `gorm:"not null"         json:"first_name"`
	LastName       string     `gorm:"not null"         json:"last_name"`
	Role           UserRole   `gorm:"not null"         json:"role"`
	LabAffiliation string     `json:"lab_affiliation"`
	IsActive       bool       `gorm:"default:true"     json:"is_active"`
	LastActive     *time.Time `json:"last_active"`
	CreatedAt      time.Time  `json:"created_at"`
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"      json:"id"`
	Token     string    `gorm:"unique;not null" json:"token"`
	UserID    string    `gorm:"index;not null"  json:"user_id"`
	ExpiresAt time.Time `gorm:"not null"        json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type Equipment struct {
	ID               string    `gorm:"primaryKey"      json:"id"`
	Name             string    `gorm:"not null"        json:"name"`
	Model            string    `json:"model"`
	SerialNumber     string    `gorm:"unique"          json:"serial_number"`
	Location         string    `json:"location"`
	Description      string    `json:"description"`
	MaintenanceNotes string    `json:"maintenance_notes"`
	IsAvailable      bool      `gorm:"default:true"    json:"is_available"`
	RequiresTraining bool      `gorm:"default:false"   json:"requires_training"`
	BookingDuration  int       `gorm:"default:60"      json:"booking_duration"`
	CreatedAt        time.Time `json:"created_at"`
}

type BookingStatus string

const (
	BookingScheduled  BookingStatus = "SCHEDULED"
	BookingInProgress BookingStatus = "IN_PROGRESS"
	BookingCompleted  BookingStatus = "COMPLETED"
	BookingCancelled  BookingStatus = "CANCELLED"
)

// Booking reserves one piece of equipment for the half-open
// interval [StartTime, EndTime).
type Booking struct {
	ID               string        `gorm:"primaryKey"     json:"id"`
	EquipmentID      string        `gorm:"index;not null" json:"equipment_id"`
	UserID           string        `gorm:"index;not null" json:"user_id"`
	StartTime        time.Time     `gorm:"not null"       json:"start_time"`
	EndTime          time.Time     `gorm:"not null"       json:"end_time"`
	Status           BookingStatus `gorm:"not null;default:SCHEDULED" json:"status"`
	Purpose          string        `json:"purpose"`
	Notes            string        `json:"notes"`
	IsRecurring      bool          `gorm:"default:false"  json:"is_recurring"`
	RecurringPattern string        `json:"recurring_pattern"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

type Reagent struct {
	ID             string     `gorm:"primaryKey"   json:"id"`
	Name           string     `gorm:"not null"     json:"name"`
	CatalogNumber  string     `gorm:"index"        json:"catalog_number"`
	Supplier       string     `json:"supplier"`
	Quantity       float64    `gorm:"not null"     json:"quantity"`
	Unit           string     `gorm:"not null"     json:"unit"`
	MinQuantity    float64    `gorm:"default:0"    json:"min_quantity"`
	Location       string     `json:"location"`
	LotNumber      string     `json:"lot_number"`
	ExpirationDate *time.Time `json:"expiration_date"`
	Notes          string     `json:"notes"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (r *Reagent) LowStock() bool {
	return r.Quantity <= r.MinQuantity
}

type OrderStatus string

const (
	OrderRequested OrderStatus = "REQUESTED"
	OrderApproved  OrderStatus = "APPROVED"
	OrderOrdered   OrderStatus = "ORDERED"
	OrderReceived  OrderStatus = "RECEIVED"
	OrderRejected  OrderStatus = "REJECTED"
)

type Order struct {
	ID            string      `gorm:"primaryKey"     json:"id"`
	ItemName      string      `gorm:"not null"       json:"item_name"`
	CatalogNumber string      `json:"catalog_number"`
	Supplier      string      `json:"supplier"`
	Quantity      float64     `gorm:"not null"       json:"quantity"`
	Unit          string      `json:"unit"`
	EstimatedCost float64     `json:"estimated_cost"`
	Status        OrderStatus `gorm:"not null;default:REQUESTED" json:"status"`
	Urgency       string      `json:"urgency"`
	RequestedByID string      `gorm:"index;not null" json:"requested_by_id"`
	ReagentID     *string     `gorm:"index"          json:"reagent_id"`
	Notes         string      `json:"notes"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "PLANNING"
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectOnHold    ProjectStatus = "ON_HOLD"
	ProjectCompleted ProjectStatus = "COMPLETED"
)

type Project struct {
	ID          string        `gorm:"primaryKey" json:"id"`
	Name        string        `gorm:"not null"   json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `gorm:"not null;default:PLANNING" json:"status"`
	Progress    int           `gorm:"default:0"  json:"progress"`
	StartDate   *time.Time    `json:"start_date"`
	EndDate     *time.Time    `json:"end_date"`
	OwnerID     string        `gorm:"index;not null" json:"owner_id"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type ProjectMember struct {
	ID        uint      `gorm:"primaryKey"                       json:"id"`
	ProjectID string    `gorm:"index:idx_member,unique;not null" json:"project_id"`
	UserID    string    `gorm:"index:idx_member,unique;not null" json:"user_id"`
	Role      string    `gorm:"default:MEMBER"                   json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type ProjectUpdate struct {
	ID        uint      `gorm:"primaryKey"     json:"id"`
	ProjectID string    `gorm:"index;not null" json:"project_id"`
	UserID    string    `gorm:"not null"       json:"user_id"`
	Content   string    `gorm:"not null"       json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Protocol struct {
	ID          string    `gorm:"primaryKey"     json:"id"`
	Title       string    `gorm:"not null"       json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Content     string    `gorm:"not null"       json:"content"`
	Version     int       `gorm:"default:1"      json:"version"`
	AuthorID    string    `gorm:"index;not null" json:"author_id"`
	IsShared    bool      `gorm:"default:false"  json:"is_shared"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
