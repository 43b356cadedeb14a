package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ROLE_SUPER_ADMIN = "super_admin"
	ROLE_ORG_ADMIN   = "org_admin"
	ROLE_MANAGER     = "manager"
	ROLE_VIEWER      = "viewer"
)

type User struct {
	ID             uint       `gorm:"primaryKey" json:"-"`
	UUID           string     `gorm:"type:char(36);uniqueIndex" json:"id"`
	Email          string     `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,min=5,max=200"`
	Password       string     `gorm:"type:text" json:"-" validate:"required,min=6"`
	FullName       string     `gorm:"type:varchar(150)" json:"full_name" validate:"required,min=2,max=150"`
	Phone          string     `gorm:"type:varchar(50);default:null" json:"phone" validate:"max=50"`
	Role           string     `gorm:"type:varchar(50);default:'viewer'" json:"role" validate:"oneof=super_admin org_admin manager viewer"`
	OrganizationID uint       `gorm:"index" json:"-"`
	IsActive       bool       `gorm:"default:true" json:"is_active"`
	LastLoginAt    *time.Time `gorm:"type:timestamp;default:null" json:"last_login_at"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Organization Organization `gorm:"foreignKey:OrganizationID" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.UUID == "" {
		u.UUID = uuid.New().String()
	}
	return nil
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

// CreateUser builds a new user with a hashed password; the caller persists it.
func CreateUser(email, password, fullName, role string, orgID uint) (*User, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:          email,
		Password:       pw,
		FullName:       fullName,
		Role:           role,
		OrganizationID: orgID,
		IsActive:       true,
	}

	err = u.Validate()
	if err != nil {
		return nil, err
	}

	return u, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// CheckPassword verifies if the provided password matches the user's stored password
func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.Password)
}

// IsAdmin reports whether the user can manage their organization
func (u *User) IsAdmin() bool {
	return u.Role == ROLE_SUPER_ADMIN || u.Role == ROLE_ORG_ADMIN
}
