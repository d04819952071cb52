package models

import (
	"encoding/json"
	"time"
)

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"size:100;not null"        json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"size:20;not null;default:User" json:"role"`
	IsActive     bool      `gorm:"default:true"             json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// RefreshToken is the persisted, revocable half of a token pair. A row is
// valid while Revoked is false and ExpiresAt is in the future.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"              json:"id"`
	Token     string    `gorm:"size:500;uniqueIndex;not null" json:"token"`
	UserID    uint      `gorm:"index;not null"          json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"not null"                json:"expires_at"`
	Revoked   bool      `gorm:"default:false"           json:"revoked"`
}

type Category struct {
	ID        uint      `gorm:"primaryKey"              json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `gorm:"default:true"            json:"is_active"`
}

type Product struct {
	ID          uint      `gorm:"primaryKey"            json:"id"`
	Name        string    `gorm:"size:200;not null"     json:"name"`
	Price       float64   `gorm:"not null"              json:"price"`
	ColorsJSON  string    `gorm:"column:colors_json;type:text" json:"-"`
	TagsJSON    string    `gorm:"column:tags_json;type:text"   json:"-"`
	RatingRate  float64   `gorm:"default:0"             json:"-"`
	RatingCount int       `gorm:"default:0"             json:"-"`
	CategoryID  uint      `gorm:"index;not null"        json:"category_id"`
	UploaderID  uint      `gorm:"not null"              json:"uploader_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	IsActive    bool      `gorm:"default:true"          json:"is_active"`

	Category Category `gorm:"foreignKey:CategoryID" json:"-"`
	Uploader User     `gorm:"foreignKey:UploaderID" json:"-"`
}

// Colors decodes the JSON text column; an empty column yields an empty slice.
func (p *Product) Colors() []string {
	return decodeList(p.ColorsJSON)
}

func (p *Product) SetColors(colors []string) {
	p.ColorsJSON = encodeList(colors)
}

func (p *Product) Tags() []string {
	return decodeList(p.TagsJSON)
}

func (p *Product) SetTags(tags []string) {
	p.TagsJSON = encodeList(tags)
}

func decodeList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return []string{}
	}
	return out
}

func encodeList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	data, err := json.Marshal(items)
	if err != nil {
		return ""
	}
	return string(data)
}
