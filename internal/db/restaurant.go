package db

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LocalizedName 保存餐厅的双语名称。
type LocalizedName struct {
	EN   string `json:"en"`
	ZhTW string `json:"zh-TW"`
}

// BusinessHour 描述某一天的营业时段，时间格式为 HH:MM。
type BusinessHour struct {
	Day       string `json:"day"`
	IsOpen    bool   `json:"isOpen"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Restaurant 定义了餐厅文档。评分聚合字段只由评论提交事务维护。
type Restaurant struct {
	ID               string         `gorm:"primaryKey;size:36" json:"id"`
	AppID            string         `gorm:"size:64;index:idx_restaurant_scope,priority:1;not null" json:"-"`
	Name             LocalizedName  `gorm:"embedded;embeddedPrefix:name_" json:"name"`
	NameLowerEN      string         `gorm:"index" json:"nameLowerEn"`
	Province         string         `gorm:"index:idx_restaurant_scope,priority:2" json:"province"`
	City             string         `gorm:"index:idx_restaurant_scope,priority:3" json:"city"`
	District         string         `json:"district"`
	StreetAddress    string         `json:"streetAddress"`
	FullAddress      string         `json:"fullAddress"`
	Category         string         `json:"category"`
	AvgSpending      int            `json:"avgSpending"`
	Phone            string         `json:"phone"`
	Website          string         `json:"website"`
	SeatingCapacity  string         `json:"seatingCapacity"`
	BusinessHours    []BusinessHour `gorm:"serializer:json" json:"businessHours"`
	ReservationModes []string       `gorm:"serializer:json" json:"reservationModes"`
	PaymentMethods   []string       `gorm:"serializer:json" json:"paymentMethods"`
	Facilities       []string       `gorm:"serializer:json" json:"facilities"`
	PhotoURLs        []string       `gorm:"serializer:json" json:"photoUrls"`
	ReviewCount      int            `json:"reviewCount"`
	TotalRatingSum   float64        `json:"totalRatingSum"`
	AverageRating    float64        `gorm:"index" json:"averageRating"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// BeforeCreate 为新文档分配 ID。
func (r *Restaurant) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Address joins the address parts that are set, falling back to FullAddress.
func (r Restaurant) Address() string {
	if strings.TrimSpace(r.FullAddress) != "" {
		return r.FullAddress
	}
	parts := make([]string, 0, 4)
	for _, part := range []string{r.Province, r.City, r.District, r.StreetAddress} {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " ")
}
