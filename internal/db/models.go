package db

import (
	"time"

	"horse.fit/guia/internal/textref"
)

// Translation maps translations: one language's text for one reference slot.
// (reference_id, language_code) is unique; rows for other languages of the
// same slot share the reference_id.
type Translation struct {
	ID           int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ReferenceID  int64  `gorm:"column:reference_id;type:bigint;not null;uniqueIndex:ux_translations_ref_lang" json:"referenceId"`
	LanguageCode string `gorm:"column:language_code;type:varchar(8);not null;uniqueIndex:ux_translations_ref_lang" json:"languageCode"`
	TextContent  string `gorm:"column:text_content;type:text;not null" json:"textContent"`
}

func (Translation) TableName() string { return "translations" }

// City maps cities.
type City struct {
	ID                   int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	NameTextRefID        int64      `gorm:"column:name_text_ref_id;type:bigint;not null" json:"nameTextRefId"`
	DescriptionTextRefID *int64     `gorm:"column:description_text_ref_id;type:bigint" json:"descriptionTextRefId,omitempty"`
	State                string     `gorm:"column:state;type:varchar(2);not null" json:"state"`
	Country              string     `gorm:"column:country;type:varchar(2);not null;default:'BR'" json:"country"`
	IsCapital            bool       `gorm:"column:is_capital;not null;default:false" json:"isCapital"`
	Latitude             *float64   `gorm:"column:latitude;type:double precision" json:"latitude,omitempty"`
	Longitude            *float64   `gorm:"column:longitude;type:double precision" json:"longitude,omitempty"`
	IsDeleted            bool       `gorm:"column:is_deleted;not null;default:false" json:"isDeleted"`
	DeletedAt            *time.Time `gorm:"column:deleted_at" json:"deletedAt,omitempty"`
	CreatedAt            time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt            time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (City) TableName() string { return "cities" }

// Category maps categories. Categories are reference data and are hard-deleted.
type Category struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	NameTextRefID int64     `gorm:"column:name_text_ref_id;type:bigint;not null" json:"nameTextRefId"`
	Slug          string    `gorm:"column:slug;type:varchar(64);not null;unique" json:"slug"`
	SortOrder     int       `gorm:"column:sort_order;not null;default:0" json:"sortOrder"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Category) TableName() string { return "categories" }

// Location maps locations: a visitable point inside a city.
type Location struct {
	ID                   int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CityID               int64      `gorm:"column:city_id;type:bigint;not null;index" json:"cityId"`
	City                 *City      `gorm:"foreignKey:CityID" json:"city,omitempty"`
	CategoryID           *int64     `gorm:"column:category_id;type:bigint;index" json:"categoryId,omitempty"`
	NameTextRefID        int64      `gorm:"column:name_text_ref_id;type:bigint;not null" json:"nameTextRefId"`
	DescriptionTextRefID *int64     `gorm:"column:description_text_ref_id;type:bigint" json:"descriptionTextRefId,omitempty"`
	AddressTextRefID     *int64     `gorm:"column:address_text_ref_id;type:bigint" json:"addressTextRefId,omitempty"`
	AudioURLRefID        *int64     `gorm:"column:audio_url_ref_id;type:bigint" json:"audioUrlRefId,omitempty"`
	Latitude             *float64   `gorm:"column:latitude;type:double precision" json:"latitude,omitempty"`
	Longitude            *float64   `gorm:"column:longitude;type:double precision" json:"longitude,omitempty"`
	IsDeleted            bool       `gorm:"column:is_deleted;not null;default:false" json:"isDeleted"`
	DeletedAt            *time.Time `gorm:"column:deleted_at" json:"deletedAt,omitempty"`
	CreatedAt            time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt            time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Location) TableName() string { return "locations" }

// Route maps routes: an ordered walk through a city's locations.
type Route struct {
	ID                   int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CityID               int64      `gorm:"column:city_id;type:bigint;not null;index" json:"cityId"`
	NameTextRefID        int64      `gorm:"column:name_text_ref_id;type:bigint;not null" json:"nameTextRefId"`
	DescriptionTextRefID *int64     `gorm:"column:description_text_ref_id;type:bigint" json:"descriptionTextRefId,omitempty"`
	DistanceKM           *float64   `gorm:"column:distance_km;type:double precision" json:"distanceKm,omitempty"`
	DurationMinutes      *int       `gorm:"column:duration_minutes" json:"durationMinutes,omitempty"`
	IsDeleted            bool       `gorm:"column:is_deleted;not null;default:false" json:"isDeleted"`
	DeletedAt            *time.Time `gorm:"column:deleted_at" json:"deletedAt,omitempty"`
	CreatedAt            time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt            time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Route) TableName() string { return "routes" }

// Event maps events.
type Event struct {
	ID                   int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CityID               int64      `gorm:"column:city_id;type:bigint;not null;index" json:"cityId"`
	NameTextRefID        int64      `gorm:"column:name_text_ref_id;type:bigint;not null" json:"nameTextRefId"`
	DescriptionTextRefID *int64     `gorm:"column:description_text_ref_id;type:bigint" json:"descriptionTextRefId,omitempty"`
	StartsAt             *time.Time `gorm:"column:starts_at" json:"startsAt,omitempty"`
	EndsAt               *time.Time `gorm:"column:ends_at" json:"endsAt,omitempty"`
	IsFree               bool       `gorm:"column:is_free;not null;default:false" json:"isFree"`
	IsDeleted            bool       `gorm:"column:is_deleted;not null;default:false" json:"isDeleted"`
	DeletedAt            *time.Time `gorm:"column:deleted_at" json:"deletedAt,omitempty"`
	CreatedAt            time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt            time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Event) TableName() string { return "events" }

// Story maps stories: narrated content attached to a location.
type Story struct {
	ID                   int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	LocationID           *int64     `gorm:"column:location_id;type:bigint;index" json:"locationId,omitempty"`
	TitleTextRefID       int64      `gorm:"column:title_text_ref_id;type:bigint;not null" json:"titleTextRefId"`
	BodyTextRefID        *int64     `gorm:"column:body_text_ref_id;type:bigint" json:"bodyTextRefId,omitempty"`
	AudioURLRefID        *int64     `gorm:"column:audio_url_ref_id;type:bigint" json:"audioUrlRefId,omitempty"`
	AudioDurationSeconds *int       `gorm:"column:audio_duration_seconds" json:"audioDurationSeconds,omitempty"`
	DetectedLanguage     *string    `gorm:"column:detected_language;type:varchar(8)" json:"detectedLanguage,omitempty"`
	IsDeleted            bool       `gorm:"column:is_deleted;not null;default:false" json:"isDeleted"`
	DeletedAt            *time.Time `gorm:"column:deleted_at" json:"deletedAt,omitempty"`
	CreatedAt            time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt            time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Story) TableName() string { return "stories" }

func init() {
	textref.MustRegister(City{}, "nameTextRefId", "descriptionTextRefId")
	textref.MustRegister(Category{}, "nameTextRefId")
	textref.MustRegister(Location{}, "nameTextRefId", "descriptionTextRefId", "addressTextRefId", "audioUrlRefId")
	textref.MustRegister(Route{}, "nameTextRefId", "descriptionTextRefId")
	textref.MustRegister(Event{}, "nameTextRefId", "descriptionTextRefId")
	textref.MustRegister(Story{}, "titleTextRefId", "bodyTextRefId", "audioUrlRefId")
}

func autoMigrateModels() []any {
	return []any{
		&Translation{},
		&City{},
		&Category{},
		&Location{},
		&Route{},
		&Event{},
		&Story{},
	}
}
