package guide

import (
	"strings"

	"gorm.io/gorm"

	"horse.fit/guia/internal/db"
	"horse.fit/guia/internal/language"
	"horse.fit/guia/internal/repository"
)

// whereTextMatches narrows a query to rows whose reference column resolves,
// in the given language, to text containing the search term. One subquery
// against the translation store, no per-row lookups.
func whereTextMatches(tx *gorm.DB, column, lang, term string) *gorm.DB {
	sub := tx.Session(&gorm.Session{NewDB: true}).
		Model(&db.Translation{}).
		Select("reference_id").
		Where("language_code = ? AND LOWER(text_content) LIKE ?", lang, "%"+strings.ToLower(term)+"%")
	return tx.Where(column+" IN (?)", sub)
}

func searchLanguage(req repository.PageRequest) string {
	if lang, ok := filterString(req.Filters, "searchLang"); ok {
		if code := language.NormalizeCode(lang); code != "" {
			return code
		}
	}
	return language.DefaultCode
}

func citySearchScope(tx *gorm.DB, req repository.PageRequest) *gorm.DB {
	if state, ok := filterString(req.Filters, "state"); ok {
		tx = tx.Where("state = ?", strings.ToUpper(strings.TrimSpace(state)))
	}
	if capital, ok := filterBool(req.Filters, "isCapital"); ok {
		tx = tx.Where("is_capital = ?", capital)
	}
	if req.Search != "" {
		tx = whereTextMatches(tx, "name_text_ref_id", searchLanguage(req), req.Search)
	}
	return tx
}

func categorySearchScope(tx *gorm.DB, req repository.PageRequest) *gorm.DB {
	if slug, ok := filterString(req.Filters, "slug"); ok {
		tx = tx.Where("slug = ?", slug)
	}
	if req.Search != "" {
		tx = whereTextMatches(tx, "name_text_ref_id", searchLanguage(req), req.Search)
	}
	return tx
}

func locationSearchScope(tx *gorm.DB, req repository.PageRequest) *gorm.DB {
	if cityID, ok := filterInt64(req.Filters, "cityId"); ok {
		tx = tx.Where("city_id = ?", cityID)
	}
	if categoryID, ok := filterInt64(req.Filters, "categoryId"); ok {
		tx = tx.Where("category_id = ?", categoryID)
	}
	if req.Search != "" {
		tx = whereTextMatches(tx, "name_text_ref_id", searchLanguage(req), req.Search)
	}
	return tx
}

func routeSearchScope(tx *gorm.DB, req repository.PageRequest) *gorm.DB {
	if cityID, ok := filterInt64(req.Filters, "cityId"); ok {
		tx = tx.Where("city_id = ?", cityID)
	}
	if req.Search != "" {
		tx = whereTextMatches(tx, "name_text_ref_id", searchLanguage(req), req.Search)
	}
	return tx
}

func eventSearchScope(tx *gorm.DB, req repository.PageRequest) *gorm.DB {
	if cityID, ok := filterInt64(req.Filters, "cityId"); ok {
		tx = tx.Where("city_id = ?", cityID)
	}
	if free, ok := filterBool(req.Filters, "isFree"); ok {
		tx = tx.Where("is_free = ?", free)
	}
	if req.Search != "" {
		tx = whereTextMatches(tx, "name_text_ref_id", searchLanguage(req), req.Search)
	}
	return tx
}

func storySearchScope(tx *gorm.DB, req repository.PageRequest) *gorm.DB {
	if locationID, ok := filterInt64(req.Filters, "locationId"); ok {
		tx = tx.Where("location_id = ?", locationID)
	}
	if req.Search != "" {
		tx = whereTextMatches(tx, "title_text_ref_id", searchLanguage(req), req.Search)
	}
	return tx
}

func filterString(filters map[string]any, key string) (string, bool) {
	value, ok := filters[key]
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

func filterInt64(filters map[string]any, key string) (int64, bool) {
	switch v := filters[key].(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

func filterBool(filters map[string]any, key string) (bool, bool) {
	v, ok := filters[key].(bool)
	return v, ok
}
