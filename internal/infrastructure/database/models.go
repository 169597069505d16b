package database

import (
	"time"

	"github.com/google/uuid"
)

// Recipe 食譜主表，營養值以每 100g 儲存
type Recipe struct {
	ID             uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	NameIT         string             `gorm:"size:255;not null" json:"name_it"`
	NameEN         string             `gorm:"size:255" json:"name_en"`
	Slug           string             `gorm:"size:255;index" json:"slug"`
	DescriptionIT  *string            `gorm:"type:text" json:"description_it,omitempty"`
	DescriptionEN  *string            `gorm:"type:text" json:"description_en,omitempty"`
	Category       string             `gorm:"size:50;index" json:"category"`
	ImageURL       *string            `gorm:"size:512" json:"image_url,omitempty"`
	SourceURL      *string            `gorm:"size:512" json:"source_url,omitempty"`
	PrepTimeMin    int                `json:"prep_time_min"`
	CookTimeMin    int                `json:"cook_time_min"`
	TotalTimeMin   int                `json:"total_time_min"`
	Servings       int                `json:"servings"`
	Difficulty     string             `gorm:"size:20" json:"difficulty"`
	KcalPer100g    int                `json:"kcal_per_100g"`
	KcalPerServing int                `json:"kcal_per_serving"`
	ProteinPer100g float64            `json:"protein_per_100g"`
	CarbsPer100g   float64            `json:"carbs_per_100g"`
	FatPer100g     float64            `json:"fat_per_100g"`
	FiberPer100g   *float64           `json:"fiber_per_100g,omitempty"`
	ServingWeightG int                `json:"serving_weight_g"`
	ProteinSource  string             `gorm:"size:30" json:"protein_source"`
	Tags           []string           `gorm:"serializer:json;type:text" json:"tags"`
	IsPublished    bool               `json:"is_published"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	Ingredients    []RecipeIngredient `gorm:"foreignKey:RecipeID" json:"ingredients,omitempty"`
	Steps          []RecipeStep       `gorm:"foreignKey:RecipeID" json:"steps,omitempty"`
}

// Ingredient 食材目錄
type Ingredient struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	USDAFdcID          *string   `gorm:"column:usda_fdc_id;size:20" json:"usda_fdc_id,omitempty"`
	NameIT             string    `gorm:"size:255;not null" json:"name_it"`
	NameEN             string    `gorm:"size:255" json:"name_en"`
	Category           *string   `gorm:"size:50" json:"category,omitempty"`
	KcalPer100g        int       `json:"kcal_per_100g"`
	ProteinPer100g     float64   `json:"protein_per_100g"`
	CarbsPer100g       float64   `json:"carbs_per_100g"`
	FatPer100g         float64   `json:"fat_per_100g"`
	FiberPer100g       *float64  `json:"fiber_per_100g,omitempty"`
	CookedWeightFactor float64   `json:"cooked_weight_factor"`
	DefaultUnit        string    `gorm:"size:20" json:"default_unit"`
	CreatedAt          time.Time `json:"created_at"`
}

// RecipeIngredient 食譜與食材的關聯
type RecipeIngredient struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RecipeID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"recipe_id"`
	IngredientID uuid.UUID  `gorm:"type:uuid;not null" json:"ingredient_id"`
	Ingredient   Ingredient `gorm:"foreignKey:IngredientID" json:"ingredient"`
	Quantity     float64    `json:"quantity"`
	Unit         string     `gorm:"size:20" json:"unit"`
	IsOptional   bool       `json:"is_optional"`
	NotesIT      *string    `gorm:"type:text" json:"notes_it,omitempty"`
	NotesEN      *string    `gorm:"type:text" json:"notes_en,omitempty"`
	SortOrder    int        `json:"sort_order"`
}

// RecipeStep 食譜步驟，從 1 開始編號
type RecipeStep struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RecipeID      uuid.UUID `gorm:"type:uuid;index;not null" json:"recipe_id"`
	StepNumber    int       `json:"step_number"`
	InstructionIT string    `gorm:"type:text;not null" json:"instruction_it"`
	InstructionEN string    `gorm:"type:text" json:"instruction_en"`
	ImageURL      *string   `gorm:"size:512" json:"image_url,omitempty"`
}
