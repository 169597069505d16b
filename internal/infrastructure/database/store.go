package database

import (
	"context"
	"errors"
	"fmt"

	"recipe-manager/internal/pkg/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// 缺少每份重量時的估計值
	defaultServingWeightG = 200
	gramsUnit             = "g"
)

// Store 食譜持久化
type Store struct {
	db *gorm.DB
}

// NewStore 創建食譜儲存
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// SaveParsedRecipe 在單一交易中寫入食譜、食材、關聯與步驟
func (s *Store) SaveParsedRecipe(ctx context.Context, r common.ParsedRecipe, category string) (uuid.UUID, error) {
	if !r.HasName() {
		return uuid.Nil, common.ErrNoRecipeName
	}
	if category == "" {
		category = r.Category
	}

	recipe := newRecipeRow(r, category)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return fmt.Errorf("insert recipe: %w", err)
		}

		for i, ing := range r.Ingredients {
			ingredient := Ingredient{
				ID:                 uuid.New(),
				NameIT:             ing.Name,
				NameEN:             ing.Name,
				CookedWeightFactor: 1.0,
				DefaultUnit:        ing.Unit,
			}
			if err := tx.Create(&ingredient).Error; err != nil {
				return fmt.Errorf("insert ingredient %q: %w", ing.Name, err)
			}

			link := newIngredientLink(recipe.ID, ingredient.ID, ing, i)
			if err := tx.Omit(clause.Associations).Create(&link).Error; err != nil {
				return fmt.Errorf("link ingredient %q: %w", ing.Name, err)
			}
		}

		for i, text := range r.Steps {
			step := RecipeStep{
				ID:            uuid.New(),
				RecipeID:      recipe.ID,
				StepNumber:    i + 1,
				InstructionIT: text,
				InstructionEN: text,
			}
			if err := tx.Create(&step).Error; err != nil {
				return fmt.Errorf("insert step %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return recipe.ID, nil
}

// ListRecipes 依名稱排序列出食譜；category 為空時列出全部
func (s *Store) ListRecipes(ctx context.Context, category string) ([]Recipe, error) {
	var recipes []Recipe
	q := s.db.WithContext(ctx).Order("name_it")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Find(&recipes).Error; err != nil {
		return nil, err
	}
	return recipes, nil
}

// GetRecipe 取得食譜與依序排列的食材、步驟
func (s *Store) GetRecipe(ctx context.Context, id uuid.UUID) (*Recipe, error) {
	var recipe Recipe
	err := s.db.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order") }).
		Preload("Ingredients.Ingredient").
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("step_number") }).
		First(&recipe, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// SetRecipeImage 更新食譜圖片網址
func (s *Store) SetRecipeImage(ctx context.Context, id uuid.UUID, imageURL string) error {
	res := s.db.WithContext(ctx).Model(&Recipe{}).Where("id = ?", id).Update("image_url", imageURL)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// newRecipeRow 每份營養值換算為每 100g：kcal 截斷，其餘四捨五入到兩位
func newRecipeRow(r common.ParsedRecipe, category string) Recipe {
	n := r.Nutrition
	weight := defaultServingWeightG
	if n.ServingWeightG != nil && *n.ServingWeightG > 0 {
		weight = *n.ServingWeightG
	}
	factor := 100 / float64(weight)

	nameEN := r.NameIT
	if r.NameEN != nil && *r.NameEN != "" {
		nameEN = *r.NameEN
	}

	var description *string
	if r.SourceURL != nil && *r.SourceURL != "" {
		description = common.StringPtr("Imported from " + *r.SourceURL)
	}

	var fiber *float64
	if n.Fiber != nil {
		fiber = common.Float64Ptr(common.Round2(*n.Fiber * factor))
	}

	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}

	return Recipe{
		ID:             uuid.New(),
		NameIT:         r.NameIT,
		NameEN:         nameEN,
		Slug:           Slugify(r.NameIT),
		DescriptionIT:  description,
		Category:       category,
		SourceURL:      r.SourceURL,
		PrepTimeMin:    r.PrepTimeMin,
		CookTimeMin:    r.CookTimeMin,
		TotalTimeMin:   r.TotalTimeMin(),
		Servings:       r.Servings,
		Difficulty:     string(r.Difficulty),
		KcalPer100g:    int(float64(n.Kcal) * factor),
		KcalPerServing: n.Kcal,
		ProteinPer100g: common.Round2(n.Protein * factor),
		CarbsPer100g:   common.Round2(n.Carbs * factor),
		FatPer100g:     common.Round2(n.Fat * factor),
		FiberPer100g:   fiber,
		ServingWeightG: weight,
		ProteinSource:  DetectProteinSource(r.NameIT),
		Tags:           tags,
		IsPublished:    false,
	}
}

// newIngredientLink 有公克數時以公克記錄數量
func newIngredientLink(recipeID, ingredientID uuid.UUID, ing common.ParsedIngredient, order int) RecipeIngredient {
	qty, unit := ing.Quantity, ing.Unit
	if ing.Grams != nil && *ing.Grams != 0 {
		qty, unit = *ing.Grams, gramsUnit
	}

	var notes *string
	if ing.OriginalText != ing.Name {
		notes = common.StringPtr(ing.OriginalText)
	}

	return RecipeIngredient{
		ID:           uuid.New(),
		RecipeID:     recipeID,
		IngredientID: ingredientID,
		Quantity:     qty,
		Unit:         unit,
		NotesIT:      notes,
		SortOrder:    order,
	}
}
