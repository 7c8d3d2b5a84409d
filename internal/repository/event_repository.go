package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rallyhq/rally-core/internal/model"
)

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
	Update(ctx context.Context, event *model.Event) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]model.Event, error)
	// ReplaceTypes sets the event's type tags to exactly the given set.
	ReplaceTypes(ctx context.Context, event *model.Event, types []model.Type) error
	// AddCommentCount / AddLikeCount adjust the denormalized counters,
	// floored at zero.
	AddCommentCount(ctx context.Context, id uuid.UUID, delta int64) error
	AddLikeCount(ctx context.Context, id uuid.UUID, delta int64) error
	SetCounts(ctx context.Context, id uuid.UUID, nbLikes, nbComments int64) error
	AddPictures(ctx context.Context, eventID uuid.UUID, photos []string) error
	DeletePictures(ctx context.Context, eventID uuid.UUID) error
	ClearTypes(ctx context.Context, event *model.Event) error
}

type GormEventRepository struct {
	db *gorm.DB
}

func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

func (r *GormEventRepository) Create(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Omit("Types", "Pictures", "Profile", "Address").Create(event).Error
}

func (r *GormEventRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	var e model.Event
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// Update persists all scalar fields, zero values included.
func (r *GormEventRepository) Update(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).
		Omit("Types", "Pictures", "Profile", "Address").
		Save(event).
		Error
}

func (r *GormEventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Event{}, "id = ?", id).Error
}

func (r *GormEventRepository) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]model.Event, error) {
	var events []model.Event
	if err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("created_at ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *GormEventRepository) ReplaceTypes(ctx context.Context, event *model.Event, types []model.Type) error {
	return r.db.WithContext(ctx).Model(event).Association("Types").Replace(types)
}

func (r *GormEventRepository) ClearTypes(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Model(event).Association("Types").Clear()
}

func (r *GormEventRepository) AddCommentCount(ctx context.Context, id uuid.UUID, delta int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("id = ?", id).
		Update("nb_comments", flooredAdd("nb_comments", delta)).
		Error
}

func (r *GormEventRepository) AddLikeCount(ctx context.Context, id uuid.UUID, delta int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("id = ?", id).
		Update("nb_likes", flooredAdd("nb_likes", delta)).
		Error
}

func (r *GormEventRepository) SetCounts(ctx context.Context, id uuid.UUID, nbLikes, nbComments int64) error {
	return r.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("id = ?", id).
		Updates(map[string]any{"nb_likes": nbLikes, "nb_comments": nbComments}).
		Error
}

func (r *GormEventRepository) AddPictures(ctx context.Context, eventID uuid.UUID, photos []string) error {
	if len(photos) == 0 {
		return nil
	}
	pictures := make([]model.EventPicture, 0, len(photos))
	for _, photo := range photos {
		pictures = append(pictures, model.EventPicture{EventID: eventID, Photo: photo})
	}
	return r.db.WithContext(ctx).Create(&pictures).Error
}

func (r *GormEventRepository) DeletePictures(ctx context.Context, eventID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.EventPicture{}, "event_id = ?", eventID).Error
}

type AddressRepository interface {
	Create(ctx context.Context, address *model.Address) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Address, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type GormAddressRepository struct {
	db *gorm.DB
}

func NewGormAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

func (r *GormAddressRepository) Create(ctx context.Context, address *model.Address) error {
	return r.db.WithContext(ctx).Create(address).Error
}

func (r *GormAddressRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Address, error) {
	var a model.Address
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *GormAddressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Address{}, "id = ?", id).Error
}

type TypeRepository interface {
	Create(ctx context.Context, t *model.Type) error
	GetByIDs(ctx context.Context, ids []int64) ([]model.Type, error)
	List(ctx context.Context) ([]model.Type, error)
}

type GormTypeRepository struct {
	db *gorm.DB
}

func NewGormTypeRepository(db *gorm.DB) *GormTypeRepository {
	return &GormTypeRepository{db: db}
}

func (r *GormTypeRepository) Create(ctx context.Context, t *model.Type) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *GormTypeRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Type, error) {
	var types []model.Type
	if len(ids) == 0 {
		return types, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

func (r *GormTypeRepository) List(ctx context.Context) ([]model.Type, error) {
	var types []model.Type
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}
