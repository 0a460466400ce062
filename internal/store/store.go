package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"academy-booking-client/internal/model"
)

// Session is the persisted session record. A zero value means logged out.
type Session struct {
	Username     string
	AccessToken  string
	RefreshToken string
}

// Empty reports whether no session is persisted.
func (s Session) Empty() bool {
	return s.Username == "" && s.AccessToken == "" && s.RefreshToken == ""
}

// Store defines the interface for all local persistence operations.
type Store interface {
	LoadSession(ctx context.Context) (Session, error)
	SaveSession(ctx context.Context, sess Session) error
	ClearSession(ctx context.Context) error
	AccessToken(ctx context.Context) (string, error)

	UpsertSubscription(ctx context.Context, sub model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) error
	ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error)

	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying handle for collaborators that query directly.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

var sessionKeys = []string{model.KeyAccessToken, model.KeyRefreshToken, model.KeyUsername}

// LoadSession reads the persisted credentials. Missing keys simply leave
// the corresponding field empty.
func (s *gormStore) LoadSession(ctx context.Context) (Session, error) {
	var creds []model.Credential
	if err := s.db.WithContext(ctx).Where("key IN ?", sessionKeys).Find(&creds).Error; err != nil {
		return Session{}, err
	}

	var sess Session
	for _, c := range creds {
		switch c.Key {
		case model.KeyAccessToken:
			sess.AccessToken = c.Value
		case model.KeyRefreshToken:
			sess.RefreshToken = c.Value
		case model.KeyUsername:
			sess.Username = c.Value
		}
	}
	return sess, nil
}

// SaveSession replaces the whole session record in one transaction. All
// writes go through here so there is never a partially updated session.
func (s *gormStore) SaveSession(ctx context.Context, sess Session) error {
	creds := []model.Credential{
		{Key: model.KeyAccessToken, Value: sess.AccessToken},
		{Key: model.KeyRefreshToken, Value: sess.RefreshToken},
		{Key: model.KeyUsername, Value: sess.Username},
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&creds).Error
	})
}

// ClearSession removes all three credentials together.
func (s *gormStore) ClearSession(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where("key IN ?", sessionKeys).Delete(&model.Credential{}).Error
	})
}

// AccessToken returns the persisted access token, or "" when logged out.
func (s *gormStore) AccessToken(ctx context.Context) (string, error) {
	var cred model.Credential
	err := s.db.WithContext(ctx).First(&cred, "key = ?", model.KeyAccessToken).Error
	if err == gorm.ErrRecordNotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return cred.Value, nil
}

// UpsertSubscription creates or refreshes a push subscription.
func (s *gormStore) UpsertSubscription(ctx context.Context, sub model.PushSubscription) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
	}).Create(&sub).Error
}

// DeleteSubscription removes a push subscription by endpoint.
func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error
}

// ListSubscriptions returns every stored push subscription.
func (s *gormStore) ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}
