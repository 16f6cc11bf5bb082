package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"gripelogger/backend/internal/config"
	"gripelogger/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrDuplicateEmail is returned by CreateUser when the email is taken.
var ErrDuplicateEmail = errors.New("email already registered")

// Storage is the persistence surface the handlers, hub, and admin CLI
// depend on. *Service is the production implementation; tests supply
// testify mocks.
type Storage interface {
	// Users and roles
	CreateUser(user *models.User, role models.Role) error
	GetUserByID(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUsersByIDs(ids []string) ([]models.User, error)
	GetRoleForUser(userID string) (models.Role, error)
	SetRoleForUser(userID string, role models.Role) error

	// Complaints
	CreateComplaint(complaint *models.Complaint) error
	GetComplaintByID(id string) (*models.Complaint, error)
	ListComplaints(studentID string, status models.Status) ([]models.Complaint, error)
	UpdateComplaint(complaint *models.Complaint) error
	DeleteComplaint(id string) error
	CountComplaintsByStatus() (map[models.Status]int64, error)

	// Comments
	CreateComment(comment *models.Comment) error
	ListComments(complaintID string) ([]models.Comment, error)

	// Attachments
	CreateAttachment(att *models.Attachment) error
	GetAttachmentByID(id string) (*models.Attachment, error)
	ListAttachments(complaintID string) ([]models.Attachment, error)
	DeleteAttachment(id string) error

	// Sessions (Redis)
	SaveSession(sessionID, userID string, ttl time.Duration) error
	SessionExists(sessionID string) (bool, error)
	DeleteSession(sessionID string) error

	// Dashboard notifications (Redis pub/sub)
	PublishEvent(ev models.Event) error
}

// Service implements Storage on top of PostgreSQL (via GORM) and Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// CreateUser writes the user and its role row in one transaction so a
// user can never exist without a resolvable role.
func (s *Service) CreateUser(user *models.User, role models.Role) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateEmail
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(&models.UserRole{UserID: user.ID, Role: role}).Error
	})
}

func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUsersByIDs loads the profile rows for a set of user IDs. Used to
// resolve comment authors with one query instead of one per comment.
func (s *Service) GetUsersByIDs(ids []string) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := s.DB.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Service) GetRoleForUser(userID string) (models.Role, error) {
	var ur models.UserRole
	err := s.DB.Where("user_id = ?", userID).First(&ur).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return ur.Role, nil
}

// SetRoleForUser upserts the single role row of a user. Used by the
// admin CLI to promote accounts; self-service signup always writes
// student.
func (s *Service) SetRoleForUser(userID string, role models.Role) error {
	var ur models.UserRole
	err := s.DB.Where("user_id = ?", userID).First(&ur).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.DB.Create(&models.UserRole{UserID: userID, Role: role}).Error
	}
	if err != nil {
		return err
	}
	return s.DB.Model(&models.UserRole{}).
		Where("user_id = ?", userID).
		Update("role", role).Error
}

func (s *Service) CreateComplaint(complaint *models.Complaint) error {
	if err := s.DB.Create(complaint).Error; err != nil {
		log.Printf("ERROR: Failed to create complaint for student %s: %v", complaint.StudentID, err)
		return err
	}
	return nil
}

func (s *Service) GetComplaintByID(id string) (*models.Complaint, error) {
	var complaint models.Complaint
	err := s.DB.Where("id = ?", id).First(&complaint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to get complaint %s: %v", id, err)
		return nil, err
	}
	return &complaint, nil
}

// ListComplaints returns complaints ordered newest first. An empty
// studentID means all students (admin scope); an empty status means no
// status filter.
func (s *Service) ListComplaints(studentID string, status models.Status) ([]models.Complaint, error) {
	var complaints []models.Complaint

	q := s.DB.Order("created_at desc")
	if studentID != "" {
		q = q.Where("student_id = ?", studentID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	if err := q.Find(&complaints).Error; err != nil {
		log.Printf("ERROR: Failed to list complaints: %v", err)
		return nil, err
	}
	return complaints, nil
}

func (s *Service) UpdateComplaint(complaint *models.Complaint) error {
	return s.DB.Save(complaint).Error
}

func (s *Service) DeleteComplaint(id string) error {
	return s.DB.Where("id = ?", id).Delete(&models.Complaint{}).Error
}

// CountComplaintsByStatus backs the admin dashboard stat cards.
func (s *Service) CountComplaintsByStatus() (map[models.Status]int64, error) {
	type row struct {
		Status models.Status
		N      int64
	}
	var rows []row
	err := s.DB.Model(&models.Complaint{}).
		Select("status, count(*) as n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		log.Printf("ERROR: Failed to count complaints by status: %v", err)
		return nil, err
	}

	counts := map[models.Status]int64{
		models.StatusPending:    0,
		models.StatusInProgress: 0,
		models.StatusResolved:   0,
	}
	for _, r := range rows {
		counts[r.Status] = r.N
	}
	return counts, nil
}

func (s *Service) CreateComment(comment *models.Comment) error {
	if err := s.DB.Create(comment).Error; err != nil {
		log.Printf("ERROR: Failed to create comment on complaint %s: %v", comment.ComplaintID, err)
		return err
	}
	return nil
}

// ListComments returns the thread ascending by creation time.
func (s *Service) ListComments(complaintID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.DB.Where("complaint_id = ?", complaintID).
		Order("created_at asc").
		Find(&comments).Error
	if err != nil {
		log.Printf("ERROR: Failed to list comments for complaint %s: %v", complaintID, err)
		return nil, err
	}
	return comments, nil
}

func (s *Service) CreateAttachment(att *models.Attachment) error {
	if err := s.DB.Create(att).Error; err != nil {
		log.Printf("ERROR: Failed to record attachment %s: %v", att.FileName, err)
		return err
	}
	return nil
}

func (s *Service) GetAttachmentByID(id string) (*models.Attachment, error) {
	var att models.Attachment
	err := s.DB.Where("id = ?", id).First(&att).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &att, nil
}

func (s *Service) ListAttachments(complaintID string) ([]models.Attachment, error) {
	var atts []models.Attachment
	err := s.DB.Where("complaint_id = ?", complaintID).
		Order("created_at desc").
		Find(&atts).Error
	if err != nil {
		log.Printf("ERROR: Failed to list attachments for complaint %s: %v", complaintID, err)
		return nil, err
	}
	return atts, nil
}

func (s *Service) DeleteAttachment(id string) error {
	return s.DB.Where("id = ?", id).Delete(&models.Attachment{}).Error
}

// SaveSession records an issued token's session key so sign-out can
// revoke it before expiry.
func (s *Service) SaveSession(sessionID, userID string, ttl time.Duration) error {
	return s.Redis.Set(s.Ctx, config.SessionKeyPrefix+sessionID, userID, ttl).Err()
}

func (s *Service) SessionExists(sessionID string) (bool, error) {
	_, err := s.Redis.Get(s.Ctx, config.SessionKeyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) DeleteSession(sessionID string) error {
	return s.Redis.Del(s.Ctx, config.SessionKeyPrefix+sessionID).Err()
}

// PublishEvent fans a dashboard refresh hint out through Redis so every
// server instance's hub can deliver it to its connected clients.
func (s *Service) PublishEvent(ev models.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, config.NotifyChannelName, payload).Err()
}

// SubscribeEvents exposes the raw pub/sub subscription used by the
// notification hub listener.
func (s *Service) SubscribeEvents() *redis.PubSub {
	return s.Redis.Subscribe(s.Ctx, config.NotifyChannelName)
}
