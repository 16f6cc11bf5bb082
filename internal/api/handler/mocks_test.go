package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"time"

	"gripelogger/backend/internal/api/middleware"
	"gripelogger/backend/internal/auth"
	"gripelogger/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockStorage is a testify mock of the storage.Storage interface, so
// handler tests can script persistence behaviour per scenario.
type MockStorage struct {
	mock.Mock
}

// User operations
func (m *MockStorage) CreateUser(user *models.User, role models.Role) error {
	args := m.Called(user, role)
	return args.Error(0)
}

func (m *MockStorage) GetUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUsersByIDs(ids []string) ([]models.User, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockStorage) GetRoleForUser(userID string) (models.Role, error) {
	args := m.Called(userID)
	return args.Get(0).(models.Role), args.Error(1)
}

func (m *MockStorage) SetRoleForUser(userID string, role models.Role) error {
	args := m.Called(userID, role)
	return args.Error(0)
}

// Complaint operations
func (m *MockStorage) CreateComplaint(complaint *models.Complaint) error {
	args := m.Called(complaint)
	return args.Error(0)
}

func (m *MockStorage) GetComplaintByID(id string) (*models.Complaint, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockStorage) ListComplaints(studentID string, status models.Status) ([]models.Complaint, error) {
	args := m.Called(studentID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStorage) UpdateComplaint(complaint *models.Complaint) error {
	args := m.Called(complaint)
	return args.Error(0)
}

func (m *MockStorage) DeleteComplaint(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStorage) CountComplaintsByStatus() (map[models.Status]int64, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.Status]int64), args.Error(1)
}

// Comment operations
func (m *MockStorage) CreateComment(comment *models.Comment) error {
	args := m.Called(comment)
	return args.Error(0)
}

func (m *MockStorage) ListComments(complaintID string) ([]models.Comment, error) {
	args := m.Called(complaintID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

// Attachment operations
func (m *MockStorage) CreateAttachment(att *models.Attachment) error {
	args := m.Called(att)
	return args.Error(0)
}

func (m *MockStorage) GetAttachmentByID(id string) (*models.Attachment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attachment), args.Error(1)
}

func (m *MockStorage) ListAttachments(complaintID string) ([]models.Attachment, error) {
	args := m.Called(complaintID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Attachment), args.Error(1)
}

func (m *MockStorage) DeleteAttachment(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// Session operations
func (m *MockStorage) SaveSession(sessionID, userID string, ttl time.Duration) error {
	args := m.Called(sessionID, userID, ttl)
	return args.Error(0)
}

func (m *MockStorage) SessionExists(sessionID string) (bool, error) {
	args := m.Called(sessionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) DeleteSession(sessionID string) error {
	args := m.Called(sessionID)
	return args.Error(0)
}

// Notifications
func (m *MockStorage) PublishEvent(ev models.Event) error {
	args := m.Called(ev)
	return args.Error(0)
}

// MockBlobStore is a testify mock of the blobstore.Store interface.
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Save(path string, data []byte) error {
	args := m.Called(path, data)
	return args.Error(0)
}

func (m *MockBlobStore) Read(path string) ([]byte, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBlobStore) Remove(path string) error {
	args := m.Called(path)
	return args.Error(0)
}

// MockAlerter records the operator alerts a handler fires.
type MockAlerter struct {
	mock.Mock
}

func (m *MockAlerter) ComplaintCreated(cm *models.Complaint) {
	m.Called(cm)
}

func (m *MockAlerter) ComplaintResolved(cm *models.Complaint) {
	m.Called(cm)
}

// testAuth is the token signer used across handler tests.
var testAuth = auth.SetupAuth("test-secret")

// newTestContext builds a Gin context backed by a recorder, with an
// optional JSON body.
func newTestContext(method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

// signIn stamps the context the way the auth middleware would.
func signIn(c *gin.Context, userID string, role models.Role) {
	c.Set(middleware.UserIDKey, userID)
	c.Set(middleware.RoleKey, role)
}

// decodeBody unmarshals the recorded JSON response into a generic map.
func decodeBody(w *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}
