package handler_test

import (
	"net/http"
	"strings"
	"testing"

	"gripelogger/backend/internal/api/handler"
	"gripelogger/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCreateComplaint_ForcesOwnerAndPendingStatus(t *testing.T) {
	// Arrange
	storageMock := new(MockStorage)
	alerts := new(MockAlerter)
	h := handler.NewHandler(storageMock, testAuth, nil, nil, alerts)

	storageMock.On("CreateComplaint", mock.MatchedBy(func(cm *models.Complaint) bool {
		return cm.StudentID == "student-1" && cm.Status == models.StatusPending
	})).Return(nil)
	storageMock.On("PublishEvent", mock.AnythingOfType("models.Event")).Return(nil)
	alerts.On("ComplaintCreated", mock.AnythingOfType("*models.Complaint")).Return()

	c, w := newTestContext("POST", "/api/complaints", gin.H{
		"title":       "Broken projector in room 204",
		"description": "The projector has been flickering for a week now.",
		// Caller-supplied identity and status must be ignored.
		"student_id": "someone-else",
		"status":     "resolved",
	})
	signIn(c, "student-1", models.RoleStudent)

	// Act
	h.CreateComplaint(c)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)
	storageMock.AssertExpectations(t)
	alerts.AssertCalled(t, "ComplaintCreated", mock.AnythingOfType("*models.Complaint"))
}

func TestCreateComplaint_RejectsShortFields(t *testing.T) {
	storageMock := new(MockStorage)
	h := handler.NewHandler(storageMock, testAuth, nil, nil, nil)

	c, w := newTestContext("POST", "/api/complaints", gin.H{
		"title":       "Hm",
		"description": "Too short",
	})
	signIn(c, "student-1", models.RoleStudent)

	h.CreateComplaint(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	storageMock.AssertNotCalled(t, "CreateComplaint", mock.Anything)
}

func TestCreateComplaint_TrimsBeforeValidation(t *testing.T) {
	storageMock := new(MockStorage)
	h := handler.NewHandler(storageMock, testAuth, nil, nil, nil)

	// Padding pushes the raw title over the minimum, but the trimmed
	// value is what counts.
	c, w := newTestContext("POST", "/api/complaints", gin.H{
		"title":       "   ab   ",
		"description": "A description that is certainly long enough.",
	})
	signIn(c, "student-1", models.RoleStudent)

	h.CreateComplaint(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	storageMock.AssertNotCalled(t, "CreateComplaint", mock.Anything)
}

func TestCreateComplaint_CountsCharactersNotBytes(t *testing.T) {
	// Arrange: 60 Cyrillic characters are 120 bytes; the limit is 100
	// characters, so this title must pass.
	storageMock := new(MockStorage)
	h := handler.NewHandler(storageMock, testAuth, nil, nil, nil)

	storageMock.On("CreateComplaint", mock.AnythingOfType("*models.Complaint")).Return(nil)
	storageMock.On("PublishEvent", mock.AnythingOfType("models.Event")).Return(nil)

	title := strings.Repeat("ж", 60)
	c, w := newTestContext("POST", "/api/complaints", gin.H{
		"title":       title,
		"description": "В аудитории 204 уже неделю мигает проектор.",
	})
	signIn(c, "student-1", models.RoleStudent)

	// Act
	h.CreateComplaint(c)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)
	storageMock.AssertCalled(t, "CreateComplaint", mock.AnythingOfType("*models.Complaint"))
}

func TestCreateComplaint_MultibyteTitleStillTooShort(t *testing.T) {
	// Three Cyrillic characters are six bytes, but six bytes do not make
	// five characters.
	storageMock := new(MockStorage)
	h := handler.NewHandler(storageMock, testAuth, nil, nil, nil)

	c, w := newTestContext("POST", "/api/complaints", gin.H{
		"title":       "жжж",
		"description": "A description that is certainly long enough.",
	})
	signIn(c, "student-1", models.RoleStudent)

	h.CreateComplaint(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	storageMock.AssertNotCalled(t, "CreateComplaint", mock.Anything)
}

func TestListComplaints_StudentSeesOnlyOwn(t *testing.T) {
	storageMock := new(MockStorage)
	h := handler.NewHandler(storageMock, testAuth, nil, nil, nil)

	storageMock.On("ListComplaints", "student-1", models.Status("")).
		Return([]models.Complaint{{ID: "c1", StudentID: "student-1"}}, nil)

	c, w := newTestContext("GET", "/api/complaints", nil)
	signIn(c, "student-1", models.RoleStudent)

	h.ListComplaints(c)

	assert.Equal(t, http.StatusOK, w.Code)
	storageMock.AssertCalled(t, "ListComplaints", "student-1", models.Status(""))
}

func TestListComplaints_AdminSeesAllWithStatusFilter(t *testing.T) {
	storageMock := new(MockStorage)
	h := handler.NewHandler(storageMock, testAuth, nil, nil, nil)

	storageMock.On("ListComplaints", "", models.StatusPending).
		Return([]models.Complaint{}, nil)

	c, w := newTestContext("GET", "/api/complaints?status=pending", nil)
	signIn(c, "admin-1", models.RoleAdmin)

	h.ListComplaints(c)

	assert.Equal(t, http.StatusOK, w.Code)
	storageMock.AssertCalled(t, "ListComplaints", "", models.StatusPending)
}

func TestListComplaints_UnknownStatusFilter(t *testing.T) {
	storageMock := new(MockStorage)
	h := handler.NewHandler(storageMock, testAuth, nil, nil, nil)

	c, w := newTestContext("GET", "/api/complaints?status=escalated", nil)
	signIn(c, "admin-1", models.RoleAdmin)

	h.ListComplaints(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	storageMock.AssertNotCalled(t, "ListComplaints", mock.Anything, mock.Anything)
}

func TestGetComplaint_OtherStudentForbidden(t *testing.T) {
	storageMock := new(MockStorage)
	h := handler.NewHandler(storageMock, testAuth, nil, nil, nil)

	storageMock.On("GetComplaintByID", "c1").
		Return(&models.Complaint{ID: "c1", StudentID: "student-1"}, nil)

	c, w := newTestContext("GET", "/api/complaints/c1", nil)
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	signIn(c, "student-2", models.RoleStudent)

	h.GetComplaint(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetComplaint_NotFound(t *testing.T) {
	storageMock := new(MockStorage)
	h := handler.NewHandler(storageMock, testAuth, nil, nil, nil)

	storageMock.On("GetComplaintByID", "missing").Return(nil, nil)

	c, w := newTestContext("GET", "/api/complaints/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	signIn(c, "student-1", models.RoleStudent)

	h.GetComplaint(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateComplaint_NonPendingRejected(t *testing.T) {
	storageMock := new(MockStorage)
	h := handler.NewHandler(storageMock, testAuth, nil, nil, nil)

	storageMock.On("GetComplaintByID", "c1").
		Return(&models.Complaint{ID: "c1", StudentID: "student-1", Status: models.StatusInProgress}, nil)

	c, w := newTestContext("PATCH", "/api/complaints/c1", gin.H{"title": "A perfectly fine new title"})
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	signIn(c, "student-1", models.RoleStudent)

	h.UpdateComplaint(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Only pending complaints can be edited")
	storageMock.AssertNotCalled(t, "UpdateComplaint", mock.Anything)
}

func TestUpdateComplaint_PartialUpdateKeepsOtherFields(t *testing.T) {
	storageMock := new(MockStorage)
	h := handler.NewHandler(storageMock, testAuth, nil, nil, nil)

	existing := &models.Complaint{
		ID:          "c1",
		StudentID:   "student-1",
		Status:      models.StatusPending,
		Title:       "Original title here",
		Description: "Original description, long enough to pass validation.",
		Category:    "facilities",
	}
	storageMock.On("GetComplaintByID", "c1").Return(existing, nil)
	storageMock.On("UpdateComplaint", mock.MatchedBy(func(cm *models.Complaint) bool {
		return cm.Title == "A brand new title" &&
			cm.Description == "Original description, long enough to pass validation." &&
			cm.Category == "facilities"
	})).Return(nil)
	storageMock.On("PublishEvent", mock.AnythingOfType("models.Event")).Return(nil)

	c, w := newTestContext("PATCH", "/api/complaints/c1", gin.H{"title": "A brand new title"})
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	signIn(c, "student-1", models.RoleStudent)

	h.UpdateComplaint(c)

	assert.Equal(t, http.StatusOK, w.Code)
	storageMock.AssertExpectations(t)
}

func TestDeleteComplaint_PendingOnly(t *testing.T) {
	storageMock := new(MockStorage)
	h := handler.NewHandler(storageMock, testAuth, nil, nil, nil)

	storageMock.On("GetComplaintByID", "c1").
		Return(&models.Complaint{ID: "c1", StudentID: "student-1", Status: models.StatusResolved}, nil)

	c, w := newTestContext("DELETE", "/api/complaints/c1", nil)
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	signIn(c, "student-1", models.RoleStudent)

	h.DeleteComplaint(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
	storageMock.AssertNotCalled(t, "DeleteComplaint", mock.Anything)
}

func TestDeleteComplaint_OwnerWithdrawsPending(t *testing.T) {
	storageMock := new(MockStorage)
	h := handler.NewHandler(storageMock, testAuth, nil, nil, nil)

	storageMock.On("GetComplaintByID", "c1").
		Return(&models.Complaint{ID: "c1", StudentID: "student-1", Status: models.StatusPending}, nil)
	storageMock.On("DeleteComplaint", "c1").Return(nil)
	storageMock.On("PublishEvent", mock.AnythingOfType("models.Event")).Return(nil)

	c, w := newTestContext("DELETE", "/api/complaints/c1", nil)
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	signIn(c, "student-1", models.RoleStudent)

	h.DeleteComplaint(c)

	assert.Equal(t, http.StatusOK, w.Code)
	storageMock.AssertCalled(t, "DeleteComplaint", "c1")
}

func TestTriageComplaint_ResolveFiresAlert(t *testing.T) {
	// Arrange
	storageMock := new(MockStorage)
	alerts := new(MockAlerter)
	h := handler.NewHandler(storageMock, testAuth, nil, nil, alerts)

	storageMock.On("GetComplaintByID", "c1").
		Return(&models.Complaint{ID: "c1", StudentID: "student-1", Status: models.StatusInProgress}, nil)
	storageMock.On("UpdateComplaint", mock.MatchedBy(func(cm *models.Complaint) bool {
		return cm.Status == models.StatusResolved && cm.ResolutionNote == "Projector replaced"
	})).Return(nil)
	storageMock.On("PublishEvent", mock.AnythingOfType("models.Event")).Return(nil)
	alerts.On("ComplaintResolved", mock.AnythingOfType("*models.Complaint")).Return()

	c, w := newTestContext("PATCH", "/api/complaints/c1/status", gin.H{
		"status":          "resolved",
		"resolution_note": "Projector replaced",
	})
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	signIn(c, "admin-1", models.RoleAdmin)

	// Act
	h.TriageComplaint(c)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	storageMock.AssertExpectations(t)
	alerts.AssertCalled(t, "ComplaintResolved", mock.AnythingOfType("*models.Complaint"))
}

func TestTriageComplaint_BackwardTransitionRejected(t *testing.T) {
	storageMock := new(MockStorage)
	h := handler.NewHandler(storageMock, testAuth, nil, nil, nil)

	storageMock.On("GetComplaintByID", "c1").
		Return(&models.Complaint{ID: "c1", StudentID: "student-1", Status: models.StatusResolved}, nil)

	c, w := newTestContext("PATCH", "/api/complaints/c1/status", gin.H{"status": "pending"})
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	signIn(c, "admin-1", models.RoleAdmin)

	h.TriageComplaint(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	storageMock.AssertNotCalled(t, "UpdateComplaint", mock.Anything)
}

func TestTriageComplaint_SameStateNoteEditSkipsAlert(t *testing.T) {
	storageMock := new(MockStorage)
	alerts := new(MockAlerter)
	h := handler.NewHandler(storageMock, testAuth, nil, nil, alerts)

	storageMock.On("GetComplaintByID", "c1").
		Return(&models.Complaint{ID: "c1", StudentID: "student-1", Status: models.StatusResolved}, nil)
	storageMock.On("UpdateComplaint", mock.AnythingOfType("*models.Complaint")).Return(nil)
	storageMock.On("PublishEvent", mock.AnythingOfType("models.Event")).Return(nil)

	c, w := newTestContext("PATCH", "/api/complaints/c1/status", gin.H{
		"status":          "resolved",
		"resolution_note": "Amended note",
	})
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	signIn(c, "admin-1", models.RoleAdmin)

	h.TriageComplaint(c)

	assert.Equal(t, http.StatusOK, w.Code)
	// Already resolved, so no second operator alert.
	alerts.AssertNotCalled(t, "ComplaintResolved", mock.Anything)
}

func TestTriageComplaint_AssigneeMustBeAdmin(t *testing.T) {
	storageMock := new(MockStorage)
	h := handler.NewHandler(storageMock, testAuth, nil, nil, nil)

	storageMock.On("GetComplaintByID", "c1").
		Return(&models.Complaint{ID: "c1", StudentID: "student-1", Status: models.StatusPending}, nil)
	storageMock.On("GetRoleForUser", "student-2").Return(models.RoleStudent, nil)

	c, w := newTestContext("PATCH", "/api/complaints/c1/status", gin.H{
		"status":      "in_progress",
		"assigned_to": "student-2",
	})
	c.Params = gin.Params{{Key: "id", Value: "c1"}}
	signIn(c, "admin-1", models.RoleAdmin)

	h.TriageComplaint(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Assignee must be an admin")
	storageMock.AssertNotCalled(t, "UpdateComplaint", mock.Anything)
}

func TestStats(t *testing.T) {
	storageMock := new(MockStorage)
	h := handler.NewHandler(storageMock, testAuth, nil, nil, nil)

	storageMock.On("CountComplaintsByStatus").Return(map[models.Status]int64{
		models.StatusPending:    3,
		models.StatusInProgress: 2,
		models.StatusResolved:   5,
	}, nil)

	c, w := newTestContext("GET", "/api/admin/stats", nil)
	signIn(c, "admin-1", models.RoleAdmin)

	h.Stats(c)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(w)
	assert.Equal(t, float64(10), body["total"])
	assert.Equal(t, float64(3), body["pending"])
	assert.Equal(t, float64(2), body["in_progress"])
	assert.Equal(t, float64(5), body["resolved"])
}
