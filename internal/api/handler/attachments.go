package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"gripelogger/backend/internal/api/middleware"
	"gripelogger/backend/internal/blobstore"
	"gripelogger/backend/internal/complaint"
	"gripelogger/backend/internal/config"
	"gripelogger/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// ListAttachments returns the complaint's attachment metadata, newest
// first.
func (h *Handler) ListAttachments(c *gin.Context) {
	cm := h.loadVisibleComplaint(c, c.Param("id"))
	if cm == nil {
		return
	}

	atts, err := h.Storage.ListAttachments(cm.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load attachments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"attachments": atts})
}

type uploadFailure struct {
	FileName string `json:"file_name"`
	Error    string `json:"error"`
}

// UploadAttachments accepts a multipart batch under the "files" field.
// Files are processed one at a time so a bad file never aborts its
// siblings: oversized files, blob write failures, and metadata failures
// are each reported per file while the rest of the batch continues.
func (h *Handler) UploadAttachments(c *gin.Context) {
	cm := h.loadVisibleComplaint(c, c.Param("id"))
	if cm == nil {
		return
	}
	userID, _ := middleware.CurrentUser(c)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Expected multipart form"})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files provided"})
		return
	}

	var uploaded []models.Attachment
	var failed []uploadFailure

	for _, fh := range files {
		if fh.Size > config.MaxAttachmentSize {
			failed = append(failed, uploadFailure{
				FileName: fh.Filename,
				Error:    fmt.Sprintf("File %s is too large. Maximum size is 5MB.", fh.Filename),
			})
			continue
		}

		f, err := fh.Open()
		if err != nil {
			failed = append(failed, uploadFailure{FileName: fh.Filename, Error: "Failed to read file"})
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			failed = append(failed, uploadFailure{FileName: fh.Filename, Error: "Failed to read file"})
			continue
		}

		// Blob key: uploader/complaint/timestamp, keeping the original
		// extension so content sniffing stays honest on download.
		path := fmt.Sprintf("%s/%s/%d%s", userID, cm.ID, time.Now().UnixNano(), filepath.Ext(fh.Filename))
		if err := h.Blobs.Save(path, data); err != nil {
			failed = append(failed, uploadFailure{
				FileName: fh.Filename,
				Error:    fmt.Sprintf("Failed to upload %s", fh.Filename),
			})
			continue
		}

		att := models.Attachment{
			ComplaintID: cm.ID,
			FileName:    fh.Filename,
			FilePath:    path,
			FileSize:    fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
			UploadedBy:  userID,
		}
		if err := h.Storage.CreateAttachment(&att); err != nil {
			failed = append(failed, uploadFailure{
				FileName: fh.Filename,
				Error:    fmt.Sprintf("Failed to save %s record", fh.Filename),
			})
			continue
		}
		uploaded = append(uploaded, att)
	}

	if len(uploaded) > 0 {
		h.publish(models.EventAttachmentAdded, cm.ID, cm.StudentID)
	}

	status := http.StatusCreated
	if len(uploaded) == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"uploaded": uploaded, "failed": failed})
}

// DownloadAttachment streams the blob back with its original name and
// content type.
func (h *Handler) DownloadAttachment(c *gin.Context) {
	att, err := h.Storage.GetAttachmentByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load attachment"})
		return
	}
	if att == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Attachment not found"})
		return
	}

	// Visibility follows the parent complaint.
	if h.loadVisibleComplaint(c, att.ComplaintID) == nil {
		return
	}

	data, err := h.Blobs.Read(att.FilePath)
	if errors.Is(err, blobstore.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to download file"})
		return
	}

	contentType := att.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", att.FileName))
	c.Header("Cache-Control", "private, no-cache, no-store, must-revalidate")
	c.Data(http.StatusOK, contentType, data)
}

// DeleteAttachment removes an attachment. Only the original uploader may
// delete, and the blob goes first: if blob removal fails the metadata
// record stays, so a listed attachment always has its file. A metadata
// failure after a successful blob delete leaves an orphaned blob, which
// is tolerated — the record's absence is what listings trust.
func (h *Handler) DeleteAttachment(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)

	att, err := h.Storage.GetAttachmentByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load attachment"})
		return
	}
	if att == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Attachment not found"})
		return
	}

	if err := complaint.CheckAttachmentDelete(userID, att); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the uploader can delete an attachment"})
		return
	}

	if err := h.Blobs.Remove(att.FilePath); err != nil && !errors.Is(err, blobstore.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file"})
		return
	}

	if err := h.Storage.DeleteAttachment(att.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file record"})
		return
	}

	cm, err := h.Storage.GetComplaintByID(att.ComplaintID)
	if err == nil && cm != nil {
		h.publish(models.EventAttachmentRemoved, cm.ID, cm.StudentID)
	}

	c.JSON(http.StatusOK, gin.H{"message": "File deleted"})
}
